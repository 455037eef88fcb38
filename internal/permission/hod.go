package permission

import (
	"context"

	"github.com/workstack/org-messaging/internal/directory"
)

// IsHeadOfDepartment reports whether the employee sits at the top of a
// department's local management chain: they have at least one direct
// report, and their own manager (if any) belongs to a different
// department.
func (r *Resolver) IsHeadOfDepartment(ctx context.Context, emp *directory.Employee) (bool, error) {
	hasReports, err := r.dir.HasDirectReports(ctx, emp.ID)
	if err != nil {
		return false, err
	}
	if !hasReports {
		return false, nil
	}
	return isTopOfDepartment(emp), nil
}

// isTopOfDepartment holds the department-comparison half of the HOD
// check. A missing department on either side counts as different; two
// missing departments are never equal.
func isTopOfDepartment(emp *directory.Employee) bool {
	if emp.Manager == nil {
		return true
	}
	if emp.Department == nil || emp.Manager.Department == nil {
		return true
	}
	return emp.Department.ID != emp.Manager.Department.ID
}
