package directory

import (
	"strings"
	"time"

	departmentDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/department"
	employeeDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/employee"
)

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Employee is a hydrated directory record: department, role and manager
// (one level up, with the manager's own department) are all resolved.
type Employee struct {
	ID         int64       `json:"id"`
	AccountID  int64       `json:"account_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	HireDate   time.Time   `json:"hire_date"`
	Department *Department `json:"department,omitempty"`
	Role       *Role       `json:"role,omitempty"`
	ManagerID  *int64      `json:"manager_id,omitempty"`
	Manager    *Employee   `json:"manager,omitempty"`
}

// SameDepartment reports whether both employees belong to the same named
// department. A missing department never equals anything, including
// another missing department.
func (e *Employee) SameDepartment(other *Employee) bool {
	if e == nil || other == nil {
		return false
	}
	if e.Department == nil || other.Department == nil {
		return false
	}
	return e.Department.ID == other.Department.ID
}

func (e *Employee) HasManager() bool {
	return e != nil && e.ManagerID != nil
}

// hrNames is the naming convention the whole engine relies on to locate
// the HR department. Isolated here so a future typed flag touches one spot.
var hrNames = []string{"hr", "human resources"}

func IsHRDepartment(d *Department) bool {
	if d == nil {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(d.Name))
	for _, hr := range hrNames {
		if name == hr {
			return true
		}
	}
	return false
}

// HRNamePatterns returns the lookup patterns for finding the HR department.
func HRNamePatterns() []string {
	return hrNames
}

func IsAdminRole(r *Role) bool {
	if r == nil {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(r.Name))
	return name == "admin" || name == "administrator"
}

// IsManagementRole matches the role names a head of department may
// contact outside the regular reporting lines.
func IsManagementRole(r *Role) bool {
	if r == nil {
		return false
	}
	name := strings.ToLower(r.Name)
	return strings.Contains(name, "admin") ||
		strings.Contains(name, "director") ||
		strings.Contains(name, "executive")
}

func FromDepartmentDataModel(d *departmentDatamodel.Department) *Department {
	if d == nil {
		return nil
	}
	return &Department{ID: d.ID, Name: d.Name}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	if e == nil {
		return nil
	}

	emp := &Employee{
		ID:         e.ID,
		AccountID:  e.AccountID,
		Name:       e.Name,
		Email:      e.Email,
		HireDate:   e.HireDate,
		Department: FromDepartmentDataModel(e.Department),
		ManagerID:  e.ManagerID,
	}
	if e.Role != nil {
		emp.Role = &Role{ID: e.Role.ID, Name: e.Role.Name}
	}
	if e.Manager != nil {
		emp.Manager = &Employee{
			ID:         e.Manager.ID,
			AccountID:  e.Manager.AccountID,
			Name:       e.Manager.Name,
			Email:      e.Manager.Email,
			HireDate:   e.Manager.HireDate,
			Department: FromDepartmentDataModel(e.Manager.Department),
			ManagerID:  e.Manager.ManagerID,
		}
	}
	return emp
}

func FromDataModelSlice(employees []*employeeDatamodel.Employee) []*Employee {
	result := make([]*Employee, len(employees))
	for i, e := range employees {
		result[i] = FromDataModel(e)
	}
	return result
}
