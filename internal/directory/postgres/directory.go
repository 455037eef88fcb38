package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/workstack/org-messaging/internal"
	departmentDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/department"
	employeeDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/employee"
	"github.com/workstack/org-messaging/internal/directory"
	"gorm.io/gorm"
)

// DirectoryRepository implements the directory.Repository interface using GORM
type DirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *gorm.DB) directory.Repository {
	return &DirectoryRepository{db: db}
}

// GetEmployee retrieves a fully-hydrated employee: department, role and
// manager (with the manager's department) are preloaded.
func (r *DirectoryRepository) GetEmployee(ctx context.Context, id int64) (*directory.Employee, error) {
	var emp employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Role").
		Preload("Manager").
		Preload("Manager.Department").
		Where("id = ?", id).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return directory.FromDataModel(&emp), nil
}

func (r *DirectoryRepository) GetEmployeeByAccountID(ctx context.Context, accountID int64) (*directory.Employee, error) {
	var emp employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Role").
		Preload("Manager").
		Preload("Manager.Department").
		Where("account_id = ?", accountID).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return directory.FromDataModel(&emp), nil
}

func (r *DirectoryRepository) ListDirectReports(ctx context.Context, employeeID int64) ([]*directory.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Role").
		Where("manager_id = ?", employeeID).
		Order("name ASC").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return directory.FromDataModelSlice(employees), nil
}

func (r *DirectoryRepository) ListDepartmentMembers(ctx context.Context, departmentID int64) ([]*directory.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Role").
		Where("department_id = ?", departmentID).
		Order("hire_date ASC").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return directory.FromDataModelSlice(employees), nil
}

// FindDepartmentByNamePattern matches department names case-insensitively
// against the given patterns, returning nil when none match.
func (r *DirectoryRepository) FindDepartmentByNamePattern(ctx context.Context, patterns []string) (*directory.Department, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Model(&departmentDatamodel.Department{})
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}

	var dept departmentDatamodel.Department
	err := query.Where("LOWER(name) IN ?", lowered).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return directory.FromDepartmentDataModel(&dept), nil
}

// CountDirectReports is the indexed "is this employee a people-manager"
// check evaluated on every peer-to-peer send.
func (r *DirectoryRepository) CountDirectReports(ctx context.Context, employeeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("manager_id = ?", employeeID).
		Count(&count).Error
	return count, err
}

// ListManagers returns every employee with at least one direct report.
func (r *DirectoryRepository) ListManagers(ctx context.Context) ([]*directory.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Role").
		Where("id IN (SELECT DISTINCT manager_id FROM employees WHERE manager_id IS NOT NULL)").
		Order("name ASC").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return directory.FromDataModelSlice(employees), nil
}
