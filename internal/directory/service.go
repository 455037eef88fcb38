package directory

import (
	"context"
	"log/slog"

	"github.com/workstack/org-messaging/internal"
)

// Repository defines the data access methods for the organization directory
type Repository interface {
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	GetEmployeeByAccountID(ctx context.Context, accountID int64) (*Employee, error)
	ListDirectReports(ctx context.Context, employeeID int64) ([]*Employee, error)
	ListDepartmentMembers(ctx context.Context, departmentID int64) ([]*Employee, error)
	FindDepartmentByNamePattern(ctx context.Context, patterns []string) (*Department, error)
	CountDirectReports(ctx context.Context, employeeID int64) (int64, error)
	ListManagers(ctx context.Context) ([]*Employee, error)
}

// Service is the read-side boundary every other component goes through to
// see the org tree. It also guards against a record listing itself as its
// own manager, which would otherwise loop upward traversals.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	emp, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.sanitize(emp), nil
}

func (s *Service) GetEmployeeByAccountID(ctx context.Context, accountID int64) (*Employee, error) {
	emp, err := s.repo.GetEmployeeByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.sanitize(emp), nil
}

func (s *Service) ListDirectReports(ctx context.Context, employeeID int64) ([]*Employee, error) {
	return s.repo.ListDirectReports(ctx, employeeID)
}

func (s *Service) ListDepartmentMembers(ctx context.Context, departmentID int64) ([]*Employee, error) {
	return s.repo.ListDepartmentMembers(ctx, departmentID)
}

// FindHRDepartment locates the HR department by name convention.
func (s *Service) FindHRDepartment(ctx context.Context) (*Department, error) {
	dept, err := s.repo.FindDepartmentByNamePattern(ctx, HRNamePatterns())
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, internal.ErrHRDepartmentNotFound
	}
	return dept, nil
}

func (s *Service) HasDirectReports(ctx context.Context, employeeID int64) (bool, error) {
	count, err := s.repo.CountDirectReports(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) ListManagers(ctx context.Context) ([]*Employee, error) {
	return s.repo.ListManagers(ctx)
}

// sanitize drops a self-referential manager link so callers can treat the
// hierarchy as a tree.
func (s *Service) sanitize(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	if emp.ManagerID != nil && *emp.ManagerID == emp.ID {
		s.logger.Warn("employee lists itself as manager, ignoring the link",
			"employee_id", emp.ID)
		emp.ManagerID = nil
		emp.Manager = nil
	}
	return emp
}
