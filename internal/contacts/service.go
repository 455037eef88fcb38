package contacts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/workstack/org-messaging/internal"
	"github.com/workstack/org-messaging/internal/directory"
)

// Directory defines the org lookups contact discovery needs.
type Directory interface {
	GetEmployee(ctx context.Context, id int64) (*directory.Employee, error)
	ListDirectReports(ctx context.Context, employeeID int64) ([]*directory.Employee, error)
	ListDepartmentMembers(ctx context.Context, departmentID int64) ([]*directory.Employee, error)
	FindHRDepartment(ctx context.Context) (*directory.Department, error)
	ListManagers(ctx context.Context) ([]*directory.Employee, error)
}

// ContactList groups everyone an employee is currently allowed to
// message, by relationship. The categories mirror the resolver's rules;
// if the two ever disagree, that is a bug in whichever drifted.
type ContactList struct {
	Manager        *Contact  `json:"manager,omitempty"`
	DirectReports  []Contact `json:"direct_reports"`
	SameDepartment []Contact `json:"same_department"`
	HR             []Contact `json:"hr"`
	OtherManagers  []Contact `json:"other_managers"`
}

type Contact struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
	Role       *string `json:"role,omitempty"`
}

// Service assembles the advisory contact list shown to callers.
type Service struct {
	dir    Directory
	logger *slog.Logger
}

func NewService(dir Directory, logger *slog.Logger) *Service {
	return &Service{
		dir:    dir,
		logger: logger,
	}
}

func (s *Service) ListContacts(ctx context.Context, employeeID int64) (*ContactList, error) {
	emp, err := s.dir.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	list := &ContactList{
		DirectReports:  []Contact{},
		SameDepartment: []Contact{},
		HR:             []Contact{},
		OtherManagers:  []Contact{},
	}

	if emp.Manager != nil {
		c := toContact(emp.Manager)
		list.Manager = &c
	}

	reports, err := s.dir.ListDirectReports(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		list.DirectReports = append(list.DirectReports, toContact(r))
	}

	if emp.Department != nil {
		members, err := s.dir.ListDepartmentMembers(ctx, emp.Department.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.ID == emp.ID {
				continue
			}
			list.SameDepartment = append(list.SameDepartment, toContact(m))
		}
	}

	hrDept, err := s.dir.FindHRDepartment(ctx)
	switch {
	case err == nil:
		hrMembers, err := s.dir.ListDepartmentMembers(ctx, hrDept.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range hrMembers {
			if m.ID == emp.ID {
				continue
			}
			list.HR = append(list.HR, toContact(m))
		}
	case errors.Is(err, internal.ErrHRDepartmentNotFound):
		// no HR department is fine for discovery, the category is just empty
		s.logger.Debug("contact discovery found no HR department", "employee_id", employeeID)
	default:
		return nil, err
	}

	// peer managers are only reachable when the caller manages people too
	if len(reports) > 0 {
		managers, err := s.dir.ListManagers(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range managers {
			if m.ID == emp.ID {
				continue
			}
			list.OtherManagers = append(list.OtherManagers, toContact(m))
		}
	}

	return list, nil
}

func toContact(e *directory.Employee) Contact {
	c := Contact{
		ID:    e.ID,
		Name:  e.Name,
		Email: e.Email,
	}
	if e.Department != nil {
		c.Department = &e.Department.Name
	}
	if e.Role != nil {
		c.Role = &e.Role.Name
	}
	return c
}
