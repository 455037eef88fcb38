package permission_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workstack/org-messaging/internal/directory"
	"github.com/workstack/org-messaging/internal/permission"
)

func TestPermission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Resolver Suite")
}

// Mock directory for testing
type mockDirectory struct {
	reports    map[int64]bool
	lookupErr  error
	queryCount int
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{reports: make(map[int64]bool)}
}

func (m *mockDirectory) HasDirectReports(ctx context.Context, employeeID int64) (bool, error) {
	m.queryCount++
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	return m.reports[employeeID], nil
}

var employeeSeq int64

func newEmployee(dept *directory.Department, role *directory.Role, manager *directory.Employee) *directory.Employee {
	employeeSeq++
	emp := &directory.Employee{
		ID:         employeeSeq,
		AccountID:  employeeSeq,
		Name:       "Employee",
		Email:      "employee@example.com",
		HireDate:   time.Now(),
		Department: dept,
		Role:       role,
		Manager:    manager,
	}
	if manager != nil {
		emp.ManagerID = &manager.ID
	}
	return emp
}

var _ = Describe("Resolver", func() {
	var (
		resolver *permission.Resolver
		mockDir  *mockDirectory
		ctx      context.Context

		engineering *directory.Department
		sales       *directory.Department
		hr          *directory.Department
	)

	BeforeEach(func() {
		mockDir = newMockDirectory()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = permission.NewResolver(mockDir, logger)
		ctx = context.Background()

		engineering = &directory.Department{ID: 1, Name: "Engineering"}
		sales = &directory.Department{ID: 2, Name: "Sales"}
		hr = &directory.Department{ID: 3, Name: "HR"}
	})

	Describe("Resolve", func() {
		Context("when the sender is an administrator", func() {
			It("should allow messaging anyone", func() {
				admin := newEmployee(nil, &directory.Role{ID: 1, Name: "Administrator"}, nil)
				target := newEmployee(sales, nil, nil)

				verdict, err := resolver.Resolve(ctx, admin, target)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleAdminAccess))
			})

			It("should match admin access before any other rule", func() {
				// admin who is also in HR: admin rule sits first
				admin := newEmployee(hr, &directory.Role{ID: 1, Name: "admin"}, nil)
				target := newEmployee(engineering, nil, nil)

				verdict, err := resolver.Resolve(ctx, admin, target)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleAdminAccess))
			})
		})

		Context("when the sender works in HR", func() {
			It("should allow messaging anyone", func() {
				hrEmployee := newEmployee(hr, nil, nil)
				target := newEmployee(engineering, nil, nil)

				verdict, err := resolver.Resolve(ctx, hrEmployee, target)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleHRAccess))
			})

			It("should recognize Human Resources as an HR department name", func() {
				hrEmployee := newEmployee(&directory.Department{ID: 9, Name: "Human Resources"}, nil, nil)
				target := newEmployee(engineering, nil, nil)

				verdict, err := resolver.Resolve(ctx, hrEmployee, target)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleHRAccess))
			})
		})

		Context("when the recipient works in HR", func() {
			It("should allow anyone to contact HR", func() {
				sender := newEmployee(engineering, nil, nil)
				hrEmployee := newEmployee(hr, nil, nil)

				verdict, err := resolver.Resolve(ctx, sender, hrEmployee)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleContactHR))
			})
		})

		Context("when the recipient is the sender's direct manager", func() {
			It("should allow the send", func() {
				manager := newEmployee(sales, nil, nil)
				report := newEmployee(engineering, nil, manager)

				verdict, err := resolver.Resolve(ctx, report, manager)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleDirectManager))
			})

			It("should match direct manager before same department", func() {
				manager := newEmployee(engineering, nil, nil)
				report := newEmployee(engineering, nil, manager)

				verdict, err := resolver.Resolve(ctx, report, manager)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleDirectManager))
			})
		})

		Context("when both employees share a department", func() {
			It("should allow the send", func() {
				a := newEmployee(engineering, nil, nil)
				b := newEmployee(engineering, nil, nil)

				verdict, err := resolver.Resolve(ctx, a, b)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleSameDepartment))
			})

			It("should match same department before direct report when a manager messages their own report", func() {
				manager := newEmployee(engineering, nil, nil)
				report := newEmployee(engineering, nil, manager)

				verdict, err := resolver.Resolve(ctx, manager, report)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleSameDepartment))
			})

			It("should never treat two missing departments as equal", func() {
				a := newEmployee(nil, nil, nil)
				b := newEmployee(nil, nil, nil)

				verdict, err := resolver.Resolve(ctx, a, b)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeFalse())
			})
		})

		Context("when the recipient reports to the sender", func() {
			It("should allow the send", func() {
				manager := newEmployee(engineering, nil, nil)
				report := newEmployee(sales, nil, manager)

				verdict, err := resolver.Resolve(ctx, manager, report)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleDirectReport))
			})
		})

		Context("when both employees manage people", func() {
			It("should allow manager to manager messaging across departments", func() {
				m1 := newEmployee(engineering, nil, nil)
				m2 := newEmployee(sales, nil, nil)
				mockDir.reports[m1.ID] = true
				mockDir.reports[m2.ID] = true

				verdict, err := resolver.Resolve(ctx, m1, m2)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleManagerToManager))
			})

			It("should deny when only the sender manages people", func() {
				m1 := newEmployee(engineering, nil, nil)
				ic := newEmployee(sales, nil, nil)
				mockDir.reports[m1.ID] = true

				verdict, err := resolver.Resolve(ctx, m1, ic)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeFalse())
			})
		})

		Context("when both employees head their departments", func() {
			It("should match manager to manager first because both manage people", func() {
				director := newEmployee(nil, nil, nil)
				hod1 := newEmployee(engineering, nil, director)
				hod2 := newEmployee(sales, nil, director)
				mockDir.reports[hod1.ID] = true
				mockDir.reports[hod2.ID] = true

				verdict, err := resolver.Resolve(ctx, hod1, hod2)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleManagerToManager))
			})
		})

		Context("when a head of department contacts upper management", func() {
			It("should allow messaging a director without shared reporting lines", func() {
				director := newEmployee(nil, &directory.Role{ID: 7, Name: "Operations Director"}, nil)
				other := newEmployee(nil, nil, nil)
				hod := newEmployee(engineering, nil, other)
				mockDir.reports[hod.ID] = true

				verdict, err := resolver.Resolve(ctx, hod, director)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeTrue())
				Expect(verdict.MatchedRule).To(Equal(permission.RuleHODToManagement))
			})

			It("should deny a non-HOD employee messaging a director", func() {
				director := newEmployee(nil, &directory.Role{ID: 7, Name: "Operations Director"}, nil)
				ic := newEmployee(engineering, nil, nil)

				verdict, err := resolver.Resolve(ctx, ic, director)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeFalse())
			})
		})

		Context("when no rule matches", func() {
			It("should deny with a reason naming the sender's department and a suggestion", func() {
				sender := newEmployee(engineering, nil, nil)
				target := newEmployee(sales, nil, nil)

				verdict, err := resolver.Resolve(ctx, sender, target)

				Expect(err).ToNot(HaveOccurred())
				Expect(verdict.Allowed).To(BeFalse())
				Expect(verdict.MatchedRule).To(BeEmpty())
				Expect(verdict.Reason).To(ContainSubstring("Engineering"))
				Expect(verdict.Suggestion).ToNot(BeEmpty())
			})
		})

		Context("when the directory lookup fails", func() {
			It("should propagate the error instead of denying", func() {
				m1 := newEmployee(engineering, nil, nil)
				m2 := newEmployee(sales, nil, nil)
				mockDir.lookupErr = errors.New("db gone")

				_, err := resolver.Resolve(ctx, m1, m2)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("manager_to_manager"))
			})
		})

		It("should run the reports query at most once per side", func() {
			// no rule matches; manager-to-manager, HOD-to-HOD and
			// HOD-to-management all consult the same lookups
			sender := newEmployee(engineering, nil, nil)
			target := newEmployee(sales, nil, nil)

			_, err := resolver.Resolve(ctx, sender, target)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockDir.queryCount).To(BeNumerically("<=", 2))
		})
	})

	Describe("IsHeadOfDepartment", func() {
		It("should report true for a manager with no manager above", func() {
			hod := newEmployee(engineering, nil, nil)
			mockDir.reports[hod.ID] = true

			isHOD, err := resolver.IsHeadOfDepartment(ctx, hod)

			Expect(err).ToNot(HaveOccurred())
			Expect(isHOD).To(BeTrue())
		})

		It("should report true when the manager sits in another department", func() {
			director := newEmployee(sales, nil, nil)
			hod := newEmployee(engineering, nil, director)
			mockDir.reports[hod.ID] = true

			isHOD, err := resolver.IsHeadOfDepartment(ctx, hod)

			Expect(err).ToNot(HaveOccurred())
			Expect(isHOD).To(BeTrue())
		})

		It("should report false when the manager shares the department", func() {
			hod := newEmployee(engineering, nil, nil)
			mid := newEmployee(engineering, nil, hod)
			mockDir.reports[mid.ID] = true

			isHOD, err := resolver.IsHeadOfDepartment(ctx, mid)

			Expect(err).ToNot(HaveOccurred())
			Expect(isHOD).To(BeFalse())
		})

		It("should report false without direct reports", func() {
			ic := newEmployee(engineering, nil, nil)

			isHOD, err := resolver.IsHeadOfDepartment(ctx, ic)

			Expect(err).ToNot(HaveOccurred())
			Expect(isHOD).To(BeFalse())
		})
	})
})
