package permission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/workstack/org-messaging/internal/directory"
)

type RuleName string

const (
	RuleAdminAccess      RuleName = "admin_access"
	RuleHRAccess         RuleName = "hr_access"
	RuleContactHR        RuleName = "contact_hr"
	RuleDirectManager    RuleName = "direct_manager"
	RuleSameDepartment   RuleName = "same_department"
	RuleDirectReport     RuleName = "direct_report"
	RuleManagerToManager RuleName = "manager_to_manager"
	RuleHODToHOD         RuleName = "hod_to_hod"
	RuleHODToManagement  RuleName = "hod_to_management"
)

// Verdict is the outcome of a messaging permission check. On allow,
// MatchedRule names the first rule that granted access; on deny, Reason
// and Suggestion tell the sender what to do instead.
type Verdict struct {
	Allowed     bool     `json:"allowed"`
	MatchedRule RuleName `json:"matched_rule,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Directory defines the org lookups the resolver needs beyond the
// hydrated employee records themselves.
type Directory interface {
	HasDirectReports(ctx context.Context, employeeID int64) (bool, error)
}

// Resolver decides whether one employee may message another. Rules are
// evaluated in order, first match wins; the order is part of the contract
// because many pairs satisfy several rules at once.
type Resolver struct {
	dir    Directory
	rules  []rule
	logger *slog.Logger
}

type rule struct {
	name    RuleName
	matches func(ev *evaluation) (bool, error)
}

func NewResolver(dir Directory, logger *slog.Logger) *Resolver {
	r := &Resolver{
		dir:    dir,
		logger: logger,
	}
	r.rules = []rule{
		{RuleAdminAccess, func(ev *evaluation) (bool, error) {
			return directory.IsAdminRole(ev.sender.Role), nil
		}},
		{RuleHRAccess, func(ev *evaluation) (bool, error) {
			return directory.IsHRDepartment(ev.sender.Department), nil
		}},
		{RuleContactHR, func(ev *evaluation) (bool, error) {
			return directory.IsHRDepartment(ev.recipient.Department), nil
		}},
		{RuleDirectManager, func(ev *evaluation) (bool, error) {
			return ev.sender.ManagerID != nil && *ev.sender.ManagerID == ev.recipient.ID, nil
		}},
		{RuleSameDepartment, func(ev *evaluation) (bool, error) {
			return ev.sender.SameDepartment(ev.recipient), nil
		}},
		{RuleDirectReport, func(ev *evaluation) (bool, error) {
			return ev.recipient.ManagerID != nil && *ev.recipient.ManagerID == ev.sender.ID, nil
		}},
		{RuleManagerToManager, func(ev *evaluation) (bool, error) {
			senderManages, err := ev.senderHasReports()
			if err != nil || !senderManages {
				return false, err
			}
			return ev.recipientHasReports()
		}},
		{RuleHODToHOD, func(ev *evaluation) (bool, error) {
			senderHOD, err := ev.senderIsHOD()
			if err != nil || !senderHOD {
				return false, err
			}
			return ev.recipientIsHOD()
		}},
		{RuleHODToManagement, func(ev *evaluation) (bool, error) {
			senderHOD, err := ev.senderIsHOD()
			if err != nil || !senderHOD {
				return false, err
			}
			return directory.IsManagementRole(ev.recipient.Role), nil
		}},
	}
	return r
}

// Resolve evaluates the rule list for a sender/recipient pair. Both
// records must already be hydrated; lookups that fail belong to the
// caller, not to the resolver.
func (r *Resolver) Resolve(ctx context.Context, sender, recipient *directory.Employee) (Verdict, error) {
	ev := &evaluation{
		ctx:       ctx,
		dir:       r.dir,
		sender:    sender,
		recipient: recipient,
	}

	for _, rl := range r.rules {
		matched, err := rl.matches(ev)
		if err != nil {
			return Verdict{}, fmt.Errorf("evaluating rule %s: %w", rl.name, err)
		}
		if matched {
			r.logger.Debug("messaging allowed",
				"sender_id", sender.ID,
				"recipient_id", recipient.ID,
				"rule", rl.name)
			return Verdict{Allowed: true, MatchedRule: rl.name}, nil
		}
	}

	verdict := Verdict{
		Allowed:    false,
		Reason:     denialReason(sender),
		Suggestion: "ask your manager to pass the message on, or contact HR",
	}
	r.logger.Warn("messaging denied",
		"sender_id", sender.ID,
		"recipient_id", recipient.ID,
		"reason", verdict.Reason)
	return verdict, nil
}

func denialReason(sender *directory.Employee) string {
	if sender.Department != nil {
		return fmt.Sprintf("employees in %s are not allowed to message this recipient directly", sender.Department.Name)
	}
	return "employees without a department are not allowed to message this recipient directly"
}

// evaluation memoizes the directory-wide checks so a single Resolve never
// runs the same reports query twice.
type evaluation struct {
	ctx       context.Context
	dir       Directory
	sender    *directory.Employee
	recipient *directory.Employee

	senderReports    *bool
	recipientReports *bool
}

func (ev *evaluation) senderHasReports() (bool, error) {
	if ev.senderReports == nil {
		has, err := ev.dir.HasDirectReports(ev.ctx, ev.sender.ID)
		if err != nil {
			return false, err
		}
		ev.senderReports = &has
	}
	return *ev.senderReports, nil
}

func (ev *evaluation) recipientHasReports() (bool, error) {
	if ev.recipientReports == nil {
		has, err := ev.dir.HasDirectReports(ev.ctx, ev.recipient.ID)
		if err != nil {
			return false, err
		}
		ev.recipientReports = &has
	}
	return *ev.recipientReports, nil
}

func (ev *evaluation) senderIsHOD() (bool, error) {
	has, err := ev.senderHasReports()
	if err != nil || !has {
		return false, err
	}
	return isTopOfDepartment(ev.sender), nil
}

func (ev *evaluation) recipientIsHOD() (bool, error) {
	has, err := ev.recipientHasReports()
	if err != nil || !has {
		return false, err
	}
	return isTopOfDepartment(ev.recipient), nil
}
