package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/workstack/org-messaging/internal"
	"github.com/workstack/org-messaging/internal/directory"
	"github.com/workstack/org-messaging/internal/permission"
)

// Repository defines the data access methods for messages
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	ListForRecipient(ctx context.Context, recipientID int64, filter InboxFilter, limit, offset int) ([]*Message, error)
	ListForSender(ctx context.Context, senderID int64, limit, offset int) ([]*Message, error)
	ListReplies(ctx context.Context, parentID string) ([]*Message, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
}

// Directory defines the org lookups message routing depends on.
type Directory interface {
	GetEmployee(ctx context.Context, id int64) (*directory.Employee, error)
	ListDepartmentMembers(ctx context.Context, departmentID int64) ([]*directory.Employee, error)
	FindHRDepartment(ctx context.Context) (*directory.Department, error)
	HasDirectReports(ctx context.Context, employeeID int64) (bool, error)
}

// Resolver decides peer-to-peer reachability.
type Resolver interface {
	Resolve(ctx context.Context, sender, recipient *directory.Employee) (permission.Verdict, error)
}

// Notifier pushes a delivered message to the recipient's live session.
// Implementations must never block or fail the send path.
type Notifier interface {
	MessageDelivered(ctx context.Context, msg *Message)
}

// Service routes messages through the five send modes and owns the
// message lifecycle (delivered, read, replied).
type Service struct {
	repo     Repository
	dir      Directory
	resolver Resolver
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, dir Directory, resolver Resolver, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
	}
}

// SendDirect delivers a message to a single named recipient, subject to
// the permission resolver.
func (s *Service) SendDirect(ctx context.Context, senderID int64, dto SendDirectDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("direct send validation failed", "error", err, "sender_id", senderID)
		return nil, err
	}

	sender, err := s.dir.GetEmployee(ctx, senderID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.dir.GetEmployee(ctx, dto.RecipientID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.resolver.Resolve(ctx, sender, recipient)
	if err != nil {
		return nil, err
	}
	if !verdict.Allowed {
		s.logger.Warn("direct send denied",
			"sender_id", senderID,
			"recipient_id", recipient.ID,
			"reason", verdict.Reason)
		return nil, internal.NewMessageNotAllowedError(verdict.Reason, verdict.Suggestion)
	}

	messageType := dto.MessageType
	if messageType == "" {
		messageType = TypeDirect
	}

	msg := s.newMessage(sender.ID, recipient.ID, dto.Content, dto.Subject, messageType, defaultPriority(dto.Priority))
	msg.ParentID = dto.ParentID

	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("failed to create message", "error", err, "sender_id", senderID)
		return nil, err
	}

	s.notifier.MessageDelivered(ctx, msg)

	s.logger.Info("direct message sent",
		"message_id", msg.ID,
		"sender_id", senderID,
		"recipient_id", recipient.ID,
		"rule", verdict.MatchedRule)

	return msg, nil
}

// SendToManager delivers to the sender's direct manager. Manager contact
// is always implicitly permitted, so the resolver is bypassed.
func (s *Service) SendToManager(ctx context.Context, senderID int64, dto SendToManagerDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("manager send validation failed", "error", err, "sender_id", senderID)
		return nil, err
	}

	sender, err := s.dir.GetEmployee(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if !sender.HasManager() {
		s.logger.Warn("manager send without manager", "sender_id", senderID)
		return nil, internal.ErrNoManagerAssigned
	}

	messageType := TypeDirect
	priority := defaultPriority(dto.Priority)
	if dto.IsEscalation {
		messageType = TypeEscalation
		priority = PriorityUrgent
	}

	msg := s.newMessage(sender.ID, *sender.ManagerID, dto.Content, dto.Subject, messageType, priority)

	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("failed to create message", "error", err, "sender_id", senderID)
		return nil, err
	}

	s.notifier.MessageDelivered(ctx, msg)

	s.logger.Info("message sent to manager",
		"message_id", msg.ID,
		"sender_id", senderID,
		"manager_id", *sender.ManagerID,
		"escalation", dto.IsEscalation)

	return msg, nil
}

// SendToHR routes to the most senior member of the HR department. HR is
// universally reachable, enforced here by construction.
func (s *Service) SendToHR(ctx context.Context, senderID int64, dto SendToHRDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("hr send validation failed", "error", err, "sender_id", senderID)
		return nil, err
	}

	sender, err := s.dir.GetEmployee(ctx, senderID)
	if err != nil {
		return nil, err
	}

	hrDept, err := s.dir.FindHRDepartment(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.dir.ListDepartmentMembers(ctx, hrDept.ID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		s.logger.Warn("hr department has no members", "department_id", hrDept.ID)
		return nil, internal.ErrNoHREmployees
	}

	recipient := mostSenior(members)

	msg := s.newMessage(sender.ID, recipient.ID, dto.Content, dto.Subject, TypeRequest, defaultPriority(dto.Priority))

	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("failed to create message", "error", err, "sender_id", senderID)
		return nil, err
	}

	s.notifier.MessageDelivered(ctx, msg)

	s.logger.Info("message sent to HR",
		"message_id", msg.ID,
		"sender_id", senderID,
		"recipient_id", recipient.ID)

	return msg, nil
}

// SendToDepartment fans an announcement out to every other member of the
// sender's department. Rows are independent; failures are skipped and the
// delivered count reflects what actually landed.
func (s *Service) SendToDepartment(ctx context.Context, senderID int64, dto BroadcastDTO) (*BroadcastResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("broadcast validation failed", "error", err, "sender_id", senderID)
		return nil, err
	}

	sender, err := s.dir.GetEmployee(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if sender.Department == nil {
		return nil, internal.NewValidationError("you belong to no department to announce to", internal.ErrCodeValidationFailed)
	}

	isManager, err := s.dir.HasDirectReports(ctx, sender.ID)
	if err != nil {
		return nil, err
	}
	if !isManager && !directory.IsAdminRole(sender.Role) {
		s.logger.Warn("broadcast denied: sender is not a manager or admin",
			"sender_id", senderID,
			"department_id", sender.Department.ID)
		return nil, internal.NewForbiddenError(
			"only managers and administrators can message a whole department",
			internal.ErrCodeBroadcastForbidden,
		).WithDetails(internal.DenialDetails{
			Reason:     "department announcements require at least one direct report or an administrative role",
			Suggestion: "ask your manager to announce this on your behalf",
		})
	}

	members, err := s.dir.ListDepartmentMembers(ctx, sender.Department.ID)
	if err != nil {
		return nil, err
	}

	result := &BroadcastResult{DepartmentID: sender.Department.ID}
	priority := defaultPriority(dto.Priority)

	for _, member := range members {
		if member.ID == sender.ID {
			continue
		}
		result.Recipients++

		msg := s.newMessage(sender.ID, member.ID, dto.Content, dto.Subject, TypeAnnouncement, priority)
		msg.DepartmentID = &sender.Department.ID

		if err := s.repo.Create(ctx, msg); err != nil {
			s.logger.Error("broadcast row failed, continuing",
				"error", err,
				"sender_id", senderID,
				"recipient_id", member.ID)
			continue
		}
		result.Delivered++

		s.notifier.MessageDelivered(ctx, msg)
	}

	s.logger.Info("department broadcast sent",
		"sender_id", senderID,
		"department_id", sender.Department.ID,
		"recipients", result.Recipients,
		"delivered", result.Delivered)

	return result, nil
}

// EscalateIssue routes an urgent escalation up the management chain.
// Level 1 targets the direct manager; escalateHigher moves to the
// manager's manager when one exists, and otherwise quietly stays at
// level 1 — that fallback is intended behavior, not an error.
func (s *Service) EscalateIssue(ctx context.Context, senderID int64, dto EscalateDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("escalation validation failed", "error", err, "sender_id", senderID)
		return nil, err
	}

	sender, err := s.dir.GetEmployee(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if !sender.HasManager() {
		s.logger.Warn("escalation without manager", "sender_id", senderID)
		return nil, internal.ErrNoManagerAssigned
	}

	manager, err := s.dir.GetEmployee(ctx, *sender.ManagerID)
	if err != nil {
		return nil, err
	}

	target := manager
	level := 1
	if dto.EscalateHigher && manager.HasManager() &&
		*manager.ManagerID != manager.ID && *manager.ManagerID != sender.ID {
		upper, err := s.dir.GetEmployee(ctx, *manager.ManagerID)
		if err != nil {
			return nil, err
		}
		target = upper
		level = 2
	}

	msg := s.newMessage(sender.ID, target.ID, dto.Content, dto.Subject, TypeEscalation, PriorityUrgent)
	msg.Metadata = map[string]interface{}{MetadataEscalationLevel: level}

	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("failed to create escalation", "error", err, "sender_id", senderID)
		return nil, err
	}

	s.notifier.MessageDelivered(ctx, msg)

	s.logger.Info("issue escalated",
		"message_id", msg.ID,
		"sender_id", senderID,
		"target_id", target.ID,
		"level", level)

	return msg, nil
}

// CheckCanMessage runs the resolver without sending anything.
func (s *Service) CheckCanMessage(ctx context.Context, senderID, targetID int64) (permission.Verdict, error) {
	sender, err := s.dir.GetEmployee(ctx, senderID)
	if err != nil {
		return permission.Verdict{}, err
	}
	target, err := s.dir.GetEmployee(ctx, targetID)
	if err != nil {
		return permission.Verdict{}, err
	}
	return s.resolver.Resolve(ctx, sender, target)
}

func (s *Service) newMessage(senderID, recipientID int64, content string, subject *string, messageType, priority string) *Message {
	return &Message{
		ID:          uuid.NewString(),
		SenderID:    &senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Content:     content,
		MessageType: messageType,
		Priority:    priority,
		Status:      StatusDelivered,
		CreatedAt:   time.Now().UTC(),
	}
}

func defaultPriority(priority string) string {
	if priority == "" {
		return PriorityNormal
	}
	return priority
}

// mostSenior picks the earliest hire date.
func mostSenior(members []*directory.Employee) *directory.Employee {
	senior := members[0]
	for _, m := range members[1:] {
		if m.HireDate.Before(senior.HireDate) {
			senior = m
		}
	}
	return senior
}
