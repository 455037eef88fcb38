package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/workstack/org-messaging/internal"
)

// ReadMessage marks a delivered message as read and returns it together
// with its reply chain, oldest reply first. Reading is idempotent: a
// message already read keeps its original read_at, and two concurrent
// reads resolve to a single transition because the store's update is
// conditional on the delivered status.
func (s *Service) ReadMessage(ctx context.Context, employeeID int64, messageID string) (*Thread, error) {
	msg, err := s.getOwnedMessage(ctx, employeeID, messageID)
	if err != nil {
		return nil, err
	}

	if !msg.IsRead() {
		if err := s.repo.MarkRead(ctx, msg.ID, time.Now().UTC()); err != nil {
			s.logger.Error("failed to mark message read", "error", err, "message_id", msg.ID)
			return nil, err
		}
		// reload so read_at reflects whichever read won
		msg, err = s.repo.GetByID(ctx, messageID)
		if err != nil {
			return nil, err
		}

		s.logger.Info("message read",
			"message_id", msg.ID,
			"recipient_id", employeeID)
	}

	replies, err := s.repo.ListReplies(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	return &Thread{Message: msg, Replies: replies}, nil
}

// Reply creates a new message back to the original sender. Direction is
// inverted, and reachability is re-checked with the resolver: receiving a
// message does not by itself authorize the reverse path.
func (s *Service) Reply(ctx context.Context, employeeID int64, messageID string, dto ReplyDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("reply validation failed", "error", err, "employee_id", employeeID)
		return nil, err
	}

	original, err := s.getOwnedMessage(ctx, employeeID, messageID)
	if err != nil {
		return nil, err
	}
	if original.IsSystemMessage() {
		s.logger.Warn("reply to system message rejected", "message_id", messageID, "employee_id", employeeID)
		return nil, internal.ErrCannotReply
	}

	replier, err := s.dir.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	originalSender, err := s.dir.GetEmployee(ctx, *original.SenderID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.resolver.Resolve(ctx, replier, originalSender)
	if err != nil {
		return nil, err
	}
	if !verdict.Allowed {
		s.logger.Warn("reply denied",
			"employee_id", employeeID,
			"original_sender_id", originalSender.ID,
			"reason", verdict.Reason)
		return nil, internal.NewMessageNotAllowedError(verdict.Reason, verdict.Suggestion)
	}

	// an unsubjected original yields an unsubjected reply, not a bare "Re: "
	var subject *string
	if original.Subject != nil {
		re := fmt.Sprintf("Re: %s", *original.Subject)
		subject = &re
	}

	reply := s.newMessage(replier.ID, originalSender.ID, dto.Content, subject, TypeDirect, original.Priority)
	reply.ParentID = &original.ID

	if err := s.repo.Create(ctx, reply); err != nil {
		s.logger.Error("failed to create reply", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.notifier.MessageDelivered(ctx, reply)

	s.logger.Info("reply sent",
		"message_id", reply.ID,
		"parent_id", original.ID,
		"sender_id", replier.ID,
		"recipient_id", originalSender.ID)

	return reply, nil
}

// ListInbox retrieves messages delivered to the employee, newest first.
func (s *Service) ListInbox(ctx context.Context, employeeID int64, filter InboxFilter, limit, offset int) ([]*Message, error) {
	messages, err := s.repo.ListForRecipient(ctx, employeeID, filter, limit, offset)
	if err != nil {
		s.logger.Error("failed to list inbox", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return messages, nil
}

// ListSent retrieves messages the employee has sent, newest first.
func (s *Service) ListSent(ctx context.Context, employeeID int64, limit, offset int) ([]*Message, error) {
	messages, err := s.repo.ListForSender(ctx, employeeID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list sent messages", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return messages, nil
}

func (s *Service) CountUnread(ctx context.Context, employeeID int64) (int64, error) {
	return s.repo.CountUnread(ctx, employeeID)
}

// getOwnedMessage loads a message and checks it belongs to the caller's
// inbox; anything else is reported as not found.
func (s *Service) getOwnedMessage(ctx context.Context, employeeID int64, messageID string) (*Message, error) {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID != employeeID {
		s.logger.Warn("message access denied",
			"message_id", messageID,
			"employee_id", employeeID,
			"owner_id", msg.RecipientID)
		return nil, internal.ErrMessageNotFound
	}
	return msg, nil
}
