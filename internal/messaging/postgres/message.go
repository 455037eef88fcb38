package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/workstack/org-messaging/internal"
	messageDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/message"
	"github.com/workstack/org-messaging/internal/messaging"
	"gorm.io/gorm"
)

// MessageRepository implements the messaging.Repository interface using GORM
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) messaging.Repository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *messaging.Message) error {
	return r.db.WithContext(ctx).Create(messaging.ToDataModel(msg)).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*messaging.Message, error) {
	var msg messageDatamodel.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrMessageNotFound
		}
		return nil, err
	}
	return messaging.FromDataModel(&msg), nil
}

func (r *MessageRepository) ListForRecipient(ctx context.Context, recipientID int64, filter messaging.InboxFilter, limit, offset int) ([]*messaging.Message, error) {
	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID)

	if filter.UnreadOnly {
		query = query.Where("status = ?", messaging.StatusDelivered)
	}
	if filter.MessageType != "" {
		query = query.Where("message_type = ?", filter.MessageType)
	}

	var messages []*messageDatamodel.Message
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messaging.FromDataModelSlice(messages), nil
}

func (r *MessageRepository) ListForSender(ctx context.Context, senderID int64, limit, offset int) ([]*messaging.Message, error) {
	var messages []*messageDatamodel.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messaging.FromDataModelSlice(messages), nil
}

// ListReplies returns the reply chain of a message, oldest first.
func (r *MessageRepository) ListReplies(ctx context.Context, parentID string) ([]*messaging.Message, error) {
	var messages []*messageDatamodel.Message
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messaging.FromDataModelSlice(messages), nil
}

// MarkRead transitions delivered to read. The update is conditional on
// the current status so concurrent reads set read_at exactly once.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&messageDatamodel.Message{}).
		Where("id = ? AND status = ?", id, messaging.StatusDelivered).
		Updates(map[string]interface{}{
			"status":  messaging.StatusRead,
			"read_at": readAt,
		}).Error
}

func (r *MessageRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&messageDatamodel.Message{}).
		Where("recipient_id = ? AND status = ?", recipientID, messaging.StatusDelivered).
		Count(&count).Error
	return count, err
}
