package messaging

import (
	"time"

	messageDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/message"
	"gorm.io/datatypes"
)

type Message struct {
	ID           string                 `json:"id"`
	SenderID     *int64                 `json:"sender_id,omitempty"`
	RecipientID  int64                  `json:"recipient_id"`
	DepartmentID *int64                 `json:"department_id,omitempty"`
	Subject      *string                `json:"subject,omitempty"`
	Content      string                 `json:"content"`
	MessageType  string                 `json:"message_type"`
	Priority     string                 `json:"priority"`
	Status       string                 `json:"status"`
	ReadAt       *time.Time             `json:"read_at,omitempty"`
	ParentID     *string                `json:"parent_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

const (
	TypeDirect       = "direct"
	TypeRequest      = "request"
	TypeAnnouncement = "announcement"
	TypeEscalation   = "escalation"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	StatusDelivered = "delivered"
	StatusRead      = "read"

	MetadataEscalationLevel = "escalation_level"
)

func (m *Message) IsRead() bool {
	return m.Status == StatusRead
}

func (m *Message) IsSystemMessage() bool {
	return m.SenderID == nil
}

// Thread is a message together with its ordered reply chain, assembled
// on read for display.
type Thread struct {
	Message *Message   `json:"message"`
	Replies []*Message `json:"replies"`
}

// BroadcastResult reports a department fan-out: rows are independent, so
// delivery is best-effort and Delivered may be lower than Recipients.
type BroadcastResult struct {
	DepartmentID int64 `json:"department_id"`
	Recipients   int   `json:"recipients"`
	Delivered    int   `json:"delivered"`
}

func ToDataModel(m *Message) *messageDatamodel.Message {
	dm := &messageDatamodel.Message{
		ID:           m.ID,
		SenderID:     m.SenderID,
		RecipientID:  m.RecipientID,
		DepartmentID: m.DepartmentID,
		Subject:      m.Subject,
		Content:      m.Content,
		MessageType:  m.MessageType,
		Priority:     m.Priority,
		Status:       m.Status,
		ReadAt:       m.ReadAt,
		ParentID:     m.ParentID,
		CreatedAt:    m.CreatedAt,
	}
	if m.Metadata != nil {
		dm.Metadata = datatypes.JSONMap(m.Metadata)
	}
	return dm
}

func FromDataModel(m *messageDatamodel.Message) *Message {
	msg := &Message{
		ID:           m.ID,
		SenderID:     m.SenderID,
		RecipientID:  m.RecipientID,
		DepartmentID: m.DepartmentID,
		Subject:      m.Subject,
		Content:      m.Content,
		MessageType:  m.MessageType,
		Priority:     m.Priority,
		Status:       m.Status,
		ReadAt:       m.ReadAt,
		ParentID:     m.ParentID,
		CreatedAt:    m.CreatedAt,
	}
	if m.Metadata != nil {
		msg.Metadata = map[string]interface{}(m.Metadata)
	}
	return msg
}

func FromDataModelSlice(messages []*messageDatamodel.Message) []*Message {
	result := make([]*Message, len(messages))
	for i, m := range messages {
		result[i] = FromDataModel(m)
	}
	return result
}
