package message

import (
	"time"

	"gorm.io/datatypes"
)

// Message is one delivered unit. Broadcast sends create one independent
// row per recipient; SenderID is null for system-originated messages and
// ReadAt stays null until the recipient reads it.
type Message struct {
	ID           string            `json:"id" gorm:"primaryKey;size:36"`
	SenderID     *int64            `json:"sender_id,omitempty" gorm:"column:sender_id;index"`
	RecipientID  int64             `json:"recipient_id" gorm:"column:recipient_id;not null;index"`
	DepartmentID *int64            `json:"department_id,omitempty" gorm:"column:department_id"`
	Subject      *string           `json:"subject,omitempty" gorm:"column:subject"`
	Content      string            `json:"content" gorm:"type:text;not null"`
	MessageType  string            `json:"message_type" gorm:"column:message_type;not null;default:direct"`
	Priority     string            `json:"priority" gorm:"not null;default:normal"`
	Status       string            `json:"status" gorm:"not null;default:delivered"`
	ReadAt       *time.Time        `json:"read_at,omitempty" gorm:"column:read_at"`
	ParentID     *string           `json:"parent_id,omitempty" gorm:"column:parent_id;size:36;index"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"column:metadata"`
	CreatedAt    time.Time         `json:"created_at" gorm:"column:created_at;default:now()"`
}

// TableName returns the table name for GORM
func (Message) TableName() string {
	return "messages"
}
