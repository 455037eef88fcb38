package messaging

import (
	errors "github.com/workstack/org-messaging/internal"
	"github.com/workstack/org-messaging/internal/core/common/validation"
)

const maxContentLength = 4000

// SendDirectDTO is the request payload for a peer-to-peer send.
type SendDirectDTO struct {
	RecipientID int64   `json:"recipient_id"`
	Content     string  `json:"content"`
	Subject     *string `json:"subject,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	MessageType string  `json:"message_type,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
}

func (dto SendDirectDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("recipient_id", dto.RecipientID).Required()
	v.Field("content", dto.Content).Required().MaxLength(maxContentLength)
	v.Field("priority", dto.Priority).OneOf(PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent)
	v.Field("message_type", dto.MessageType).OneOf(TypeDirect, TypeRequest)
	return v.Validate()
}

type SendToManagerDTO struct {
	Content      string  `json:"content"`
	Subject      *string `json:"subject,omitempty"`
	Priority     string  `json:"priority,omitempty"`
	IsEscalation bool    `json:"is_escalation,omitempty"`
}

func (dto SendToManagerDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("content", dto.Content).Required().MaxLength(maxContentLength)
	v.Field("priority", dto.Priority).OneOf(PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent)
	return v.Validate()
}

type SendToHRDTO struct {
	Content  string  `json:"content"`
	Subject  *string `json:"subject,omitempty"`
	Priority string  `json:"priority,omitempty"`
}

func (dto SendToHRDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("content", dto.Content).Required().MaxLength(maxContentLength)
	v.Field("priority", dto.Priority).OneOf(PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent)
	return v.Validate()
}

type BroadcastDTO struct {
	Content  string  `json:"content"`
	Subject  *string `json:"subject,omitempty"`
	Priority string  `json:"priority,omitempty"`
}

func (dto BroadcastDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("content", dto.Content).Required().MaxLength(maxContentLength)
	v.Field("priority", dto.Priority).OneOf(PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent)
	return v.Validate()
}

type EscalateDTO struct {
	Content        string  `json:"content"`
	Subject        *string `json:"subject,omitempty"`
	EscalateHigher bool    `json:"escalate_higher,omitempty"`
}

func (dto EscalateDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("content", dto.Content).Required().MaxLength(maxContentLength)
	return v.Validate()
}

type ReplyDTO struct {
	Content string `json:"content"`
}

func (dto ReplyDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("content", dto.Content).Required().MaxLength(maxContentLength)
	return v.Validate()
}

// InboxFilter narrows inbox listings; zero value means no filtering.
type InboxFilter struct {
	UnreadOnly  bool
	MessageType string
}
