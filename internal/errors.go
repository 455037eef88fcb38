package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeForbidden  ErrorType = "FORBIDDEN"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidContent   ErrorCode = "INVALID_CONTENT"
	ErrCodeInvalidRecipient ErrorCode = "INVALID_RECIPIENT"

	ErrCodeEmployeeNotFound     ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeMessageNotFound      ErrorCode = "MESSAGE_NOT_FOUND"
	ErrCodeMessageNotAllowed    ErrorCode = "MESSAGE_NOT_ALLOWED"
	ErrCodeNoManagerAssigned    ErrorCode = "NO_MANAGER_ASSIGNED"
	ErrCodeHRDepartmentNotFound ErrorCode = "HR_DEPARTMENT_NOT_FOUND"
	ErrCodeNoHREmployees        ErrorCode = "NO_HR_EMPLOYEES"
	ErrCodeBroadcastForbidden   ErrorCode = "BROADCAST_FORBIDDEN"
	ErrCodeCannotReply          ErrorCode = "CANNOT_REPLY"

	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// DenialDetails carries the human-readable reason a permission check failed
// plus an actionable suggestion for the sender.
type DenialDetails struct {
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewMessageNotAllowedError builds the denial error for a rejected send,
// always carrying reason and suggestion so the caller can act on it.
func NewMessageNotAllowedError(reason, suggestion string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       ErrCodeMessageNotAllowed,
		Message:    "you are not allowed to message this employee",
		StatusCode: http.StatusForbidden,
		Details:    DenialDetails{Reason: reason, Suggestion: suggestion},
	}
}

var (
	ErrEmployeeNotFound     = NewNotFoundError("employee not found", ErrCodeEmployeeNotFound)
	ErrMessageNotFound      = NewNotFoundError("message not found", ErrCodeMessageNotFound)
	ErrNoManagerAssigned    = NewValidationError("you have no manager assigned", ErrCodeNoManagerAssigned)
	ErrHRDepartmentNotFound = NewNotFoundError("no HR department exists in this organization", ErrCodeHRDepartmentNotFound)
	ErrNoHREmployees        = NewNotFoundError("the HR department has no members", ErrCodeNoHREmployees)
	ErrCannotReply          = NewValidationError("this message has no sender to reply to", ErrCodeCannotReply)

	ErrInvalidToken = &AppError{
		Type:       "UNAUTHORIZED",
		Code:       ErrCodeInvalidToken,
		Message:    "invalid token",
		StatusCode: http.StatusUnauthorized,
	}
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
