package models

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies a failed mutation.
type ErrorCode string

const (
	CodeConflict   ErrorCode = "CONFLICT"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeForbidden  ErrorCode = "FORBIDDEN"
	CodeValidation ErrorCode = "VALIDATION"
	CodeInternal   ErrorCode = "INTERNAL"
)

// ActionError is the failure half of a Result.
type ActionError struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Error implements error so an ActionError can be wrapped by callers.
func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Result is the tagged outcome of a mutation: either Data or Error is set.
type Result struct {
	Error   *ActionError    `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Success bool            `json:"success"`
}

// ConflictDetails is carried in ActionError.Details for CONFLICT failures.
type ConflictDetails struct {
	ServerData json.RawMessage `json:"server_data"`
}

// OK builds a successful result.
func OK(data any) Result {
	encoded, err := json.Marshal(data)
	if err != nil {
		return Fail(CodeInternal, fmt.Sprintf("failed to encode result: %v", err), nil)
	}
	return Result{Success: true, Data: encoded}
}

// Fail builds a failed result. details may be nil.
func Fail(code ErrorCode, message string, details any) Result {
	actionErr := &ActionError{Code: code, Message: message}
	if details != nil {
		if encoded, err := json.Marshal(details); err == nil {
			actionErr.Details = encoded
		}
	}
	return Result{Success: false, Error: actionErr}
}

// IsConflict reports whether the result is a CONFLICT failure.
func (r Result) IsConflict() bool {
	return !r.Success && r.Error != nil && r.Error.Code == CodeConflict
}
