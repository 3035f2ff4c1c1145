package apierr

import "fmt"

// Stable machine-readable codes surfaced to clients.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeFlowNotFound       = "FLOW_NOT_FOUND"
	CodeFlowInactive       = "FLOW_INACTIVE"
	CodeNoNodes            = "NO_NODES"
	CodeNodeNotFound       = "NODE_NOT_FOUND"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeSessionCreate      = "SESSION_CREATE_ERROR"
	CodeDatabase           = "DATABASE_ERROR"
	CodeEventProcessing    = "EVENT_PROCESSING_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}
