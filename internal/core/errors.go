package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeValidation      = "validation_failure"
	ErrCodeRoomNotFound    = "room_not_found"
	ErrCodePolicyViolation = "policy_violation"
	ErrCodeUnaffiliated    = "unaffiliated"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUnknownType     = "unknown_type"
	ErrCodeRateLimited     = "rate_limited"
)

var (
	ErrAlreadyRegistered = errors.New("connection already registered")
	ErrNotRegistered     = errors.New("connection not registered")
	ErrInvalidBuzzMode   = errors.New("invalid buzz mode")
	ErrBlankName         = errors.New("blank display name")
	ErrHubStopped        = errors.New("hub stopped")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
