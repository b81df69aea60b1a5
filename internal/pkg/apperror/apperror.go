package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindRateLimitExceeded Kind = "RATE_LIMIT_EXCEEDED"
	KindNotFound          Kind = "NOT_FOUND"
	KindExpired           Kind = "EXPIRED"
	KindNoPendingAction   Kind = "NO_PENDING_ACTION"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindUnknownTool       Kind = "UNKNOWN_TOOL"
	KindConflict          Kind = "CONFLICT"
	KindUpstream          Kind = "UPSTREAM_ERROR"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Error is the single error type crossing service boundaries.
// Controllers never inspect messages, only the Kind.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrRateLimitExceeded = &Error{Kind: KindRateLimitExceeded}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrExpired           = &Error{Kind: KindExpired}
	ErrNoPendingAction   = &Error{Kind: KindNoPendingAction}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnknownTool       = &Error{Kind: KindUnknownTool}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrUpstream          = &Error{Kind: KindUpstream}
	ErrInternal          = &Error{Kind: KindInternal}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

func RateLimitExceeded(current, limit int) *Error {
	return &Error{
		Kind:    KindRateLimitExceeded,
		Message: fmt.Sprintf("Daily limit of %d requests exceeded", limit),
		Details: map[string]interface{}{
			"current_count": current,
			"limit":         limit,
			"reset_time":    "00:00:00 UTC tomorrow",
		},
	}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the Kind of err, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindExpired:
		return http.StatusGone
	case KindNoPendingAction, KindValidation, KindUnknownTool:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
