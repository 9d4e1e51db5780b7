package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is the stable error code surfaced to API clients.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindNotFound            Kind = "not_found"
	KindAuthorization       Kind = "authorization_error"
	KindConflict            Kind = "conflict"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindInsufficientCredits Kind = "insufficient_credits"
	KindAlreadyStarted      Kind = "booking_already_started"
	KindStorage             Kind = "storage_error"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string) *Error    { return New(KindValidation, message) }
func NotFound(message string) *Error      { return New(KindNotFound, message) }
func Authorization(message string) *Error { return New(KindAuthorization, message) }
func Conflict(message string) *Error      { return New(KindConflict, message) }

// KindOf unwraps err and returns its Kind. Unknown errors count as storage
// failures: the caller must assume no change occurred and may retry.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
