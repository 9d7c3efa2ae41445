package acquire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why an acquisition step failed. The kind is assigned
// by the layer that detects the failure; callers branch on the kind instead
// of inspecting message strings.
type ErrorKind string

const (
	ErrorNotFound          ErrorKind = "not_found"
	ErrorTimeout           ErrorKind = "timeout"
	ErrorRateLimited       ErrorKind = "rate_limited"
	ErrorAuthExpired       ErrorKind = "auth_expired"
	ErrorExhausted         ErrorKind = "all_methods_exhausted"
	ErrorPartialCollection ErrorKind = "partial_collection"
	ErrorDeleted           ErrorKind = "deleted"
	ErrorPrivate           ErrorKind = "private"
	ErrorGeneric           ErrorKind = "error"
)

// Error is a classified acquisition failure.
type Error struct {
	Kind  ErrorKind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the kind from a classified error, falling back to the
// generic kind for anything else.
func KindOf(err error) ErrorKind {
	var acqErr *Error
	if errors.As(err, &acqErr) {
		return acqErr.Kind
	}
	return ErrorGeneric
}

// ClassifyMessage maps a remote failure message to an error kind by marker
// words. This string sniffing is best-effort and happens only here, at the
// acquisition boundary; everything above works with the resulting kind.
func ClassifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "deleted"), strings.Contains(lower, "removed"):
		return ErrorDeleted
	case strings.Contains(lower, "private"), strings.Contains(lower, "unavailable"):
		return ErrorPrivate
	default:
		return ErrorGeneric
	}
}
