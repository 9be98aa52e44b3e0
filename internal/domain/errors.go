package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the driving adapters can pick a response
// without inspecting messages.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified error. Msg is safe to show to API clients; Err is
// the optional cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrUserAlreadyExists is returned when signing up with a taken email.
	ErrUserAlreadyExists = &Error{Kind: KindConflict, Msg: "User with this email already exists"}
	// ErrUserNotFound is returned by lookups and mutations of an unknown user.
	ErrUserNotFound = &Error{Kind: KindNotFound, Msg: "User not found"}
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Msg: "Invalid email or password"}
	// ErrTokenMissing is returned when a protected route gets no bearer token.
	ErrTokenMissing = &Error{Kind: KindUnauthorized, Msg: "Access token required"}
	// ErrTokenInvalid is returned for bad signatures, malformed and expired tokens.
	ErrTokenInvalid = &Error{Kind: KindForbidden, Msg: "Invalid or expired token"}
	// ErrDrugNotFound is returned when no source knows the requested drug.
	ErrDrugNotFound = &Error{Kind: KindNotFound, Msg: "Drug not found"}
	// ErrDrugDataUnavailable is returned when a drug reference API fails.
	ErrDrugDataUnavailable = &Error{Kind: KindUpstream, Msg: "Drug data not available"}
	// ErrLLMUnavailable is returned when the language model cannot answer.
	ErrLLMUnavailable = &Error{Kind: KindUpstream, Msg: "Failed to generate a response"}
)

// Invalid returns a validation error with a client-facing message.
func Invalid(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error with a client-facing message.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Upstream wraps a failed call to a third-party service.
func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// KindOf reports the kind of the first classified error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err. Internal errors get
// a generic message so causes never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "Internal server error"
}
