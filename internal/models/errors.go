package models

import "errors"

// ErrorKind classifies a domain error so the transport layer can map it to a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidTransition
)

// String returns the name of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindInvalidTransition:
		return "invalid transition"
	default:
		return "internal"
	}
}

// Error is a classified domain error carrying a human-readable message.
//
// A sentinel with an empty message (ErrValidation, ErrNotFound, ...) matches every
// error of the same kind through errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is reports whether target is the kind sentinel of e
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
)

// Concrete errors shared between layers
var (
	ErrDuplicateUsername  = &Error{Kind: KindConflict, Message: "username already exists"}
	ErrDuplicateEmail     = &Error{Kind: KindConflict, Message: "email already exists"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "invalid credentials"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrCommunityNotFound  = &Error{Kind: KindNotFound, Message: "community not found"}
	ErrNewsNotFound       = &Error{Kind: KindNotFound, Message: "news not found"}
	ErrStatusNotPending   = &Error{Kind: KindInvalidTransition, Message: "community application has already been decided"}
)

// NewValidationError creates a validation error with the given message
func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewForbiddenError creates a forbidden error with the given message
func NewForbiddenError(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindInternal when err carries no classification.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
