package services

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindAuthorization
	KindConflict
	KindInternal
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("not authorized")
	ErrConflict      = errors.New("conflict")
	ErrInternal      = errors.New("internal error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindAuthorization:
		return ErrAuthorization
	case KindConflict:
		return ErrConflict
	default:
		return ErrInternal
	}
}

// LedgerError carries the error kind plus the offending field (validation)
// or the identifying key (not found, authorization).
type LedgerError struct {
	Kind    ErrorKind
	Field   string
	Key     any
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Key != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Key)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *LedgerError) Unwrap() error { return e.Err }

func (e *LedgerError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func validationError(field, message string) error {
	return &LedgerError{Kind: KindValidation, Field: field, Message: message}
}

func notFoundError(what string, key any) error {
	return &LedgerError{Kind: KindNotFound, Field: what, Message: "not found", Key: key}
}

func authorizationError(message string, key any) error {
	return &LedgerError{Kind: KindAuthorization, Message: message, Key: key}
}

func conflictError(message string, key any) error {
	return &LedgerError{Kind: KindConflict, Message: message, Key: key}
}

func internalError(message string, err error) error {
	return &LedgerError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err, KindInternal for anything that is not a
// LedgerError.
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}
