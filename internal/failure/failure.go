// Package failure holds the tagged error taxonomy shared by every layer
// that talks to the portal.
package failure

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUnexpectedResponse is also the kind of any error that was never tagged.
	KindUnexpectedResponse Kind = iota
	KindInvalidCredentials
	KindInvalidToken
	KindNetworkError
	KindExpiredSession
	KindClassDoesNotExist
	KindStudentNotInClass
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidToken:
		return "invalid_token"
	case KindNetworkError:
		return "network_error"
	case KindExpiredSession:
		return "expired_session"
	case KindClassDoesNotExist:
		return "class_does_not_exist"
	case KindStudentNotInClass:
		return "student_not_in_class"
	default:
		return "unexpected_response"
	}
}

// Error is a failure tagged with the Kind callers branch on.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against any *Error of the same kind, so the sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrNetwork            = &Error{Kind: KindNetworkError}
	ErrUnexpectedResponse = &Error{Kind: KindUnexpectedResponse}
	ErrExpiredSession     = &Error{Kind: KindExpiredSession}
	ErrClassDoesNotExist  = &Error{Kind: KindClassDoesNotExist}
	ErrStudentNotInClass  = &Error{Kind: KindStudentNotInClass}
)

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithKind tags err with kind, leaving already tagged errors untouched.
func WithKind(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Wrap tags an unclassified error as an unexpected response.
func Wrap(err error) error {
	return WithKind(KindUnexpectedResponse, "", err)
}

// KindOf returns the kind of the outermost tagged error in err's chain.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindUnexpectedResponse
}
