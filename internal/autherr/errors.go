// Package autherr defines the error taxonomy of the authentication subsystem.
package autherr

import (
	"errors"
	"fmt"
)

// Error kinds. Compare with errors.Is.
var (
	// ErrAccountAlreadyExists indicates that the identity is already registered
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrNoSuchAccount indicates that no account exists for the identity
	ErrNoSuchAccount = errors.New("no such account")

	// ErrNoSuchRole indicates that the role tag does not resolve to a known role
	ErrNoSuchRole = errors.New("no such role")

	// ErrAccountNotVerified indicates that the account has not completed verification
	ErrAccountNotVerified = errors.New("account not verified")

	// ErrAccountAlreadyVerified indicates that the account is already enabled
	ErrAccountAlreadyVerified = errors.New("account already verified")

	// ErrCodeExpired indicates that the verification code is past its expiry
	ErrCodeExpired = errors.New("verification code expired")

	// ErrCodeMismatch indicates that the submitted verification code is wrong
	ErrCodeMismatch = errors.New("verification code mismatch")

	// ErrBadCredentials indicates that the secret does not match
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidToken indicates that bearer material was rejected by the refresh protocol
	ErrInvalidToken = errors.New("invalid token")

	// ErrMalformedToken indicates a token with a bad structure or signature
	ErrMalformedToken = errors.New("malformed token")

	// ErrDelivery indicates that a mail could not be delivered
	ErrDelivery = errors.New("mail delivery failed")

	// ErrTooManyAttempts indicates that the attempt limiter rejected the call
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Error is a concrete authentication error. Value holds the offending
// identity, code or raw token; Cause is an optional underlying error.
type Error struct {
	Kind  error
	Cause error
	Value string
}

// New creates an error of the given kind for value.
func New(kind error, value string) *Error {
	return &Error{Kind: kind, Value: value}
}

// Wrap creates an error of the given kind for value with an underlying cause.
func Wrap(kind error, value string, cause error) *Error {
	return &Error{Kind: kind, Value: value, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Kind, e.Value, e.Cause)
	}
	return fmt.Sprintf("%s [%s]", e.Kind, e.Value)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// ValueOf returns the offending value carried by err, if any.
func ValueOf(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Value, true
	}
	return "", false
}

// KindOf returns the taxonomy kind of err, or nil for errors outside the taxonomy.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
