package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnavailable        = errors.New("server unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrInvalidResetToken  = errors.New("invalid reset token")
	ErrConflict           = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrUnsupportedOAuth   = errors.New("unsupported oauth provider")
	ErrForbidden          = errors.New("forbidden")
)

// Kind classifies a failure for the UI.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindTransport      Kind = "transport"
	KindServer         Kind = "server"
)

// User-facing messages.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidOTP         = "Invalid or expired verification code"
	MsgInvalidResetToken  = "This reset link is invalid or has expired. Please request a new one."
	MsgSessionExpired     = "Your session has expired. Please log in again."
	MsgNetwork            = "Unable to reach the server. Please check your connection and try again."
	MsgServer             = "Something went wrong on our side. Please try again."
	MsgMalformedResponse  = "Unexpected response from the server. Please try again."
	MsgAccountExists      = "An account with this email already exists"
	MsgTooManyRequests    = "Too many requests. Please wait a moment and try again."
	MsgUnavailable        = "The service is temporarily unavailable. Please try again shortly."
	MsgForbidden          = "You do not have permission to do that."
)

// Error is the single failure shape returned by the client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport || e.Kind == KindServer
}

// Message extracts the user-facing message of err, falling back to a
// generic one for errors that did not come from this package.
func Message(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return MsgServer
}

// KindOf returns the Kind of err, KindServer for foreign errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindServer
}
