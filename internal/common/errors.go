package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorInvalidInput  = errors.New("invalid input")
	ErrTooManyRequests = errors.New("too many requests")
	ErrAlreadyVerified = errors.New("email already verified")

	// Token / code lifecycle errors.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidOTP        = errors.New("invalid or expired verification code")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)
