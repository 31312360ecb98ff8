// Package common contains constants and helpers shared by the client and the
// development backend.
package common

const (
	// AuthorizationHeaderName carries the bearer token on authenticated calls.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "
	// RequestIDHeaderName correlates a client call with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// TokenStorageKey is the fixed key the bearer token is persisted under.
	// Absence of the key means "unauthenticated".
	TokenStorageKey = "auth_token"

	// OTPLength is the number of digits in an email verification code.
	OTPLength = 6
)
