// Package client is the RPC boundary between the client and the backend REST API.
//
// # Overview
//
// Client is a transport-agnostic contract with one method per session
// operation: Register, Login, Me, VerifyEmail, ResendOTP, ForgotPassword,
// ResetPassword, plus OAuthURL for the provider redirect. HTTPClient is the
// REST implementation. It:
//  1. attaches "Authorization: Bearer <token>" from a TokenSource and an
//     X-Request-ID to every call;
//  2. wraps calls in a circuit breaker (sony/gobreaker) and retries the
//     idempotent profile fetch on transport failures (sethvargo/go-retry);
//  3. validates every success body (go-playground/validator) before handing
//     typed results to the caller;
//  4. reports authorization failures (HTTP 401) to an UnauthorizedFunc.
//
// # Error Handling
//
// Every failure is an *Error with a Kind, an HTTP status when there was one,
// and a human readable Message. Raw transport errors never escape. Callers
// match the wrapped sentinels with errors.Is: ErrUnauthorized, ErrUnavailable,
// ErrInvalidCredentials, ErrInvalidOTP, ErrInvalidResetToken, ErrConflict,
// ErrInvalidInput, ErrMalformedResponse.
//
// Login failures never say which credential was wrong. OTP and reset-token
// failures may carry the backend's specific message.
package client
