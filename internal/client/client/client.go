package client

import (
	"context"

	"github.com/dmitrijs2005/learnportal/internal/client/models"
)

// RegisterRequest is the registration payload sent to the backend.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login. RequiresVerification is only
// meaningful for Register: when true the session is not yet fully
// authenticated and the caller must route to email verification.
type AuthResult struct {
	Token                string
	User                 *models.User
	RequiresVerification bool
}

// Client maps each session operation onto exactly one backend call.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context) (*models.User, error)
	VerifyEmail(ctx context.Context, otp string) (*models.User, error)
	ResendOTP(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	OAuthURL(provider, redirectURI string) (string, error)
}

// TokenSource supplies the current bearer token, "" when there is none.
type TokenSource interface {
	Token() string
}

// UnauthorizedFunc is invoked after any call answered with an authorization
// failure. operation names the call, e.g. "login" or "me".
type UnauthorizedFunc func(ctx context.Context, operation string)
