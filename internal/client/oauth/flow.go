package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/logging"
)

// DefaultTimeout bounds how long SignIn waits for the provider's return.
const DefaultTimeout = 5 * time.Minute

// URLBuilder returns the backend's authorization URL for provider.
type URLBuilder interface {
	OAuthURL(provider, redirectURI string) (string, error)
}

// Completer turns the returned token into a session.
type Completer interface {
	CompleteOAuth(ctx context.Context, token string) error
}

// SignIn runs one OAuth sign-in: it starts a receiver on addr, passes the
// authorization URL to open (typically printing it or launching a browser),
// waits for the callback and completes the session with the token.
func SignIn(ctx context.Context, urls URLBuilder, auth Completer, provider, addr string, open func(string) error, log logging.Logger) error {
	recv := NewReceiver(addr, log)
	callback, err := recv.Start()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = recv.Close(shutdownCtx)
	}()

	authURL, err := urls.OAuthURL(provider, callback)
	if err != nil {
		return err
	}
	if err := open(authURL); err != nil {
		return fmt.Errorf("open authorization url: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	token, err := recv.Wait(ctx)
	if err != nil {
		return err
	}
	return auth.CompleteOAuth(ctx, token)
}
