package forms

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/countdown"
	"github.com/dmitrijs2005/learnportal/internal/client/validate"
)

// ForgotPasswordForm requests a reset link. Whether the address has an
// account is never revealed: any non-transport outcome shows the same
// "check your email" state.
type ForgotPasswordForm struct {
	pending
	fieldErrors

	auth Auth

	mu   sync.Mutex
	sent bool
}

func NewForgotPasswordForm(auth Auth) *ForgotPasswordForm {
	return &ForgotPasswordForm{auth: auth}
}

// Submit validates email and requests the link. Only transport failures
// are reported; they can be retried.
func (f *ForgotPasswordForm) Submit(ctx context.Context, email string) error {
	if err := validate.ForgotPassword(email); err != nil {
		f.fromError(err)
		return err
	}
	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	f.reset()
	err := f.auth.ForgotPassword(ctx, validate.NormalizeEmail(email))
	if err != nil && client.KindOf(err) == client.KindTransport {
		f.fromError(err)
		return err
	}

	f.mu.Lock()
	f.sent = true
	f.mu.Unlock()
	return nil
}

// Sent reports whether the success state is showing.
func (f *ForgotPasswordForm) Sent() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

// ResetPasswordForm sets a new password with the token from a reset link.
// The token is single use: once rejected the form is dead and the user must
// request a new link.
type ResetPasswordForm struct {
	pending
	fieldErrors

	auth     Auth
	token    string
	redirect *countdown.Countdown
	ticks    int

	mu   sync.Mutex
	dead bool
	done bool
}

// NewResetPasswordForm binds the form to token. After a successful reset
// onRedirect runs once delay has passed, unless Teardown came first.
func NewResetPasswordForm(auth Auth, token string, delay time.Duration, onRedirect func()) *ResetPasswordForm {
	ticks, interval := countdown.Ticks(delay)
	f := &ResetPasswordForm{
		auth:  auth,
		token: strings.TrimSpace(token),
		ticks: ticks,
		dead:  strings.TrimSpace(token) == "",
	}
	if f.dead {
		f.formError = client.MsgInvalidResetToken
	}
	f.redirect = countdown.New(interval, nil, onRedirect)
	return f
}

// Submit resets the password. A rejected token makes the form dead and
// returns an error wrapping ErrResetTokenDead.
func (f *ResetPasswordForm) Submit(ctx context.Context, password, confirm string) error {
	f.mu.Lock()
	dead, done := f.dead, f.done
	f.mu.Unlock()
	if dead {
		return ErrResetTokenDead
	}
	if done {
		return nil
	}

	if err := validate.ResetPassword(password, confirm); err != nil {
		f.fromError(err)
		return err
	}
	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	f.reset()
	err := f.auth.ResetPassword(ctx, f.token, password)
	switch {
	case errors.Is(err, client.ErrInvalidResetToken):
		f.fromError(err)
		f.mu.Lock()
		f.dead = true
		f.mu.Unlock()
		return errors.Join(ErrResetTokenDead, err)
	case err != nil:
		f.fromError(err)
		return err
	}

	f.mu.Lock()
	f.done = true
	f.mu.Unlock()
	f.redirect.Start(f.ticks)
	return nil
}

// Dead reports whether the token was rejected or missing.
func (f *ResetPasswordForm) Dead() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dead
}

// Done reports whether the password was reset.
func (f *ResetPasswordForm) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// RedirectRemaining is the number of ticks left before the redirect.
func (f *ResetPasswordForm) RedirectRemaining() int {
	return f.redirect.Remaining()
}

// Teardown cancels a scheduled redirect.
func (f *ResetPasswordForm) Teardown() {
	f.redirect.Stop()
}
