package cli

import (
	"context"

	"github.com/dmitrijs2005/learnportal/internal/client/forms"
	"github.com/dmitrijs2005/learnportal/internal/client/guard"
	"github.com/dmitrijs2005/learnportal/internal/common"
)

// Forgot requests a password reset link. The outcome never reveals whether
// the address has an account.
func (a *App) Forgot(ctx context.Context) error {
	if a.goTo(ctx, guard.PathForgotPassword) != guard.PathForgotPassword {
		return nil
	}

	form := forms.NewForgotPasswordForm(a.auth)
	for !form.Sent() {
		email, err := a.prompt("Email")
		if err != nil {
			return err
		}
		if err := form.Submit(ctx, email); err != nil {
			a.printFormErrors(form.FieldErrors(), form.FormError())
		}
	}
	a.println("If an account exists for that address, a reset link is on its way. Check your inbox.")
	return nil
}

// Reset sets a new password with the token from a reset link, then returns
// to the sign-in page after the redirect delay.
func (a *App) Reset(ctx context.Context, token string) error {
	if a.goTo(ctx, guard.PathResetPassword) != guard.PathResetPassword {
		return nil
	}

	redirected := make(chan struct{})
	form := forms.NewResetPasswordForm(a.auth, token, a.config.ResetRedirectDelay, func() { close(redirected) })
	defer form.Teardown()

	for !form.Done() {
		if form.Dead() {
			a.println(form.FormError())
			a.println("Use 'forgot' to request a new link.")
			return nil
		}

		pw, err := a.password("New password")
		if err != nil {
			return err
		}
		confirm, err := a.password("Confirm password")
		if err != nil {
			common.WipeByteArray(pw)
			return err
		}
		err = form.Submit(ctx, string(pw), string(confirm))
		common.WipeByteArray(pw)
		common.WipeByteArray(confirm)
		if err != nil && !form.Dead() {
			a.printFormErrors(form.FieldErrors(), form.FormError())
		}
	}

	a.printf("Password updated. Taking you to sign in in %d s...\n", form.RedirectRemaining())
	select {
	case <-redirected:
		a.goTo(ctx, guard.PathLogin)
	case <-ctx.Done():
	}
	return nil
}
