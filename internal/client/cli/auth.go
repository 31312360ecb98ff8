package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/forms"
	"github.com/dmitrijs2005/learnportal/internal/client/guard"
	"github.com/dmitrijs2005/learnportal/internal/client/oauth"
	"github.com/dmitrijs2005/learnportal/internal/client/validate"
	"github.com/dmitrijs2005/learnportal/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// openURL hands the OAuth authorization URL to the user.
var openURL = func(w io.Writer, url string) error {
	_, err := fmt.Fprintf(w, "Open this link in your browser to continue:\n  %s\n", url)
	return err
}

// Register walks through the registration screen field by field. Each field
// is re-asked until it validates; a likely email typo is offered as a
// correction. On success the app moves to wherever the state machine says.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		a.println("You are already signed in. Use 'logout' first.")
		return nil
	}
	if a.goTo(ctx, guard.PathRegister) != guard.PathRegister {
		return nil
	}

	form := forms.NewRegisterForm(a.auth)
	if err := a.askField(form, validate.FieldName, "Full name"); err != nil {
		return err
	}
	if err := a.askEmail(form); err != nil {
		return err
	}
	if err := a.askNewPassword(form); err != nil {
		return err
	}
	if err := a.askConfirm(form); err != nil {
		return err
	}

	dest, err := form.Submit(ctx)
	if err != nil {
		a.printFormErrors(form.FieldErrors(), form.FormError())
		return nil
	}
	a.println("Account created.")
	a.goTo(ctx, dest)
	return nil
}

func (a *App) askField(form *forms.RegisterForm, field, label string) error {
	for {
		v, err := a.prompt(label)
		if err != nil {
			return err
		}
		r := form.Set(field, v)
		if r.Valid {
			return nil
		}
		a.println("  " + r.Message)
	}
}

func (a *App) askEmail(form *forms.RegisterForm) error {
	for {
		v, err := a.prompt("Email")
		if err != nil {
			return err
		}
		r := form.Set(validate.FieldEmail, v)
		if r.Valid {
			return nil
		}
		if r.IsAdvisory() {
			yes, err := a.confirm(r.Message)
			if err != nil {
				return err
			}
			if yes {
				form.AcceptSuggestion()
			}
			return nil
		}
		a.println("  " + r.Message)
	}
}

func (a *App) askNewPassword(form *forms.RegisterForm) error {
	for {
		pw, err := a.password("Password")
		if err != nil {
			return err
		}
		r := form.Set(validate.FieldPassword, string(pw))
		common.WipeByteArray(pw)

		s := form.Strength()
		a.printf("  Strength: %s (%d/100)\n", s.Label, s.Score)
		if r.Valid {
			return nil
		}
		a.println("  " + r.Message)
		for _, c := range s.Checks {
			if c.Required && !c.Met {
				a.println("    - " + c.Label)
			}
		}
	}
}

func (a *App) askConfirm(form *forms.RegisterForm) error {
	for {
		pw, err := a.password("Confirm password")
		if err != nil {
			return err
		}
		r := form.Set(validate.FieldConfirmPassword, string(pw))
		common.WipeByteArray(pw)
		if r.Valid {
			return nil
		}
		a.println("  " + r.Message)
	}
}

// Login asks for credentials and signs in. If a guard redirect brought the
// user here, a successful login returns them to the interrupted page.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.println("You are already signed in. Use 'logout' first.")
		return nil
	}
	if rt := a.router.TakeReturnTo(); rt != "" {
		a.returnTo = rt
	}
	if a.goTo(ctx, guard.PathLogin) != guard.PathLogin {
		return nil
	}

	form := forms.NewLoginForm(a.auth)
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	form.SetEmail(email)

	pw, err := a.password("Password")
	if err != nil {
		return err
	}
	form.SetPassword(string(pw))
	common.WipeByteArray(pw)

	dest, err := form.Submit(ctx, a.returnTo)
	if err != nil {
		a.printFormErrors(form.FieldErrors(), form.FormError())
		return nil
	}
	a.returnTo = ""
	a.goTo(ctx, dest)
	return nil
}

// OAuth signs in through an external provider. The authorization link is
// printed; the provider's redirect comes back to a local listener.
func (a *App) OAuth(ctx context.Context, provider string) error {
	if provider == "" {
		a.println("Usage: oauth <google|github>")
		return nil
	}
	if a.isLoggedIn() {
		a.println("You are already signed in. Use 'logout' first.")
		return nil
	}

	a.println("Waiting for the provider to redirect back...")
	err := oauth.SignIn(ctx, a.auth, a.auth, provider, a.config.OAuthCallbackAddr, func(u string) error {
		a.outMu.Lock()
		defer a.outMu.Unlock()
		return openURL(a.out, u)
	}, a.logger)
	switch {
	case errors.Is(err, client.ErrUnsupportedOAuth):
		a.println("Unsupported provider:", provider)
		return nil
	case errors.Is(err, oauth.ErrDenied):
		a.println("Sign-in was cancelled.")
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		a.println("Timed out waiting for the provider.")
		return nil
	case err != nil:
		a.println("Sign-in failed:", client.Message(err))
		return nil
	}

	a.goTo(ctx, guard.PathLanding)
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.println("Not signed in.")
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "logout", "error", err)
	}
	a.println("Signed out.")
	a.goTo(ctx, guard.PathLogin)
	return nil
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(_ context.Context) error {
	snap := a.auth.Snapshot()
	if snap.User == nil {
		a.println("Not signed in.")
		return nil
	}
	u := snap.User
	a.printf("Name:   %s\nEmail:  %s\nRole:   %s\nStatus: %s\n", u.Name, u.Email, u.Role, snap.State)
	return nil
}

// printFormErrors prints field messages in a stable order, then the form
// message.
func (a *App) printFormErrors(fields map[string]string, form string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.printf("  %s: %s\n", fieldLabel(k), fields[k])
	}
	if form != "" {
		a.println(form)
	}
}

func fieldLabel(field string) string {
	switch field {
	case validate.FieldConfirmPassword:
		return "Confirm password"
	case validate.FieldName:
		return "Full name"
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
