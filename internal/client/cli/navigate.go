package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/learnportal/internal/client/guard"
	"github.com/dmitrijs2005/learnportal/internal/client/otp"
)

// goTo navigates through the guard and renders wherever it lands. It
// returns the final location.
func (a *App) goTo(ctx context.Context, path string) string {
	d, err := a.router.Navigate(ctx, path)
	if err != nil {
		if errors.Is(err, guard.ErrUnknownRoute) {
			a.println("No such page:", path)
		} else {
			a.println("Cannot open", path+":", err)
		}
		return a.router.Current()
	}

	if d.Outcome == guard.Loading {
		a.println("Loading...")
		return d.To
	}
	a.render(d.To)
	return d.To
}

// Open handles "open <path>".
func (a *App) Open(ctx context.Context, path string) error {
	if path == "" {
		a.println("Usage: open <path>")
		return nil
	}
	a.goTo(ctx, path)
	return nil
}

func (a *App) render(path string) {
	route, _ := a.router.Lookup(path)
	a.printf("== %s (%s) ==\n", route.Title, path)

	snap := a.auth.Snapshot()
	switch path {
	case guard.PathHome:
		a.println("Learn with guided courses and AI tools. Use 'register' or 'login' to get started.")
	case guard.PathVerifyEmail:
		if snap.User != nil {
			a.printf("We sent a %d-digit code to %s. Type 'verify' to enter it.\n", otp.Length, snap.User.Email)
		}
	case guard.PathDashboard:
		if snap.User != nil {
			a.printf("Welcome back, %s!\n", snap.User.Name)
		}
	case guard.PathLogin, guard.PathRegister, guard.PathForgotPassword, guard.PathResetPassword:
	default:
		if strings.HasPrefix(path, guard.PathAdmin) {
			a.println("Administrator area.")
		}
	}
}
