// Package guard decides, for a requested view, whether it may render given
// the current auth state, and keeps track of where the user currently is.
package guard

import (
	"github.com/dmitrijs2005/learnportal/internal/client/models"
)

// View paths.
const (
	PathHome           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
	PathVerifyEmail    = "/verify-email"
	PathDashboard      = "/dashboard"
	PathCourses        = "/courses"
	PathTools          = "/tools"
	PathChat           = "/chat"
	PathAdmin          = "/admin"
	PathAdminCourses   = "/admin/courses"
	PathAdminTools     = "/admin/tools"
	PathAdminUsers     = "/admin/users"
	PathAdminTickets   = "/admin/tickets"

	// PathLanding is the default view for signed-in users.
	PathLanding = PathDashboard
)

// Requirements are the access rules a view declares.
type Requirements struct {
	RequireAuth         bool
	RequireVerification bool
	AdminOnly           bool
}

// needsAuth is true when any rule implies a signed-in user.
func (r Requirements) needsAuth() bool {
	return r.RequireAuth || r.RequireVerification || r.AdminOnly
}

// Outcome is what the view layer should do.
type Outcome int

const (
	Render Outcome = iota
	Loading
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of Evaluate. To is set for redirects; From carries
// the originally requested location on redirects to login.
type Decision struct {
	Outcome Outcome
	To      string
	From    string
}

// Evaluate applies the rules in a fixed order. The loading check comes first
// so nothing redirects while the initial profile fetch is running, and the
// sign-in check precedes the admin check so anonymous users land on login.
func Evaluate(snap models.AuthSnapshot, path string, req Requirements) Decision {
	if snap.State == models.StateAuthenticating {
		return Decision{Outcome: Loading}
	}
	if req.needsAuth() && !snap.State.IsAuthenticated() {
		return Decision{Outcome: Redirect, To: PathLogin, From: path}
	}
	onVerifyPage := stripQuery(path) == PathVerifyEmail
	if req.RequireVerification && snap.State == models.StateUnverified && !onVerifyPage {
		return Decision{Outcome: Redirect, To: PathVerifyEmail}
	}
	if onVerifyPage && snap.State == models.StateVerified {
		return Decision{Outcome: Redirect, To: PathLanding}
	}
	if req.AdminOnly && !snap.User.IsAdmin() {
		return Decision{Outcome: Redirect, To: PathLanding}
	}
	return Decision{Outcome: Render}
}

// IsAuthPage reports whether path is the login or registration view, where
// authorization failures must not bounce the user back to login.
func IsAuthPage(path string) bool {
	p := stripQuery(path)
	return p == PathLogin || p == PathRegister
}
