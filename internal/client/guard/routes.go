package guard

import "strings"

// Route binds a path to its requirements.
type Route struct {
	Path         string
	Title        string
	Requirements Requirements
}

var (
	public   = Requirements{}
	signedIn = Requirements{RequireAuth: true}
	member   = Requirements{RequireAuth: true, RequireVerification: true}
	admin    = Requirements{RequireAuth: true, RequireVerification: true, AdminOnly: true}
)

// DefaultRoutes is the portal's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: PathHome, Title: "Home", Requirements: public},
		{Path: PathLogin, Title: "Sign in", Requirements: public},
		{Path: PathRegister, Title: "Create account", Requirements: public},
		{Path: PathForgotPassword, Title: "Forgot password", Requirements: public},
		{Path: PathResetPassword, Title: "Reset password", Requirements: public},
		{Path: PathVerifyEmail, Title: "Verify email", Requirements: signedIn},
		{Path: PathDashboard, Title: "Dashboard", Requirements: member},
		{Path: PathCourses, Title: "Courses", Requirements: member},
		{Path: PathTools, Title: "AI tools", Requirements: member},
		{Path: PathChat, Title: "Chat", Requirements: member},
		{Path: PathAdmin, Title: "Admin", Requirements: admin},
		{Path: PathAdminCourses, Title: "Admin: courses", Requirements: admin},
		{Path: PathAdminTools, Title: "Admin: tools", Requirements: admin},
		{Path: PathAdminUsers, Title: "Admin: users", Requirements: admin},
		{Path: PathAdminTickets, Title: "Admin: tickets", Requirements: admin},
	}
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return PathHome
	}
	return path
}
