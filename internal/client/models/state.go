package models

// AuthState is the single tagged session state every screen renders from.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthenticating
	StateUnverified
	StateVerified
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateUnverified:
		return "authenticated-unverified"
	case StateVerified:
		return "authenticated-verified"
	default:
		return "unknown"
	}
}

// IsAuthenticated is true for both verified and unverified sessions.
func (s AuthState) IsAuthenticated() bool {
	return s == StateUnverified || s == StateVerified
}

// StateFor derives the authenticated state from a user's verification flag.
func StateFor(u *User) AuthState {
	if u == nil {
		return StateUnauthenticated
	}
	if u.IsEmailVerified {
		return StateVerified
	}
	return StateUnverified
}

// AuthSnapshot is a consistent view of the state and the user it belongs to.
type AuthSnapshot struct {
	State AuthState
	User  *User
}
