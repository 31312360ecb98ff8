package models

// Session pairs the bearer token with the profile it authorizes.
// At steady state both are set or both are empty; while a stored token is
// being checked the token may be present without a user.
type Session struct {
	Token string
	User  *User
}

// IsZero reports whether the session holds neither token nor user.
func (s Session) IsZero() bool {
	return s.Token == "" && s.User == nil
}
