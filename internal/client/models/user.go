// Package models defines the client-side session data shared by the store,
// the auth client, the state machine and the route guard.
package models

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the profile the backend returns for the current session.
// It is replaced as a whole, never patched field by field.
type User struct {
	ID              string
	Name            string
	Email           string
	Role            Role
	IsEmailVerified bool
}

// IsAdmin reports whether u may open admin-only views. A nil user is not.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns an independent copy so holders never share a mutable profile.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
