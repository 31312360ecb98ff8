package users

import (
	"strings"
	"time"
)

// Roles known to the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            string
	Name          string
	Email         string
	Role          string
	EmailVerified bool
	Salt          []byte
	Verifier      []byte
	CreatedAt     time.Time
}

// NormalizeEmail trims and lowercases an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// roleFor grants admin to every address whose local part is "admin".
func roleFor(email string) string {
	if strings.HasPrefix(email, "admin@") {
		return RoleAdmin
	}
	return RoleUser
}

func (u *User) clone() *User {
	c := *u
	c.Salt = append([]byte(nil), u.Salt...)
	c.Verifier = append([]byte(nil), u.Verifier...)
	return &c
}
