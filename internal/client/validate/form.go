package validate

import (
	"sort"
	"strings"
)

// Field names used as keys of the per-form error map.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldToken           = "token"
)

// FormError aggregates field-level failures of one submission.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errorMap collects failing results; nil means the form may be submitted.
type errorMap map[string]string

func (m errorMap) add(field string, r Result) {
	if !r.Valid {
		m[field] = r.Message
	}
}

func (m errorMap) err() error {
	if len(m) == 0 {
		return nil
	}
	return &FormError{Fields: m}
}

// RegisterDraft is the transient registration input. It is never persisted.
type RegisterDraft struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register validates a whole registration draft. An email typo suggestion is
// advisory and does not block submission.
func Register(d RegisterDraft) error {
	m := errorMap{}
	m.add(FieldName, Name(d.Name))
	if r := Email(d.Email); !r.IsAdvisory() {
		m.add(FieldEmail, r)
	}
	m.add(FieldPassword, Password(d.Password))
	m.add(FieldConfirmPassword, ConfirmPassword(d.Password, d.ConfirmPassword))
	return m.err()
}

// LoginDraft is the transient login input.
type LoginDraft struct {
	Email    string
	Password string
}

// Login only checks presence and shape: strength rules apply to new
// passwords, not to existing ones.
func Login(d LoginDraft) error {
	m := errorMap{}
	if NormalizeEmail(d.Email) == "" {
		m[FieldEmail] = "Email is required"
	} else if !emailShape.MatchString(NormalizeEmail(d.Email)) {
		m[FieldEmail] = "Please enter a valid email address"
	}
	if d.Password == "" {
		m[FieldPassword] = "Password is required"
	}
	return m.err()
}

// ForgotPassword validates the email of a reset-link request.
func ForgotPassword(email string) error {
	m := errorMap{}
	if r := Email(email); !r.IsAdvisory() {
		m.add(FieldEmail, r)
	}
	return m.err()
}

// ResetPassword validates a new password and its confirmation.
func ResetPassword(password, confirm string) error {
	m := errorMap{}
	m.add(FieldPassword, Password(password))
	m.add(FieldConfirmPassword, ConfirmPassword(password, confirm))
	return m.err()
}
