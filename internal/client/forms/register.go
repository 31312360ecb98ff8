package forms

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/validate"
)

// RegisterForm is the registration screen.
type RegisterForm struct {
	pending
	fieldErrors

	auth Auth

	mu         sync.Mutex
	draft      validate.RegisterDraft
	suggestion string
}

func NewRegisterForm(auth Auth) *RegisterForm {
	return &RegisterForm{auth: auth}
}

// Set updates one field and re-validates it. Changing the password also
// re-checks the confirmation.
func (f *RegisterForm) Set(field, value string) validate.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	var r validate.Result
	switch field {
	case validate.FieldName:
		f.draft.Name = value
		r = validate.Name(value)
	case validate.FieldEmail:
		f.draft.Email = value
		r = validate.Email(value)
		f.suggestion = r.Suggestion
	case validate.FieldPassword:
		f.draft.Password = value
		r = validate.Password(value)
		if f.draft.ConfirmPassword != "" {
			f.setField(validate.FieldConfirmPassword, validate.ConfirmPassword(value, f.draft.ConfirmPassword))
		}
	case validate.FieldConfirmPassword:
		f.draft.ConfirmPassword = value
		r = validate.ConfirmPassword(f.draft.Password, value)
	default:
		return validate.Result{Message: "unknown field " + field}
	}
	f.setField(field, r)
	return r
}

// Suggestion is the corrected email offered for a known domain typo.
func (f *RegisterForm) Suggestion() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suggestion
}

// AcceptSuggestion replaces the email with the suggested one.
func (f *RegisterForm) AcceptSuggestion() {
	f.mu.Lock()
	s := f.suggestion
	f.mu.Unlock()
	if s != "" {
		f.Set(validate.FieldEmail, s)
	}
}

// Strength scores the current password.
func (f *RegisterForm) Strength() validate.Strength {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validate.PasswordStrength(f.draft.Password)
}

// Submit validates the whole draft and, only if it passes, registers. The
// returned path is where to go next. The draft is discarded on success.
func (f *RegisterForm) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	d := f.draft
	f.mu.Unlock()

	if err := validate.Register(d); err != nil {
		f.fromError(err)
		return "", err
	}
	if err := f.begin(); err != nil {
		return "", err
	}
	defer f.end()

	f.reset()
	dest, err := f.auth.Register(ctx, client.RegisterRequest{
		Name:     strings.TrimSpace(d.Name),
		Email:    validate.NormalizeEmail(d.Email),
		Password: d.Password,
	})
	if err != nil {
		f.fromError(err)
		return "", err
	}

	f.mu.Lock()
	f.draft = validate.RegisterDraft{}
	f.suggestion = ""
	f.mu.Unlock()
	return dest, nil
}
