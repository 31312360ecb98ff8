package forms

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/learnportal/internal/client/validate"
)

// LoginForm is the sign-in screen.
type LoginForm struct {
	pending
	fieldErrors

	auth Auth

	mu    sync.Mutex
	draft validate.LoginDraft
}

func NewLoginForm(auth Auth) *LoginForm {
	return &LoginForm{auth: auth}
}

func (f *LoginForm) SetEmail(v string) {
	f.mu.Lock()
	f.draft.Email = v
	f.mu.Unlock()
}

func (f *LoginForm) SetPassword(v string) {
	f.mu.Lock()
	f.draft.Password = v
	f.mu.Unlock()
}

// Submit signs in. returnTo is the location a login redirect interrupted.
// Wrong credentials surface as one generic form-level message.
func (f *LoginForm) Submit(ctx context.Context, returnTo string) (string, error) {
	f.mu.Lock()
	d := f.draft
	f.mu.Unlock()

	if err := validate.Login(d); err != nil {
		f.fromError(err)
		return "", err
	}
	if err := f.begin(); err != nil {
		return "", err
	}
	defer f.end()

	f.reset()
	dest, err := f.auth.Login(ctx, validate.NormalizeEmail(d.Email), d.Password, returnTo)
	if err != nil {
		f.fromError(err)
		f.mu.Lock()
		f.draft.Password = ""
		f.mu.Unlock()
		return "", err
	}

	f.mu.Lock()
	f.draft = validate.LoginDraft{}
	f.mu.Unlock()
	return dest, nil
}
