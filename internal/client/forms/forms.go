// Package forms holds the transient state of the auth screens: the draft,
// per-field errors, the form-level message and whether a submission is in
// flight. Submissions go through the auth state machine.
package forms

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/validate"
)

var (
	// ErrSubmissionPending is returned while an earlier submission of the
	// same form has not finished.
	ErrSubmissionPending = errors.New("a submission is already in progress")
	// ErrResetTokenDead is returned once the reset token was rejected.
	ErrResetTokenDead = errors.New("reset link is invalid or expired")
)

// Auth is what the forms need from the state machine.
type Auth interface {
	Register(ctx context.Context, req client.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password, returnTo string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// pending disables a form's submit control while its request runs.
type pending struct {
	busy atomic.Bool
}

func (p *pending) begin() error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrSubmissionPending
	}
	return nil
}

func (p *pending) end() { p.busy.Store(false) }

// Pending reports whether a submission is in flight.
func (p *pending) Pending() bool { return p.busy.Load() }

// fieldErrors is the per-field message map shared by all forms.
type fieldErrors struct {
	mu        sync.Mutex
	fields    map[string]string
	formError string
}

func (e *fieldErrors) setField(field string, r validate.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fields == nil {
		e.fields = map[string]string{}
	}
	if r.Valid {
		delete(e.fields, field)
	} else {
		e.fields[field] = r.Message
	}
}

// fromError stores the outcome of a submission: field messages for a
// *validate.FormError, the user-facing message for anything else.
func (e *fieldErrors) fromError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var fe *validate.FormError
	if errors.As(err, &fe) {
		e.fields = make(map[string]string, len(fe.Fields))
		for k, v := range fe.Fields {
			e.fields[k] = v
		}
		e.formError = ""
		return
	}
	if err != nil {
		e.formError = client.Message(err)
	}
}

func (e *fieldErrors) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fields = nil
	e.formError = ""
}

// FieldErrors returns a copy of the per-field messages.
func (e *fieldErrors) FieldErrors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// FormError returns the form-level message, "" if none.
func (e *fieldErrors) FormError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.formError
}
