package forms

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/guard"
	"github.com/dmitrijs2005/learnportal/internal/client/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeAuth records calls; block, when set, holds a call until closed.
type fakeAuth struct {
	mu            sync.Mutex
	registerCalls []client.RegisterRequest
	loginCalls    int
	forgotCalls   []string
	resetCalls    int

	dest    string
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAuth) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAuth) Register(_ context.Context, req client.RegisterRequest) (string, error) {
	f.mu.Lock()
	f.registerCalls = append(f.registerCalls, req)
	f.mu.Unlock()
	f.wait()
	return f.dest, f.err
}

func (f *fakeAuth) Login(_ context.Context, _, _, returnTo string) (string, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	f.wait()
	if returnTo != "" && f.err == nil {
		return returnTo, nil
	}
	return f.dest, f.err
}

func (f *fakeAuth) ForgotPassword(_ context.Context, email string) error {
	f.mu.Lock()
	f.forgotCalls = append(f.forgotCalls, email)
	f.mu.Unlock()
	return f.err
}

func (f *fakeAuth) ResetPassword(context.Context, string, string) error {
	f.mu.Lock()
	f.resetCalls++
	f.mu.Unlock()
	return f.err
}

func fillRegister(f *RegisterForm, name, email, pw, confirm string) {
	f.Set(validate.FieldName, name)
	f.Set(validate.FieldEmail, email)
	f.Set(validate.FieldPassword, pw)
	f.Set(validate.FieldConfirmPassword, confirm)
}

func TestRegisterForm_NameWithDigitBlocksSubmission(t *testing.T) {
	auth := &fakeAuth{}
	f := NewRegisterForm(auth)
	fillRegister(f, "Jo3", "jo@example.com", "Secret123!", "Secret123!")

	_, err := f.Submit(context.Background())
	var fe *validate.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Name cannot contain numbers", f.FieldErrors()[validate.FieldName])
	assert.Empty(t, auth.registerCalls)
}

func TestRegisterForm_MismatchBlocksSubmission(t *testing.T) {
	auth := &fakeAuth{}
	f := NewRegisterForm(auth)
	fillRegister(f, "Jane Doe", "jane@example.com", "Secret123!", "Secret123?")

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", f.FieldErrors()[validate.FieldConfirmPassword])
	assert.Empty(t, auth.registerCalls)
}

func TestRegisterForm_ConfirmRecheckedOnPasswordChange(t *testing.T) {
	f := NewRegisterForm(&fakeAuth{})
	f.Set(validate.FieldPassword, "Secret123!")
	r := f.Set(validate.FieldConfirmPassword, "Secret123!")
	assert.True(t, r.Valid)
	assert.NotContains(t, f.FieldErrors(), validate.FieldConfirmPassword)

	f.Set(validate.FieldPassword, "Secret123!x")
	assert.Equal(t, "Passwords do not match", f.FieldErrors()[validate.FieldConfirmPassword])

	f.Set(validate.FieldPassword, "Secret123!")
	assert.NotContains(t, f.FieldErrors(), validate.FieldConfirmPassword)
}

func TestRegisterForm_Success(t *testing.T) {
	auth := &fakeAuth{dest: guard.PathVerifyEmail}
	f := NewRegisterForm(auth)
	fillRegister(f, "  Jane Doe ", " Jane@Example.com", "Secret123!", "Secret123!")
	assert.Equal(t, "Strong", f.Strength().Label)

	dest, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, guard.PathVerifyEmail, dest)
	require.Len(t, auth.registerCalls, 1)
	assert.Equal(t, client.RegisterRequest{Name: "Jane Doe", Email: "jane@example.com", Password: "Secret123!"}, auth.registerCalls[0])
	assert.Equal(t, 0, f.Strength().Score)
	assert.Empty(t, f.FieldErrors())
}

func TestRegisterForm_TypoSuggestion(t *testing.T) {
	auth := &fakeAuth{dest: guard.PathLanding}
	f := NewRegisterForm(auth)
	fillRegister(f, "Jane", "jane@gmial.com", "Secret123!", "Secret123!")

	assert.Equal(t, "jane@gmail.com", f.Suggestion())
	assert.Contains(t, f.FieldErrors(), validate.FieldEmail)

	f.AcceptSuggestion()
	assert.Empty(t, f.Suggestion())
	assert.NotContains(t, f.FieldErrors(), validate.FieldEmail)

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jane@gmail.com", auth.registerCalls[0].Email)
}

func TestRegisterForm_ServerErrorIsFormLevel(t *testing.T) {
	auth := &fakeAuth{err: &client.Error{Kind: client.KindValidation, Message: client.MsgAccountExists, Err: client.ErrConflict}}
	f := NewRegisterForm(auth)
	fillRegister(f, "Jane", "jane@example.com", "Secret123!", "Secret123!")

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, client.ErrConflict)
	assert.Equal(t, client.MsgAccountExists, f.FormError())
	assert.False(t, f.Pending())
}

func TestLoginForm_DuplicateSubmissionRejected(t *testing.T) {
	auth := &fakeAuth{dest: guard.PathLanding, block: make(chan struct{}), entered: make(chan struct{})}
	f := NewLoginForm(auth)
	f.SetEmail("jane@example.com")
	f.SetPassword("pw")

	var firstErr atomic.Value
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := f.Submit(context.Background(), ""); err != nil {
			firstErr.Store(err)
		}
	}()

	<-auth.entered
	assert.True(t, f.Pending())
	_, err := f.Submit(context.Background(), "")
	require.ErrorIs(t, err, ErrSubmissionPending)

	close(auth.block)
	<-done
	assert.Nil(t, firstErr.Load())
	assert.False(t, f.Pending())
	assert.Equal(t, 1, auth.loginCalls)
}

func TestLoginForm_Validation(t *testing.T) {
	auth := &fakeAuth{}
	f := NewLoginForm(auth)

	_, err := f.Submit(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		validate.FieldEmail:    "Email is required",
		validate.FieldPassword: "Password is required",
	}, f.FieldErrors())
	assert.Zero(t, auth.loginCalls)
}

func TestLoginForm_GenericFailureAndReturn(t *testing.T) {
	auth := &fakeAuth{err: &client.Error{Kind: client.KindAuthentication, Message: client.MsgInvalidCredentials, Err: client.ErrInvalidCredentials}}
	f := NewLoginForm(auth)
	f.SetEmail("jane@example.com")
	f.SetPassword("bad")

	_, err := f.Submit(context.Background(), "")
	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, client.MsgInvalidCredentials, f.FormError())

	auth.err = nil
	f.SetPassword("good")
	dest, err := f.Submit(context.Background(), guard.PathCourses)
	require.NoError(t, err)
	assert.Equal(t, guard.PathCourses, dest)
	assert.Empty(t, f.FormError())
}

func TestForgotPasswordForm_AlwaysSuccessShaped(t *testing.T) {
	auth := &fakeAuth{}
	f := NewForgotPasswordForm(auth)
	require.NoError(t, f.Submit(context.Background(), "nobody@example.com"))
	assert.True(t, f.Sent())

	auth2 := &fakeAuth{err: &client.Error{Kind: client.KindValidation, Status: 404, Message: "User not found"}}
	f2 := NewForgotPasswordForm(auth2)
	require.NoError(t, f2.Submit(context.Background(), "nobody@example.com"))
	assert.True(t, f2.Sent())
	assert.Empty(t, f2.FormError())
}

func TestForgotPasswordForm_TransportErrorRetryable(t *testing.T) {
	auth := &fakeAuth{err: &client.Error{Kind: client.KindTransport, Message: client.MsgNetwork}}
	f := NewForgotPasswordForm(auth)

	require.Error(t, f.Submit(context.Background(), "jane@example.com"))
	assert.False(t, f.Sent())
	assert.Equal(t, client.MsgNetwork, f.FormError())

	auth.err = nil
	require.NoError(t, f.Submit(context.Background(), "jane@example.com"))
	assert.True(t, f.Sent())
}

func TestForgotPasswordForm_InvalidEmail(t *testing.T) {
	auth := &fakeAuth{}
	f := NewForgotPasswordForm(auth)
	require.Error(t, f.Submit(context.Background(), "not-an-email"))
	assert.Empty(t, auth.forgotCalls)
	assert.False(t, f.Sent())
}

func TestResetPasswordForm_SuccessSchedulesRedirect(t *testing.T) {
	redirected := make(chan struct{})
	f := NewResetPasswordForm(&fakeAuth{}, "tok", 10*time.Millisecond, func() { close(redirected) })
	defer f.Teardown()

	require.NoError(t, f.Submit(context.Background(), "NewSecret1", "NewSecret1"))
	assert.True(t, f.Done())

	select {
	case <-redirected:
	case <-time.After(2 * time.Second):
		t.Fatal("redirect did not fire")
	}
}

func TestResetPasswordForm_TeardownCancelsRedirect(t *testing.T) {
	var fired atomic.Bool
	f := NewResetPasswordForm(&fakeAuth{}, "tok", time.Hour, func() { fired.Store(true) })

	require.NoError(t, f.Submit(context.Background(), "NewSecret1", "NewSecret1"))
	assert.Equal(t, 3600, f.RedirectRemaining())

	f.Teardown()
	assert.Zero(t, f.RedirectRemaining())
	assert.False(t, fired.Load())
}

func TestResetPasswordForm_DeadTokenIsTerminal(t *testing.T) {
	auth := &fakeAuth{err: &client.Error{Kind: client.KindAuthentication, Message: client.MsgInvalidResetToken, Err: client.ErrInvalidResetToken}}
	f := NewResetPasswordForm(auth, "used", time.Second, nil)
	defer f.Teardown()

	err := f.Submit(context.Background(), "NewSecret1", "NewSecret1")
	require.ErrorIs(t, err, ErrResetTokenDead)
	require.ErrorIs(t, err, client.ErrInvalidResetToken)
	assert.True(t, f.Dead())
	assert.Equal(t, client.MsgInvalidResetToken, f.FormError())

	auth.err = nil
	require.ErrorIs(t, f.Submit(context.Background(), "NewSecret1", "NewSecret1"), ErrResetTokenDead)
	assert.Equal(t, 1, auth.resetCalls)
}

func TestResetPasswordForm_MissingToken(t *testing.T) {
	auth := &fakeAuth{}
	f := NewResetPasswordForm(auth, "  ", time.Second, nil)
	assert.True(t, f.Dead())
	assert.Equal(t, client.MsgInvalidResetToken, f.FormError())
	require.ErrorIs(t, f.Submit(context.Background(), "NewSecret1", "NewSecret1"), ErrResetTokenDead)
	assert.Zero(t, auth.resetCalls)
}

func TestResetPasswordForm_TransportErrorKeepsToken(t *testing.T) {
	auth := &fakeAuth{err: &client.Error{Kind: client.KindTransport, Message: client.MsgNetwork}}
	f := NewResetPasswordForm(auth, "tok", time.Second, nil)
	defer f.Teardown()

	require.Error(t, f.Submit(context.Background(), "NewSecret1", "NewSecret1"))
	assert.False(t, f.Dead())

	auth.err = nil
	require.NoError(t, f.Submit(context.Background(), "NewSecret1", "NewSecret1"))
	assert.Equal(t, 2, auth.resetCalls)
}

func TestResetPasswordForm_WeakPassword(t *testing.T) {
	auth := &fakeAuth{}
	f := NewResetPasswordForm(auth, "tok", time.Second, nil)
	require.Error(t, f.Submit(context.Background(), "weak", "weak"))
	assert.Contains(t, f.FieldErrors(), validate.FieldPassword)
	assert.Zero(t, auth.resetCalls)
}

