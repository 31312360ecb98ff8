package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/common"
	"github.com/dmitrijs2005/learnportal/internal/logging"
	"github.com/dmitrijs2005/learnportal/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*Service, *Outbox, *clock) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	box := NewOutbox(logging.Discard())
	s := NewService(NewMemoryRepository(), box, cfg, logging.Discard())
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, box, c
}

func TestRegister_IssuesCodeAndToken(t *testing.T) {
	s, box, _ := newTestService(t)
	ctx := context.Background()

	sess, err := s.Register(ctx, " Jo ", "Jo@Example.com ", "Str0ngPass")
	require.NoError(t, err)

	assert.True(t, sess.RequiresVerification)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "Jo", sess.User.Name)
	assert.Equal(t, "jo@example.com", sess.User.Email)
	assert.Equal(t, RoleUser, sess.User.Role)
	assert.False(t, sess.User.EmailVerified)

	code, ok := box.LastCode("jo@example.com")
	require.True(t, ok)
	assert.Len(t, code, common.OTPLength)

	id, err := s.Authenticate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id)
}

func TestRegister_AdminRoleAndDuplicate(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := s.Register(ctx, "Root", "admin@learnportal.dev", "Str0ngPass")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, sess.User.Role)

	_, err = s.Register(ctx, "Again", "ADMIN@learnportal.dev", "Str0ngPass")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestLogin(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Jo", "jo@example.com", "Str0ngPass")
	require.NoError(t, err)

	sess, err := s.Login(ctx, "JO@example.com", "Str0ngPass")
	require.NoError(t, err)
	assert.False(t, sess.RequiresVerification)

	_, err = s.Login(ctx, "jo@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(ctx, "nobody@example.com", "Str0ngPass")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifyEmail(t *testing.T) {
	s, box, c := newTestService(t)
	ctx := context.Background()

	sess, err := s.Register(ctx, "Jo", "jo@example.com", "Str0ngPass")
	require.NoError(t, err)
	code, _ := box.LastCode("jo@example.com")

	_, err = s.VerifyEmail(ctx, sess.User.ID, "000000x")
	assert.ErrorIs(t, err, common.ErrInvalidOTP)

	c.advance(time.Minute)
	u, err := s.VerifyEmail(ctx, sess.User.ID, code)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	// idempotent once verified
	u, err = s.VerifyEmail(ctx, sess.User.ID, "whatever")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
}

func TestVerifyEmail_Expired(t *testing.T) {
	s, box, c := newTestService(t)
	ctx := context.Background()

	sess, err := s.Register(ctx, "Jo", "jo@example.com", "Str0ngPass")
	require.NoError(t, err)
	code, _ := box.LastCode("jo@example.com")

	c.advance(11 * time.Minute)
	_, err = s.VerifyEmail(ctx, sess.User.ID, code)
	assert.ErrorIs(t, err, common.ErrInvalidOTP)
}

func TestResendOTP_Cooldown(t *testing.T) {
	s, box, c := newTestService(t)
	ctx := context.Background()

	sess, err := s.Register(ctx, "Jo", "jo@example.com", "Str0ngPass")
	require.NoError(t, err)
	first, _ := box.LastCode("jo@example.com")

	err = s.ResendOTP(ctx, sess.User.ID)
	assert.ErrorIs(t, err, common.ErrTooManyRequests)

	c.advance(61 * time.Second)
	require.NoError(t, s.ResendOTP(ctx, sess.User.ID))
	second, _ := box.LastCode("jo@example.com")

	// Only the newest code is accepted. Codes may collide by chance.
	if first != second {
		_, err = s.VerifyEmail(ctx, sess.User.ID, first)
		assert.ErrorIs(t, err, common.ErrInvalidOTP)
	}
	_, err = s.VerifyEmail(ctx, sess.User.ID, second)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ResendOTP(ctx, sess.User.ID), common.ErrAlreadyVerified)
}

func TestForgotAndResetPassword(t *testing.T) {
	s, box, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Jo", "jo@example.com", "Str0ngPass")
	require.NoError(t, err)

	require.NoError(t, s.ForgotPassword(ctx, "nobody@example.com"))
	_, sent := box.LastResetToken("nobody@example.com")
	assert.False(t, sent)

	require.NoError(t, s.ForgotPassword(ctx, "jo@example.com"))
	token, ok := box.LastResetToken("jo@example.com")
	require.True(t, ok)

	require.NoError(t, s.ResetPassword(ctx, token, "N3wPassword"))

	_, err = s.Login(ctx, "jo@example.com", "Str0ngPass")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = s.Login(ctx, "jo@example.com", "N3wPassword")
	require.NoError(t, err)

	// single use
	assert.ErrorIs(t, s.ResetPassword(ctx, token, "An0therPass"), common.ErrInvalidResetToken)
}

func TestResetPassword_ExpiredAndRevoked(t *testing.T) {
	s, box, c := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Jo", "jo@example.com", "Str0ngPass")
	require.NoError(t, err)

	require.NoError(t, s.ForgotPassword(ctx, "jo@example.com"))
	old, _ := box.LastResetToken("jo@example.com")
	require.NoError(t, s.ForgotPassword(ctx, "jo@example.com"))
	fresh, _ := box.LastResetToken("jo@example.com")

	require.NoError(t, s.ResetPassword(ctx, fresh, "N3wPassword"))
	assert.ErrorIs(t, s.ResetPassword(ctx, old, "N3wPassword"), common.ErrInvalidResetToken)

	require.NoError(t, s.ForgotPassword(ctx, "jo@example.com"))
	late, _ := box.LastResetToken("jo@example.com")
	c.advance(2 * time.Hour)
	assert.ErrorIs(t, s.ResetPassword(ctx, late, "N3wPassword"), common.ErrInvalidResetToken)

	assert.ErrorIs(t, s.ResetPassword(ctx, "", "N3wPassword"), common.ErrInvalidResetToken)
}

func TestOAuthSignIn_ReusesAccount(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := s.OAuthSignIn(ctx, "github")
	require.NoError(t, err)
	assert.True(t, first.User.EmailVerified)
	assert.Equal(t, "Github User", first.User.Name)

	second, err := s.OAuthSignIn(ctx, "github")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestMe_UnknownUser(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
