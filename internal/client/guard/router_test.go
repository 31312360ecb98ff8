package guard

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/learnportal/internal/client/models"
	"github.com/dmitrijs2005/learnportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeState struct {
	mu   sync.Mutex
	snap models.AuthSnapshot
}

func (f *fakeState) Snapshot() models.AuthSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeState) set(s models.AuthSnapshot) {
	f.mu.Lock()
	f.snap = s
	f.mu.Unlock()
}

func newRouter(snap models.AuthSnapshot) (*Router, *fakeState) {
	st := &fakeState{snap: snap}
	return NewRouter(st, DefaultRoutes(), logging.Discard()), st
}

func TestRouter_AnonRedirectedToLoginAndRemembersTarget(t *testing.T) {
	r, _ := newRouter(anon)
	ctx := context.Background()

	d, err := r.Navigate(ctx, PathCourses)
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: Render, To: PathLogin}, d)
	assert.Equal(t, PathLogin, r.Current())
	assert.Equal(t, PathCourses, r.TakeReturnTo())
	assert.Empty(t, r.TakeReturnTo())
}

func TestRouter_FollowsChainedRedirects(t *testing.T) {
	r, _ := newRouter(verified)
	d, err := r.Navigate(context.Background(), PathAdminUsers)
	require.NoError(t, err)
	assert.Equal(t, PathDashboard, d.To)
	assert.Equal(t, Render, d.Outcome)
}

func TestRouter_LoadingKeepsLocationThenRefresh(t *testing.T) {
	r, st := newRouter(loading)
	ctx := context.Background()

	d, err := r.Navigate(ctx, PathDashboard)
	require.NoError(t, err)
	assert.Equal(t, Loading, d.Outcome)
	assert.Equal(t, PathDashboard, r.Current())

	st.set(unverified)
	d, err = r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: Render, To: PathVerifyEmail}, d)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := newRouter(verified)
	_, err := r.Navigate(context.Background(), "/nowhere")
	require.ErrorIs(t, err, ErrUnknownRoute)
	assert.Equal(t, PathHome, r.Current())
}

func TestRouter_QueryIgnoredForLookup(t *testing.T) {
	r, _ := newRouter(anon)
	d, err := r.Navigate(context.Background(), "/reset-password?token=abc")
	require.NoError(t, err)
	assert.Equal(t, "/reset-password?token=abc", d.To)

	route, ok := r.Lookup("/admin/users/")
	require.True(t, ok)
	assert.True(t, route.Requirements.AdminOnly)
}

func TestRouter_VerifiedLeavesVerifyPageVariants(t *testing.T) {
	r, _ := newRouter(verified)
	for _, path := range []string{PathVerifyEmail, PathVerifyEmail + "/", PathVerifyEmail + "?resent=1"} {
		d, err := r.Navigate(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, Decision{Outcome: Render, To: PathDashboard}, d, path)
	}
}

func TestRouter_RedirectLoop(t *testing.T) {
	routes := []Route{{Path: PathLogin, Requirements: signedIn}}
	r := NewRouter(&fakeState{snap: anon}, routes, logging.Discard())
	_, err := r.Navigate(context.Background(), PathLogin)
	require.ErrorIs(t, err, ErrRedirectLoop)
}

func TestRouter_RedirectToLogin(t *testing.T) {
	r, _ := newRouter(verified)
	ctx := context.Background()

	_, err := r.Navigate(ctx, PathChat)
	require.NoError(t, err)

	r.RedirectToLogin(ctx, r.Current())
	assert.Equal(t, PathLogin, r.Current())
	assert.Equal(t, PathChat, r.TakeReturnTo())

	r.RedirectToLogin(ctx, PathRegister)
	assert.Empty(t, r.TakeReturnTo())
}
