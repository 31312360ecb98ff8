// Package services contains application services for the portal client.
// This file defines AuthService, the session state machine: it owns the
// canonical auth state, drives the session store from auth client results
// and is what every screen reads from.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/guard"
	"github.com/dmitrijs2005/learnportal/internal/client/models"
	"github.com/dmitrijs2005/learnportal/internal/logging"
)

var (
	// ErrStaleResponse is returned when the session changed (logout, forced
	// sign-out, another sign-in) while a call was in flight. Its result was
	// discarded.
	ErrStaleResponse = errors.New("session changed while the request was in flight")
	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrAlreadyVerified is returned by VerifyEmail for verified sessions.
	ErrAlreadyVerified = errors.New("email already verified")
)

// SessionStore is the slot AuthService writes to. *session.Store implements it.
type SessionStore interface {
	Init(ctx context.Context) (string, error)
	Read() models.Session
	Replace(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// Navigator is the part of the router the state machine drives on forced
// sign-out. *guard.Router implements it.
type Navigator interface {
	Current() string
	RedirectToLogin(ctx context.Context, from string)
}

// AuthService is the auth state machine:
//
//	unauthenticated --register/login--> authenticated-unverified | authenticated-verified
//	authenticated-unverified --verify--> authenticated-verified
//	authenticated-* --logout / 401--> unauthenticated
//
// A stored token starts it in authenticating until the profile fetch
// settles. Every session change bumps an epoch; a response that comes back
// under an older epoch is dropped instead of committed.
type AuthService struct {
	client client.Client
	store  SessionStore
	log    logging.Logger

	mu    sync.Mutex
	state models.AuthState
	epoch uint64
	nav   Navigator

	subsMu  sync.Mutex
	subs    map[int]func(models.AuthSnapshot)
	nextSub int
}

// NewAuthService constructs the state machine in the unauthenticated state.
func NewAuthService(c client.Client, store SessionStore, log logging.Logger) *AuthService {
	return &AuthService{
		client: c,
		store:  store,
		log:    log.With("component", "auth"),
		state:  models.StateUnauthenticated,
		subs:   make(map[int]func(models.AuthSnapshot)),
	}
}

// SetNavigator installs the router used for forced sign-out redirects.
func (a *AuthService) SetNavigator(n Navigator) {
	a.mu.Lock()
	a.nav = n
	a.mu.Unlock()
}

// Snapshot returns the current state together with the user it belongs to.
func (a *AuthService) Snapshot() models.AuthSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *AuthService) snapshotLocked() models.AuthSnapshot {
	return models.AuthSnapshot{State: a.state, User: a.store.Read().User}
}

// Subscribe registers fn to be called after every state change. The returned
// function unregisters it.
func (a *AuthService) Subscribe(fn func(models.AuthSnapshot)) (cancel func()) {
	a.subsMu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.subsMu.Unlock()

	return func() {
		a.subsMu.Lock()
		delete(a.subs, id)
		a.subsMu.Unlock()
	}
}

func (a *AuthService) notify(snap models.AuthSnapshot) {
	a.subsMu.Lock()
	fns := make([]func(models.AuthSnapshot), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// setStateLocked records a transition. The caller holds a.mu and must
// notify with the returned snapshot after unlocking.
func (a *AuthService) setStateLocked(ctx context.Context, next models.AuthState) models.AuthSnapshot {
	if prev := a.state; prev != next {
		a.log.Info(ctx, "auth state changed", "from", prev.String(), "to", next.String())
	}
	a.state = next
	return a.snapshotLocked()
}

// commit replaces the session and moves to next, unless the epoch moved on
// since the caller's request started.
func (a *AuthService) commit(ctx context.Context, epoch uint64, s models.Session, next models.AuthState) error {
	a.mu.Lock()
	if a.epoch != epoch {
		a.mu.Unlock()
		return ErrStaleResponse
	}
	if err := a.store.Replace(ctx, s); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("replace session: %w", err)
	}
	a.epoch++
	snap := a.setStateLocked(ctx, next)
	a.mu.Unlock()

	a.notify(snap)
	return nil
}

func (a *AuthService) currentEpoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.epoch
}

// Bootstrap loads the durable token. Without one the state stays
// unauthenticated; with one it passes through authenticating while the
// profile is fetched. Any fetch failure, network errors included, ends in
// unauthenticated with the stale token cleared.
func (a *AuthService) Bootstrap(ctx context.Context) error {
	token, err := a.store.Init(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to load stored session", "error", err)
		return err
	}
	if token == "" {
		a.log.Debug(ctx, "no stored session")
		return nil
	}
	if err := a.adopt(ctx, models.Session{Token: token}); err != nil && !errors.Is(err, ErrStaleResponse) {
		a.log.Warn(ctx, "stored session rejected", "error", err)
	}
	return nil
}

// CompleteOAuth stores a token received from the OAuth callback and re-runs
// the profile fetch.
func (a *AuthService) CompleteOAuth(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty oauth token", ErrNotAuthenticated)
	}
	return a.adopt(ctx, models.Session{Token: token})
}

// adopt enters authenticating with s.Token and resolves it through Me.
func (a *AuthService) adopt(ctx context.Context, s models.Session) error {
	a.mu.Lock()
	if err := a.store.Replace(ctx, s); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("replace session: %w", err)
	}
	a.epoch++
	epoch := a.epoch
	snap := a.setStateLocked(ctx, models.StateAuthenticating)
	a.mu.Unlock()
	a.notify(snap)

	user, err := a.client.Me(ctx)
	if err != nil {
		if cerr := a.commit(ctx, epoch, models.Session{}, models.StateUnauthenticated); cerr != nil && !errors.Is(cerr, ErrStaleResponse) {
			return errors.Join(err, cerr)
		}
		return err
	}
	if err := a.commit(ctx, epoch, models.Session{Token: s.Token, User: user}, models.StateFor(user)); err != nil {
		return err
	}
	a.log.Info(ctx, "session restored", "user_id", user.ID)
	return nil
}

// Register creates the account and signs in. It returns where the UI should
// go next: the verification page when the backend asks for it, the landing
// view otherwise.
func (a *AuthService) Register(ctx context.Context, req client.RegisterRequest) (string, error) {
	epoch := a.currentEpoch()

	res, err := a.client.Register(ctx, req)
	if err != nil {
		return "", err
	}

	next := models.StateVerified
	if res.RequiresVerification {
		next = models.StateUnverified
	}
	if err := a.commit(ctx, epoch, models.Session{Token: res.Token, User: res.User}, next); err != nil {
		return "", err
	}
	a.log.Info(ctx, "registered", "user_id", res.User.ID, "requires_verification", res.RequiresVerification)

	if next == models.StateUnverified {
		return guard.PathVerifyEmail, nil
	}
	return guard.PathLanding, nil
}

// Login signs in and returns the next location: the verification page for
// unverified users, else returnTo when it is a real destination, else the
// landing view.
func (a *AuthService) Login(ctx context.Context, email, password, returnTo string) (string, error) {
	epoch := a.currentEpoch()

	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return "", err
	}

	next := models.StateFor(res.User)
	if err := a.commit(ctx, epoch, models.Session{Token: res.Token, User: res.User}, next); err != nil {
		return "", err
	}
	a.log.Info(ctx, "logged in", "user_id", res.User.ID)

	switch {
	case next == models.StateUnverified:
		return guard.PathVerifyEmail, nil
	case returnTo != "" && returnTo != guard.PathHome && !guard.IsAuthPage(returnTo) && returnTo != guard.PathVerifyEmail:
		return returnTo, nil
	default:
		return guard.PathLanding, nil
	}
}

// VerifyEmail submits the code. On success the profile is replaced with the
// verified one; on failure nothing changes.
func (a *AuthService) VerifyEmail(ctx context.Context, otp string) error {
	a.mu.Lock()
	state, epoch, token := a.state, a.epoch, a.store.Read().Token
	a.mu.Unlock()

	switch state {
	case models.StateVerified:
		return ErrAlreadyVerified
	case models.StateUnverified:
	default:
		return ErrNotAuthenticated
	}

	user, err := a.client.VerifyEmail(ctx, otp)
	if err != nil {
		return err
	}
	if err := a.commit(ctx, epoch, models.Session{Token: token, User: user}, models.StateFor(user)); err != nil {
		if errors.Is(err, ErrStaleResponse) {
			a.log.Debug(ctx, "dropped stale verification response")
		}
		return err
	}
	a.log.Info(ctx, "email verified", "user_id", user.ID)
	return nil
}

// ResendOTP asks the backend for a fresh code.
func (a *AuthService) ResendOTP(ctx context.Context) error {
	if !a.Snapshot().State.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return a.client.ResendOTP(ctx)
}

// ForgotPassword requests a reset link. Unknown addresses succeed as well.
func (a *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return a.client.ForgotPassword(ctx, email)
}

// ResetPassword sets a new password with a reset token. Session state is
// not touched.
func (a *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	return a.client.ResetPassword(ctx, token, password)
}

// OAuthURL returns where to send the user to sign in with provider.
func (a *AuthService) OAuthURL(provider, redirectURI string) (string, error) {
	return a.client.OAuthURL(provider, redirectURI)
}

// Logout clears the session. Responses still in flight are dropped.
func (a *AuthService) Logout(ctx context.Context) error {
	a.mu.Lock()
	err := a.signOutLocked(ctx)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.notify(snap)
	if err != nil {
		return err
	}
	a.log.Info(ctx, "logged out")
	return nil
}

// signOutLocked bumps the epoch and clears the session. The in-memory state
// always ends unauthenticated, even if durable storage could not be cleared.
func (a *AuthService) signOutLocked(ctx context.Context) error {
	a.epoch++
	err := a.store.Clear(ctx)
	a.setStateLocked(ctx, models.StateUnauthenticated)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// HandleUnauthorized reacts to an authorization failure reported by the auth
// client: the session is cleared and the user is sent to login. On the login
// and registration views it does nothing, so failed attempts there cannot
// loop.
func (a *AuthService) HandleUnauthorized(ctx context.Context, operation string) {
	a.mu.Lock()
	nav := a.nav
	a.mu.Unlock()

	from := ""
	if nav != nil {
		from = nav.Current()
		if guard.IsAuthPage(from) {
			return
		}
	}

	a.mu.Lock()
	err := a.signOutLocked(ctx)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.log.Warn(ctx, "session rejected by backend", "operation", operation)
	if err != nil {
		a.log.Error(ctx, "failed to clear rejected session", "error", err)
	}
	a.notify(snap)

	if nav != nil {
		nav.RedirectToLogin(ctx, from)
	}
}
