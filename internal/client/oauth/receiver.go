// Package oauth starts third-party sign-in: it runs a loopback HTTP receiver
// for the provider's return, sends the user to the backend's authorization
// URL and hands the resulting token to the auth state machine.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/common"
	"github.com/dmitrijs2005/learnportal/internal/logging"
)

const callbackPath = "/callback"

var (
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrMissingToken  = errors.New("oauth callback carried no token")
	ErrDenied        = errors.New("sign-in was cancelled or denied")
	ErrNotStarted    = errors.New("receiver not started")
)

type result struct {
	token string
	err   error
}

// Receiver accepts exactly one callback at /callback. The callback URL
// carries a random state value that the return must echo.
type Receiver struct {
	addr string
	log  logging.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	state    string

	once    sync.Once
	results chan result
}

// NewReceiver creates a receiver that will listen on addr, e.g.
// "127.0.0.1:0" for any free port.
func NewReceiver(addr string, log logging.Logger) *Receiver {
	return &Receiver{
		addr:    addr,
		log:     log.With("component", "oauth-receiver"),
		results: make(chan result, 1),
	}
}

// Start begins listening and returns the callback URL to give the backend.
func (r *Receiver) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.srv != nil {
		return r.callbackURLLocked(), nil
	}

	state, err := common.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	l, err := net.Listen("tcp", r.addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", r.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, r.handleCallback)

	r.listener = l
	r.state = state
	r.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error(context.Background(), "callback server error", "error", err)
		}
	}(r.srv)

	u := r.callbackURLLocked()
	r.log.Debug(context.Background(), "callback server started", "addr", l.Addr().String())
	return u, nil
}

func (r *Receiver) callbackURLLocked() string {
	u := url.URL{
		Scheme:   "http",
		Host:     r.listener.Addr().String(),
		Path:     callbackPath,
		RawQuery: url.Values{"state": {r.state}}.Encode(),
	}
	return u.String()
}

func (r *Receiver) handleCallback(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	var res result
	switch {
	case q.Get("state") != state:
		res.err = ErrStateMismatch
	case q.Get("error") != "":
		res.err = fmt.Errorf("%w: %s", ErrDenied, q.Get("error"))
	case q.Get("token") == "":
		res.err = ErrMissingToken
	default:
		res.token = q.Get("token")
	}

	if res.err != nil {
		http.Error(w, "Sign-in failed. You can close this window and try again.", http.StatusBadRequest)
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Signed in. You can close this window and return to the terminal."))
	}

	// A mismatched state may be a stray request; keep waiting for the real one.
	if errors.Is(res.err, ErrStateMismatch) {
		r.log.Warn(req.Context(), "ignored callback with wrong state")
		return
	}
	r.once.Do(func() { r.results <- res })
}

// Wait blocks until the callback arrives or ctx ends.
func (r *Receiver) Wait(ctx context.Context) (string, error) {
	r.mu.Lock()
	started := r.srv != nil
	r.mu.Unlock()
	if !started {
		return "", ErrNotStarted
	}

	select {
	case res := <-r.results:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close shuts the server down.
func (r *Receiver) Close(ctx context.Context) error {
	r.mu.Lock()
	srv := r.srv
	r.srv = nil
	r.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
