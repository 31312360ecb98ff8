package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/learnportal/internal/client/models"
	"github.com/dmitrijs2005/learnportal/internal/logging"
)

const maxRedirects = 4

var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrRedirectLoop = errors.New("too many redirects")
)

// StateSource supplies the auth state the router evaluates against.
type StateSource interface {
	Snapshot() models.AuthSnapshot
}

// Router resolves navigations through Evaluate and remembers the current
// location plus the one a login redirect interrupted.
type Router struct {
	auth   StateSource
	routes map[string]Route
	log    logging.Logger

	mu       sync.Mutex
	current  string
	returnTo string
}

// NewRouter builds a router starting at PathHome.
func NewRouter(auth StateSource, routes []Route, log logging.Logger) *Router {
	m := make(map[string]Route, len(routes))
	for _, r := range routes {
		m[r.Path] = r
	}
	return &Router{auth: auth, routes: m, log: log, current: PathHome}
}

// Lookup returns the route registered for path, ignoring any query.
func (r *Router) Lookup(path string) (Route, bool) {
	route, ok := r.routes[stripQuery(path)]
	return route, ok
}

// Navigate evaluates path and follows redirects until a view renders or the
// state is still loading. The returned decision's To is the resulting
// location.
func (r *Router) Navigate(ctx context.Context, path string) (Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.navigate(ctx, path)
}

func (r *Router) navigate(ctx context.Context, path string) (Decision, error) {
	target := path
	for hop := 0; hop <= maxRedirects; hop++ {
		route, ok := r.Lookup(target)
		if !ok {
			return Decision{}, fmt.Errorf("%w: %s", ErrUnknownRoute, target)
		}

		d := Evaluate(r.auth.Snapshot(), target, route.Requirements)
		switch d.Outcome {
		case Render, Loading:
			r.current = target
			return Decision{Outcome: d.Outcome, To: target}, nil
		case Redirect:
			r.log.Debug(ctx, "route redirect", "from", target, "to", d.To)
			if d.From != "" {
				r.returnTo = d.From
			}
			target = d.To
		}
	}
	return Decision{}, fmt.Errorf("%w: %s", ErrRedirectLoop, path)
}

// Refresh re-evaluates the current location, e.g. after the auth state
// settled or changed.
func (r *Router) Refresh(ctx context.Context) (Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.navigate(ctx, r.current)
}

// Current returns the current location.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// RedirectToLogin moves to the login view and remembers from as the
// post-login destination.
func (r *Router) RedirectToLogin(ctx context.Context, from string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if from != "" && !IsAuthPage(from) {
		r.returnTo = from
	}
	r.current = PathLogin
	r.log.Info(ctx, "redirected to login", "from", from)
}

// TakeReturnTo returns and forgets the location interrupted by a login
// redirect.
func (r *Router) TakeReturnTo() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	to := r.returnTo
	r.returnTo = ""
	return to
}
