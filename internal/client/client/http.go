package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/client/models"
	"github.com/dmitrijs2005/learnportal/internal/common"
	"github.com/dmitrijs2005/learnportal/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker/v2"
)

// Operation names, used for logging, metrics and the unauthorized hook.
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpMe             = "me"
	OpVerifyEmail    = "verify-email"
	OpResendOTP      = "resend-otp"
	OpForgotPassword = "forgot-password"
	OpResetPassword  = "reset-password"
)

// Providers accepted by OAuthURL.
var oauthProviders = map[string]struct{}{
	"google": {},
	"github": {},
}

// Options configures an HTTPClient. Zero values fall back to defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// MeRetries is the number of extra attempts for the profile fetch
	// after a transport failure.
	MeRetries uint64
	RetryBase time.Duration

	// The breaker trips when at least BreakerMinRequests were made and
	// the failure ratio reached BreakerFailureRatio.
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerTimeout      time.Duration

	HTTPClient *http.Client
	Metrics    *Metrics
}

func (o *Options) setDefaults() {
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.RetryBase == 0 {
		o.RetryBase = 200 * time.Millisecond
	}
	if o.BreakerMinRequests == 0 {
		o.BreakerMinRequests = 5
	}
	if o.BreakerFailureRatio == 0 {
		o.BreakerFailureRatio = 0.5
	}
	if o.BreakerTimeout == 0 {
		o.BreakerTimeout = 30 * time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
}

// HTTPClient implements Client over the backend's REST/JSON contract.
type HTTPClient struct {
	base    *url.URL
	opts    Options
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	tokens  TokenSource
	log     logging.Logger
	metrics *Metrics

	mu             sync.RWMutex
	onUnauthorized UnauthorizedFunc
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at opts.BaseURL. tokens may
// be nil, in which case no Authorization header is ever sent.
func NewHTTPClient(opts Options, tokens TokenSource, log logging.Logger) (*HTTPClient, error) {
	opts.setDefaults()

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", base.Scheme)
	}

	c := &HTTPClient{
		base:    base,
		opts:    opts,
		http:    opts.HTTPClient,
		tokens:  tokens,
		log:     log.With("component", "auth-client"),
		metrics: opts.Metrics,
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "auth-backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= opts.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
			c.metrics.setBreakerState(to)
		},
	})
	c.metrics.setBreakerState(gobreaker.StateClosed)

	return c, nil
}

// SetUnauthorizedHandler installs the callback fired on authorization
// failures. Passing nil removes it.
func (c *HTTPClient) SetUnauthorizedHandler(fn UnauthorizedFunc) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// BreakerState reports the current circuit breaker state.
func (c *HTTPClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var resp authResponse
	body := registerBody{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := c.call(ctx, OpRegister, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:                resp.Token,
		User:                 resp.User.model(),
		RequiresVerification: resp.RequiresVerification,
	}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	body := loginBody{Email: email, Password: password}
	if err := c.call(ctx, OpLogin, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	user := resp.User.model()
	return &AuthResult{
		Token:                resp.Token,
		User:                 user,
		RequiresVerification: !user.IsEmailVerified,
	}, nil
}

// Me fetches the profile of the current token. Transport failures are
// retried with exponential backoff, the only retried call since it has no
// side effects.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var user *models.User

	backoff := retry.WithMaxRetries(c.opts.MeRetries, retry.NewExponential(c.opts.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var resp userResponse
		err := c.call(ctx, OpMe, http.MethodGet, "/auth/me", nil, &resp)
		if err != nil {
			if KindOf(err) == KindTransport && !errors.Is(err, ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		}
		user = resp.User.model()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, otp string) (*models.User, error) {
	var resp userResponse
	if err := c.call(ctx, OpVerifyEmail, http.MethodPost, "/auth/verify-email", verifyEmailBody{OTP: otp}, &resp); err != nil {
		return nil, err
	}
	return resp.User.model(), nil
}

func (c *HTTPClient) ResendOTP(ctx context.Context) error {
	return c.call(ctx, OpResendOTP, http.MethodPost, "/auth/resend-otp", nil, nil)
}

// ForgotPassword succeeds for unknown emails too; a 404 from a backend that
// does reveal the account is folded into success.
func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	err := c.call(ctx, OpForgotPassword, http.MethodPost, "/auth/forgot-password", forgotPasswordBody{Email: email}, nil)
	var ce *Error
	if errors.As(err, &ce) && ce.Status == http.StatusNotFound {
		return nil
	}
	return err
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, password string) error {
	body := resetPasswordBody{Token: token, Password: password}
	return c.call(ctx, OpResetPassword, http.MethodPost, "/auth/reset-password", body, nil)
}

// OAuthURL returns the backend endpoint that starts the provider's
// authorization flow and finally redirects to redirectURI.
func (c *HTTPClient) OAuthURL(provider, redirectURI string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if _, ok := oauthProviders[provider]; !ok {
		return "", &Error{Kind: KindValidation, Message: fmt.Sprintf("Unsupported sign-in provider %q", provider), Err: ErrUnsupportedOAuth}
	}
	u := c.base.JoinPath("auth", "oauth", provider)
	if redirectURI != "" {
		q := u.Query()
		q.Set("redirect_uri", redirectURI)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *HTTPClient) call(ctx context.Context, op, method, path string, in, out any) (err error) {
	started := time.Now()
	requestID := uuid.NewString()
	log := c.log.With("operation", op, "request_id", requestID)

	defer func() {
		c.metrics.observe(op, err, time.Since(started))
		if err != nil {
			log.Debug(ctx, "auth call failed", "kind", KindOf(err), "error", err)
			var ce *Error
			if errors.As(err, &ce) && ce.Kind == KindAuthorization && errors.Is(err, ErrUnauthorized) {
				c.fireUnauthorized(ctx, op)
			}
		}
	}()

	req, err := c.newRequest(ctx, method, path, in, requestID)
	if err != nil {
		return &Error{Kind: KindValidation, Message: MsgServer, Err: err}
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			msg := readErrorMessage(resp.Body)
			_ = resp.Body.Close()
			return nil, mapStatus(op, resp.StatusCode, msg)
		}
		return resp, nil
	})
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(op, resp.StatusCode, readErrorMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := decodeValidated(resp.Body, out); err != nil {
		return &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: MsgMalformedResponse,
			Err:     fmt.Errorf("%w: %w", ErrMalformedResponse, err),
		}
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, in any, requestID string) (*http.Request, error) {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.base.JoinPath(path).String()
	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, http.NoBody)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}
	return req, nil
}

func (c *HTTPClient) fireUnauthorized(ctx context.Context, op string) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx, op)
	}
}

// transportError normalizes failures that happened before a usable response
// was read: breaker rejections, 5xx answers and network errors.
func transportError(ctx context.Context, err error) error {
	var ce *Error
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &Error{Kind: KindTransport, Message: MsgUnavailable, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	case ctx.Err() != nil:
		return &Error{Kind: KindTransport, Message: MsgNetwork, Err: ctx.Err()}
	default:
		return &Error{Kind: KindTransport, Message: MsgNetwork, Err: err}
	}
}

// mapStatus turns a non-2xx status into an *Error. Login failures are
// collapsed into one generic message; OTP and reset-token failures may carry
// the backend's own wording.
func mapStatus(op string, status int, serverMsg string) *Error {
	withDefault := func(def string) string {
		if serverMsg != "" {
			return serverMsg
		}
		return def
	}

	switch {
	case op == OpLogin && (status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusNotFound):
		return &Error{Kind: KindAuthentication, Status: status, Message: MsgInvalidCredentials, Err: ErrInvalidCredentials}
	case op == OpRegister && status == http.StatusConflict:
		return &Error{Kind: KindValidation, Status: status, Message: withDefault(MsgAccountExists), Err: ErrConflict}
	case op == OpVerifyEmail && (status == http.StatusBadRequest || status == http.StatusGone):
		return &Error{Kind: KindAuthentication, Status: status, Message: withDefault(MsgInvalidOTP), Err: ErrInvalidOTP}
	case op == OpResetPassword && (status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusGone):
		return &Error{Kind: KindAuthentication, Status: status, Message: MsgInvalidResetToken, Err: ErrInvalidResetToken}
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindAuthorization, Status: status, Message: MsgSessionExpired, Err: ErrUnauthorized}
	case status == http.StatusForbidden:
		return &Error{Kind: KindAuthorization, Status: status, Message: withDefault(MsgForbidden), Err: ErrForbidden}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindTransport, Status: status, Message: MsgTooManyRequests, Err: ErrUnavailable}
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return &Error{Kind: KindTransport, Status: status, Message: MsgUnavailable, Err: ErrUnavailable}
	case status >= http.StatusInternalServerError:
		return &Error{Kind: KindServer, Status: status, Message: MsgServer, Err: fmt.Errorf("server error %d", status)}
	default:
		return &Error{Kind: KindValidation, Status: status, Message: withDefault(MsgServer), Err: ErrInvalidInput}
	}
}
