package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/config"
	"github.com/dmitrijs2005/learnportal/internal/client/guard"
	"github.com/dmitrijs2005/learnportal/internal/client/models"
	"github.com/dmitrijs2005/learnportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/learnportal/internal/client/services"
	"github.com/dmitrijs2005/learnportal/internal/client/session"
	"github.com/dmitrijs2005/learnportal/internal/filex"
	"github.com/dmitrijs2005/learnportal/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the terminal front end: every command plays the role of a screen
// and every location change goes through the route guard.
type App struct {
	config *config.Config
	logger logging.Logger

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer

	db       *sql.DB
	store    *session.Store
	api      *client.HTTPClient
	auth     *services.AuthService
	router   *guard.Router
	registry *prometheus.Registry

	unsubscribe func()
	returnTo    string
}

// NewApp wires the client against the process's stdin/stdout.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(c.LogLevel, os.Stderr)

	storage, db, err := openTokenStorage(ctx, c)
	if err != nil {
		return nil, err
	}

	app, err := newApp(c, storage, os.Stdin, os.Stdout, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	app.db = db
	return app, nil
}

// openTokenStorage opens the durable token backend selected by the config.
// The returned *sql.DB is nil for the keyring backend.
func openTokenStorage(ctx context.Context, c *config.Config) (session.TokenStorage, *sql.DB, error) {
	switch c.TokenStore {
	case config.TokenStoreKeyring:
		return session.NewKeyringStorage(c.KeyringService), nil, nil
	default:
		if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
			return nil, nil, err
		}
		db, err := session.InitDatabase(ctx, c.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return session.NewMetadataStorage(metadata.NewSQLiteRepository(db)), db, nil
	}
}

func newApp(c *config.Config, storage session.TokenStorage, in io.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	store := session.NewStore(storage, logger.With("component", "session"))
	registry := prometheus.NewRegistry()

	api, err := client.NewHTTPClient(client.Options{
		BaseURL:   c.APIBaseURL,
		Timeout:   c.RequestTimeout,
		MeRetries: c.MeRetries,
		RetryBase: c.RetryBase,
		Metrics:   client.NewMetrics(registry),
	}, store, logger)
	if err != nil {
		return nil, err
	}

	auth := services.NewAuthService(api, store, logger)
	router := guard.NewRouter(auth, guard.DefaultRoutes(), logger.With("component", "router"))
	auth.SetNavigator(router)
	api.SetUnauthorizedHandler(auth.HandleUnauthorized)

	a := &App{
		config:   c,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
		store:    store,
		api:      api,
		auth:     auth,
		router:   router,
		registry: registry,
	}
	a.unsubscribe = auth.Subscribe(func(s models.AuthSnapshot) {
		a.logger.Debug(context.Background(), "auth state", "state", s.State.String())
	})
	return a, nil
}

// Run restores the stored session and serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.println("Welcome to LearnPortal (type 'help' for commands)")

	if err := a.auth.Bootstrap(ctx); err != nil {
		return err
	}
	if a.auth.Snapshot().State.IsAuthenticated() {
		a.goTo(ctx, guard.PathLanding)
	} else {
		a.goTo(ctx, guard.PathHome)
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

// Close releases the session slot and the client database.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.store.Teardown()
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.Snapshot().State.IsAuthenticated()
}

func (a *App) isVerified() bool {
	return a.auth.Snapshot().State == models.StateVerified
}

// status is the prompt prefix: the signed-in email and state, then the
// current location.
func (a *App) status() string {
	snap := a.auth.Snapshot()
	s := ""
	if snap.User != nil {
		s = fmt.Sprintf("[%s %s] ", snap.User.Email, snap.State)
	}
	return s + a.router.Current()
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// prompt and password wrap the input helpers with the app's reader and
// output.
func (a *App) prompt(text string) (string, error) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	return getSimpleText(a.reader, text, a.out)
}

func (a *App) password(text string) ([]byte, error) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	return getPassword(a.reader, text, a.out)
}

func (a *App) confirm(question string) (bool, error) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	return Confirm(a.reader, question, a.out)
}
