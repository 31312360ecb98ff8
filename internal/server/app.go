// Package server wires and runs the development backend: an in-memory
// account service behind the REST API consumed by the portal client.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/learnportal/internal/logging"
	"github.com/dmitrijs2005/learnportal/internal/server/config"
	"github.com/dmitrijs2005/learnportal/internal/server/rest"
	"github.com/dmitrijs2005/learnportal/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSON(c.LogLevel, os.Stdout)

	us := users.NewService(users.NewMemoryRepository(), users.NewOutbox(logger), c, logger)

	return &App{config: c, logger: logger, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the API until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	s := rest.NewServer(app.config.ListenAddr, app.logger, app.userService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
