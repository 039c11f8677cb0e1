package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yanqian/solarcast/internal/infra/config"
)

const defaultShutdownGrace = 10 * time.Second

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server}
}

// Run starts the HTTP server and blocks until shutdown. Request contexts derive from
// a base context that is cancelled once the shutdown grace period runs out, so long
// training streams stop instead of holding the process open.
func (a *App) Run(ctx context.Context) error {
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()
	a.server.BaseContext = func(net.Listener) context.Context { return baseCtx }

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown(cancelRequests)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) shutdown(cancelRequests context.CancelFunc) error {
	grace := a.cfg.HTTP.ShutdownGrace
	if grace <= 0 {
		grace = defaultShutdownGrace
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Warn("grace period elapsed, cancelling in-flight requests", "grace", grace)
		cancelRequests()
		if closeErr := a.server.Close(); closeErr != nil {
			a.logger.Warn("forced close failed", "error", closeErr)
		}
		return nil
	}
	return err
}
