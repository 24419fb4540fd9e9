package serverapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"bizql/internal/logging"
)

// cleanupStack collects teardown steps during Init and runs them in reverse
// order. Each step logs its own outcome; a failing step never stops the rest.
type cleanupStack struct {
	steps []func(context.Context, *logging.Logger)
}

func (s *cleanupStack) push(name string, fn func(context.Context) error) {
	s.steps = append(s.steps, func(ctx context.Context, logger *logging.Logger) {
		if logger != nil {
			logger.Info("shutting down " + name)
		}
		if err := fn(ctx); err != nil && logger != nil {
			logger.Warn("cleanup error",
				slog.String("component", name),
				slog.String("error", err.Error()),
			)
		}
	})
}

func (s *cleanupStack) run(ctx context.Context, logger *logging.Logger) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		s.steps[i](ctx, logger)
	}
}

// Start launches the HTTP server goroutine. It requires Init to have completed.
func (a *App) Start() (<-chan error, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	if !a.initialized {
		return nil, fmt.Errorf("app is not initialized")
	}
	if a.started {
		return a.serverErrors, nil
	}

	a.serverErrors = startServer(a.cfg, a.logger, a.srv, a.serverAddr)
	a.started = true
	return a.serverErrors, nil
}

// WaitForStop blocks until an OS signal arrives or the server fails, and
// reports which one happened. A nil channel simply never fires.
func (a *App) WaitForStop(stop <-chan os.Signal, serverErrors <-chan error) (reason string, err error) {
	if serverErrors == nil {
		a.stateMu.Lock()
		serverErrors = a.serverErrors
		a.stateMu.Unlock()
	}
	if stop == nil && serverErrors == nil {
		return "", fmt.Errorf("nothing to wait on: both stop and serverErrors channels are nil")
	}

	select {
	case err := <-serverErrors:
		if err == nil {
			return "server_error", fmt.Errorf("server stopped unexpectedly")
		}
		return "server_error", fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		if a.logger != nil {
			a.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		}
		return "signal", nil
	}
}

// Shutdown gracefully releases all acquired resources. Safe to call more
// than once; only the first call runs the cleanup stack.
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a.shutdownOnce.Do(func() {
		a.stateMu.Lock()
		cleanup := a.cleanup
		a.started = false
		a.stateMu.Unlock()

		cleanup.run(ctx, a.logger)
	})

	return nil
}
