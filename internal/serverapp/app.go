// Package serverapp wires configuration, observability, the database pool
// and the GraphQL query engine into a managed server lifecycle.
package serverapp

import (
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"bizql/internal/config"
	"bizql/internal/dbexec"
	"bizql/internal/logging"
	"bizql/internal/observability"
	"bizql/internal/queryengine"
)

// App owns the runtime resources of a bizql server instance.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider
	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	queryMetrics   *observability.QueryMetrics
	authMetrics    *observability.AuthMetrics

	db         *sql.DB
	dbStatsReg interface{ Unregister() error }
	executor   dbexec.QueryExecutor
	engine     *queryengine.Engine

	graphqlHandler http.Handler
	mux            *http.ServeMux
	handler        http.Handler

	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if _, err := cfg.Database.EffectiveDatabaseName(); err != nil {
		return nil, fmt.Errorf("failed to resolve database configuration: %w", err)
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// AttachLoggerProvider registers an optional OTLP logger provider so its
// flush runs as part of shutdown.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}
