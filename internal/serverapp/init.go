package serverapp

import (
	"context"
	"fmt"
	"log/slog"

	"bizql/internal/dbexec"
	"bizql/internal/entity"
	"bizql/internal/queryengine"
	"bizql/internal/resolver"
)

// Init initializes all runtime resources. It is idempotent.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	if a.initialized {
		a.stateMu.Unlock()
		return nil
	}
	a.stateMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	cleanup := cleanupStack{}
	success := false
	defer func() {
		if !success {
			cleanup.run(context.Background(), a.logger)
		}
	}()

	if a.loggerProvider != nil {
		cleanup.push("logger provider", func(shutdownCtx context.Context) error {
			return a.loggerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	meterProvider, queryMetrics, authMetrics, err := initMetrics(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry metrics: %w", err)
	}
	if meterProvider != nil {
		cleanup.push("meter provider", func(shutdownCtx context.Context) error {
			return meterProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	tracerProvider, err := initTracing(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry tracing: %w", err)
	}
	if tracerProvider != nil {
		cleanup.push("tracer provider", func(shutdownCtx context.Context) error {
			return tracerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	db, dbStatsReg, err := connectDB(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup.push("database", func(_ context.Context) error {
		if dbStatsReg != nil {
			if err := dbStatsReg.Unregister(); err != nil {
				a.logger.Warn("failed to unregister DB stats metrics", slog.String("error", err.Error()))
			}
		}
		return db.Close()
	})

	if err := configureDatabase(ctx, a.cfg, a.logger, db); err != nil {
		return fmt.Errorf("failed to verify database connection: %w", err)
	}

	registry, err := entity.Catalog()
	if err != nil {
		return fmt.Errorf("failed to build entity catalog: %w", err)
	}

	executor := dbexec.QueryExecutor(dbexec.NewPoolExecutor(db))

	engineOpts := []queryengine.Option{
		queryengine.WithLogger(a.logger.Logger),
		queryengine.WithPageLimits(queryengine.PageLimits{
			Default: a.cfg.Server.DefaultPageSize,
			Max:     a.cfg.Server.MaxPageSize,
		}),
	}
	if queryMetrics != nil {
		engineOpts = append(engineOpts, queryengine.WithMetrics(queryMetrics))
	}
	engine := queryengine.NewEngine(executor, engineOpts...)

	schema, err := resolver.New(engine, registry, a.logger.Logger).BuildSchema()
	if err != nil {
		return fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	graphqlHandler, err := buildGraphQLHandler(a.cfg, a.logger, schema, authMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize GraphQL handler: %w", err)
	}

	metricsHandler, err := buildMetricsHandler(a.cfg, a.logger, meterProvider)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics endpoint: %w", err)
	}

	mux := buildRouter(a.cfg, a.logger, db, graphqlHandler, metricsHandler)
	handler := wrapHTTPHandler(a.cfg, a.logger, mux)

	serverAddr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv := buildServer(a.cfg, handler, serverAddr)
	cleanup.push("HTTP server", func(shutdownCtx context.Context) error {
		return srv.Shutdown(shutdownCtx)
	})

	a.stateMu.Lock()
	a.meterProvider = meterProvider
	a.queryMetrics = queryMetrics
	a.authMetrics = authMetrics
	a.tracerProvider = tracerProvider
	a.db = db
	a.dbStatsReg = dbStatsReg
	a.executor = executor
	a.engine = engine
	a.graphqlHandler = graphqlHandler
	a.mux = mux
	a.handler = handler
	a.serverAddr = serverAddr
	a.srv = srv
	a.cleanup = cleanup
	a.initialized = true
	a.stateMu.Unlock()

	success = true
	return nil
}
