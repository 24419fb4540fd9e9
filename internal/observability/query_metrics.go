package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QueryMetrics records one observation per store query the list-query
// engine issues. A nil *QueryMetrics is a no-op sink.
type QueryMetrics struct {
	queryDuration metric.Float64Histogram
	queryCounter  metric.Int64Counter
	errorCounter  metric.Int64Counter
}

// InitQueryMetrics initializes store query metrics.
func InitQueryMetrics() (*QueryMetrics, error) {
	meter := otel.Meter(meterName)

	queryDuration, err := meter.Float64Histogram(
		"store.query.duration",
		metric.WithDescription("Duration of store queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query duration histogram: %w", err)
	}

	queryCounter, err := meter.Int64Counter(
		"store.queries.total",
		metric.WithDescription("Total number of store queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"store.query.errors.total",
		metric.WithDescription("Total number of failed store queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query error counter: %w", err)
	}

	return &QueryMetrics{
		queryDuration: queryDuration,
		queryCounter:  queryCounter,
		errorCounter:  errorCounter,
	}, nil
}

// RecordQuery records one store query with its entity, operation kind
// (list, count, facet, node), duration, and outcome.
func (m *QueryMetrics) RecordQuery(ctx context.Context, entityName, op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("entity", entityName),
		attribute.String("operation", op),
		attribute.Bool("error", err != nil),
	}

	m.queryDuration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
	m.queryCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("entity", entityName),
			attribute.String("operation", op),
		))
	}
}
