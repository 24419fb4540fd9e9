package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics holds authentication counters for the token-verifying
// middleware. A nil *AuthMetrics is a no-op sink.
type AuthMetrics struct {
	attempts  metric.Int64Counter
	successes metric.Int64Counter
	failures  metric.Int64Counter
}

// InitAuthMetrics initializes authentication metrics.
func InitAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter(meterName + "/auth")

	attempts, err := meter.Int64Counter(
		"auth.attempts.total",
		metric.WithDescription("Total number of authentication attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth attempts counter: %w", err)
	}

	successes, err := meter.Int64Counter(
		"auth.successes.total",
		metric.WithDescription("Total number of successful authentications"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth successes counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"auth.failures.total",
		metric.WithDescription("Total number of failed authentications"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth failures counter: %w", err)
	}

	return &AuthMetrics{
		attempts:  attempts,
		successes: successes,
		failures:  failures,
	}, nil
}

// RecordAttempt records one authentication attempt.
func (m *AuthMetrics) RecordAttempt(ctx context.Context) {
	if m == nil {
		return
	}
	m.attempts.Add(ctx, 1)
}

// RecordSuccess records one successful authentication.
func (m *AuthMetrics) RecordSuccess(ctx context.Context, issuer string) {
	if m == nil {
		return
	}
	m.successes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("issuer", issuer),
	))
}

// RecordFailure records one failed authentication with the failing stage.
func (m *AuthMetrics) RecordFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}
