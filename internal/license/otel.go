package license

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the license instruments. A nil *Metrics records nothing.
type Metrics struct {
	VerificationAttempts  metric.Int64Counter
	VerificationDuration  metric.Float64Histogram
	RegistryFetches       metric.Int64Counter
	RegistryFetchDuration metric.Float64Histogram
	RecordWrites          metric.Int64Counter
}

// InitializeMetrics creates the license instruments on meter.
func InitializeMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := &Metrics{}

	var err error
	metrics.VerificationAttempts, err = meter.Int64Counter(
		"license_verification_attempts_total",
		metric.WithDescription("Total number of license verifications by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification attempts counter: %w", err)
	}

	metrics.VerificationDuration, err = meter.Float64Histogram(
		"license_verification_duration_seconds",
		metric.WithDescription("License verification duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification duration histogram: %w", err)
	}

	metrics.RegistryFetches, err = meter.Int64Counter(
		"license_registry_fetches_total",
		metric.WithDescription("Total number of registry fetches by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry fetch counter: %w", err)
	}

	metrics.RegistryFetchDuration, err = meter.Float64Histogram(
		"license_registry_fetch_duration_seconds",
		metric.WithDescription("Registry fetch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry fetch duration histogram: %w", err)
	}

	metrics.RecordWrites, err = meter.Int64Counter(
		"license_record_writes_total",
		metric.WithDescription("Total number of license record writes by reason and result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record writes counter: %w", err)
	}

	return metrics, nil
}

func (m *Metrics) recordVerification(ctx context.Context, status Status, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("status", string(status)),
		attribute.String("component", "license_verifier"),
	)
	m.VerificationAttempts.Add(ctx, 1, labels)
	m.VerificationDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) recordFetch(ctx context.Context, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "empty"
	if ok {
		result = "ok"
	}
	labels := metric.WithAttributes(attribute.String("result", result))
	m.RegistryFetches.Add(ctx, 1, labels)
	m.RegistryFetchDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) recordWrite(ctx context.Context, reason string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.RecordWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
		attribute.String("result", result),
	))
}
