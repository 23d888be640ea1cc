package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/streamfork/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the fork engine.
type Metrics struct {
	forkTotal          metric.Int64Counter
	forkDuration       metric.Float64Histogram
	forkActive         metric.Int64UpDownCounter
	forkQueued         metric.Int64UpDownCounter
	dispatchTotal      metric.Int64Counter
	elementsDispatched metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	forkTotal, err := meter.Int64Counter("fork.total",
		metric.WithDescription("Forks that reached a terminal state, by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fork.total counter: %w", err)
	}

	forkDuration, err := meter.Float64Histogram("fork.duration",
		metric.WithDescription("Time from fork start to terminal state in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fork.duration histogram: %w", err)
	}

	forkActive, err := meter.Int64UpDownCounter("fork.active",
		metric.WithDescription("Forks currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fork.active gauge: %w", err)
	}

	forkQueued, err := meter.Int64UpDownCounter("fork.queued",
		metric.WithDescription("Forks waiting for a worker slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fork.queued gauge: %w", err)
	}

	dispatchTotal, err := meter.Int64Counter("dispatch.total",
		metric.WithDescription("Dispatch runs, by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.total counter: %w", err)
	}

	elementsDispatched, err := meter.Int64Counter("elements.dispatched",
		metric.WithDescription("Source elements read and fanned out"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating elements.dispatched counter: %w", err)
	}

	return &Metrics{
		forkTotal:          forkTotal,
		forkDuration:       forkDuration,
		forkActive:         forkActive,
		forkQueued:         forkQueued,
		dispatchTotal:      dispatchTotal,
		elementsDispatched: elementsDispatched,
	}, nil
}

// RecordForkStart increments the running fork count.
func (m *Metrics) RecordForkStart(ctx context.Context) {
	m.forkActive.Add(ctx, 1)
}

// RecordForkQueued adjusts the number of forks waiting for a worker slot.
func (m *Metrics) RecordForkQueued(ctx context.Context, delta int64) {
	m.forkQueued.Add(ctx, delta)
}

// RecordForkEnd decrements running forks and records the terminal status and duration.
func (m *Metrics) RecordForkEnd(ctx context.Context, fork, status string, duration time.Duration) {
	m.forkActive.Add(ctx, -1)
	m.forkTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("fork", fork),
		attribute.String("status", status),
	))
	m.forkDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("fork", fork),
	))
}

// RecordDispatch records a finished dispatch run and the elements it fanned out.
func (m *Metrics) RecordDispatch(ctx context.Context, status string, elements int64) {
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.elementsDispatched.Add(ctx, elements)
}
