package forker

import (
	"github.com/kbukum/streamfork/logger"
	"github.com/kbukum/streamfork/observability"
	"github.com/kbukum/streamfork/validation"
)

// Option configures a Forker.
type Option func(*options)

type options struct {
	log      *logger.Logger
	tracing  bool
	metrics  *observability.Metrics
	executor Executor
	maxConc  int
}

func defaultOptions() options {
	return options{log: logger.Get("forker")}
}

// resolveExecutor picks the scheduler once all options are applied.
func (o *options) resolveExecutor() {
	switch {
	case o.executor != nil:
	case o.maxConc > 0:
		o.executor = NewBulkheadExecutor(o.maxConc, BulkheadLogger(o.log), BulkheadMetrics(o.metrics))
	default:
		o.executor = GoExecutor{}
	}
}

// WithLogger sets the logger used for dispatch and fork events.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithTracing opens a span for the dispatch run and for every fork.
func WithTracing() Option {
	return func(o *options) { o.tracing = true }
}

// WithMetrics records fork and dispatch metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithExecutor replaces the worker scheduler. It takes precedence over
// WithMaxConcurrency.
func WithExecutor(e Executor) Option {
	return func(o *options) {
		if e != nil {
			o.executor = e
		}
	}
}

// WithMaxConcurrency bounds how many forks run at once. n <= 0 leaves one
// goroutine per fork.
func WithMaxConcurrency(n int) Option {
	return func(o *options) { o.maxConc = n }
}

// Config is the configuration block for the engine.
type Config struct {
	// MaxConcurrency bounds running forks (0 = one goroutine per fork).
	MaxConcurrency int `mapstructure:"max_concurrency" json:"max_concurrency" validate:"gte=0,lte=10000"`
	// Tracing enables per-run and per-fork spans.
	Tracing bool `mapstructure:"tracing" json:"tracing"`
	// Metrics enables fork metrics on the global meter.
	Metrics bool `mapstructure:"metrics" json:"metrics"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Options translates the configuration into engine options.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{WithMaxConcurrency(c.MaxConcurrency)}
	if c.Tracing {
		opts = append(opts, WithTracing())
	}
	if c.Metrics {
		m, err := observability.NewMetrics(observability.Meter("forker"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithMetrics(m))
	}
	return opts, nil
}
