package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/streamfork/config"
	"github.com/kbukum/streamfork/logger"
	"github.com/kbukum/streamfork/observability"
)

// Components are the packages whose loggers NewApp registers from the app logger.
var Components = []string{"forker", "config"}

// App runs a finite task with config, logging, telemetry and shutdown hooks
// set up around it. C is any config embedding config.ServiceConfig.
//
//	app, err := bootstrap.NewApp(&cfg)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return work(ctx)
//	})
type App[C config.Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	gracefulTimeout time.Duration
	signals         []os.Signal

	onStart []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates cfg and initializes the logger. The
// loggers of Components are derived from the app logger.
func NewApp[C config.Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	logger.RegisterComponents(app.Logger, Components...)

	if base.Telemetry.Enabled {
		app.OnStart(app.startTelemetry)
	}
	return app, nil
}

// startTelemetry installs the OTLP tracer and meter providers and schedules
// their shutdown.
func (a *App[C]) startTelemetry(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()

	tcfg := base.TracerConfig()
	tp, err := observability.InitTracer(ctx, &tcfg)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	a.OnStop(tp.Shutdown)

	mcfg := base.MeterConfig()
	mp, err := observability.InitMeter(ctx, &mcfg)
	if err != nil {
		return fmt.Errorf("meter: %w", err)
	}
	a.OnStop(mp.Shutdown)
	return nil
}

// RunTask runs OnStart hooks, then task, then OnStop hooks. SIGINT or SIGTERM
// cancels the task's context. If a start hook fails, the stop hooks registered
// so far still run. The task error takes precedence over shutdown
// errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := runHooks(ctx, a.onStart); err != nil {
		_ = a.stop()
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	taskCtx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	start := time.Now()
	taskErr := task(taskCtx)
	if taskErr != nil {
		a.Logger.Error("task failed", logger.ErrorFields("run", taskErr))
	} else {
		a.Logger.Info("task finished", logger.DurationFields("run", time.Since(start)))
	}

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// stop runs OnStop hooks in reverse registration order within the graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var firstErr error
	for i := len(a.onStop) - 1; i >= 0; i-- {
		if err := a.onStop[i](ctx); err != nil {
			a.Logger.Error("onStop hook failed", logger.ErrorFields("shutdown", err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
