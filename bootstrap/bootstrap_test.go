package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/streamfork/config"
	"github.com/kbukum/streamfork/logger"
)

type testConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-app", Version: "0.1.0"}}
	app, err := NewApp(cfg, append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-app" {
		t.Errorf("expected name 'test-app', got %q", app.Name)
	}
	if app.Version != "0.1.0" {
		t.Errorf("expected version '0.1.0', got %q", app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default timeout 15s, got %v", app.gracefulTimeout)
	}
	if len(app.onStart) != 0 {
		t.Errorf("expected no start hooks without telemetry, got %d", len(app.onStart))
	}
}

func TestNewAppValidation(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err == nil {
		t.Fatal("expected validation error for missing name")
	}
	if !strings.Contains(err.Error(), "config validation") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewAppTelemetryHook(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{
		Name:      "test-app",
		Telemetry: config.TelemetryConfig{Enabled: true, Endpoint: "localhost:4318"},
	}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if len(app.onStart) != 1 {
		t.Errorf("expected telemetry start hook, got %d hooks", len(app.onStart))
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(time.Second))
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s, got %v", app.gracefulTimeout)
	}
}

func TestRunTaskSuccess(t *testing.T) {
	app := newTestApp(t)
	ran := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("task did not run")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t)
	want := errors.New("task failed")
	err := app.RunTask(context.Background(), func(ctx context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.RunTask(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunTaskHookOrder(t *testing.T) {
	app := newTestApp(t)
	var order []string
	record := func(name string) Hook {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	app.OnStart(record("start1"), record("start2"))
	app.OnStop(record("stop1"), record("stop2"))

	err := app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "start1,start2,task,stop2,stop1"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected order %s, got %s", want, got)
	}
}

func TestRunTaskStartHookError(t *testing.T) {
	app := newTestApp(t)
	app.OnStart(func(context.Context) error { return errors.New("no") })

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Errorf("expected onStart error, got %v", err)
	}
	if ran {
		t.Error("task must not run after a failed start hook")
	}
}

func TestRunTaskStartHookErrorReleasesStarted(t *testing.T) {
	app := newTestApp(t)
	released := false
	app.OnStart(func(context.Context) error {
		app.OnStop(func(context.Context) error {
			released = true
			return nil
		})
		return nil
	})
	app.OnStart(func(context.Context) error { return errors.New("meter") })

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected onStart error")
	}
	if !released {
		t.Error("stop hook of the started resource must run")
	}
}

func TestNewAppRegistersComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test-app", &buf)
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-app"}}
	if _, err := NewApp(cfg, WithLogger(base)); err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { logger.RegisterComponents(logger.Nop(), Components...) })

	logger.Get("forker").Info("dispatch started")

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if m[logger.FieldComponent] != "forker" {
		t.Errorf("expected component=forker, got %v", m[logger.FieldComponent])
	}
	if m[logger.FieldService] != "test-app" {
		t.Errorf("expected service=test-app, got %v", m[logger.FieldService])
	}
}

func TestRunTaskStopHookError(t *testing.T) {
	app := newTestApp(t)
	stopErr := errors.New("flush failed")
	secondRan := false
	app.OnStop(func(context.Context) error {
		secondRan = true
		return nil
	})
	app.OnStop(func(context.Context) error { return stopErr })

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, stopErr) {
		t.Errorf("expected stop error, got %v", err)
	}
	if !secondRan {
		t.Error("remaining stop hooks must run after a failure")
	}
}

func TestRunTaskErrorWinsOverStopError(t *testing.T) {
	app := newTestApp(t)
	app.OnStop(func(context.Context) error { return errors.New("stop") })

	taskErr := errors.New("task")
	err := app.RunTask(context.Background(), func(context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Errorf("expected task error, got %v", err)
	}
}
