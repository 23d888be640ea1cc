// Command menustats forks the demonstration menu into several statistics
// computed concurrently from a single pass over the dishes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/streamfork/bootstrap"
	"github.com/kbukum/streamfork/config"
	"github.com/kbukum/streamfork/forker"
	"github.com/kbukum/streamfork/internal/menu"
	"github.com/kbukum/streamfork/logger"
	"github.com/kbukum/streamfork/version"
)

const serviceName = "menustats"

// AppConfig is the menustats configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Forker               forker.Config `yaml:"forker" mapstructure:"forker"`
}

// Validate checks the service and engine sections.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Forker.Validate(); err != nil {
		return fmt.Errorf("config.forker: %w", err)
	}
	return nil
}

func main() {
	var (
		configPath  string
		environment string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config.yml")
	flag.StringVar(&environment, "env", "", "Environment (development, staging, production)")
	flag.BoolVar(&showVersion, "version", false, "Print version")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get().String())
		return
	}

	if err := run(configPath, environment); err != nil {
		fmt.Fprintln(os.Stderr, "menustats:", err)
		os.Exit(1)
	}
}

func run(configPath, environment string) error {
	opts := []config.LoaderOption{config.WithEnvironment(environment)}
	if configPath != "" {
		opts = append(opts, config.WithConfigFile(configPath))
	}

	cfg := AppConfig{ServiceConfig: config.ServiceConfig{Name: serviceName}}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	return app.RunTask(context.Background(), func(ctx context.Context) error {
		return forkMenu(ctx, &cfg, app.Logger.WithComponent("forker"))
	})
}

func forkMenu(ctx context.Context, cfg *AppConfig, log *logger.Logger) error {
	opts, err := cfg.Forker.Options()
	if err != nil {
		return err
	}
	opts = append(opts, forker.WithLogger(log))

	res, err := menu.Register(forker.New[string](menu.Source(ctx), opts...)).Dispatch(ctx)
	if err != nil {
		return err
	}

	stats, err := menu.Collect(ctx, res)
	if err != nil {
		return err
	}
	fmt.Print(stats.Report())
	return nil
}
