// Package bootstrap wraps a finite command in a uniform lifecycle: validated
// config, an initialized logger, optional OTLP telemetry, start and stop hooks,
// and cancellation on SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, run)
package bootstrap
