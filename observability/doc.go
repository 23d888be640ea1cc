// Package observability provides OpenTelemetry tracing and metrics for the
// fork engine.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("menustats")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("forker"))
//	metrics.RecordForkEnd(ctx, "count", "completed", elapsed)
package observability
