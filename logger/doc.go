// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers and correlation of log lines with dispatch runs and OpenTelemetry
// spans carried in a context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("forker")
//	log.Info("dispatch finished", logger.Fields("elements", 9))
package logger
