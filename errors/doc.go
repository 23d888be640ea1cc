// Package errors provides the structured error type shared by the fork engine
// and its supporting packages. Every error carries a machine-readable code so
// callers can branch with errors.Is against the exported sentinels or with
// HasCode.
package errors
