package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registry errors
const (
	// ErrCodeDuplicateKey indicates a fork key was registered twice.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
	// ErrCodeInvalidState indicates an operation was attempted in the wrong lifecycle phase.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Lookup errors
const (
	// ErrCodeUnknownKey indicates a result was requested for a key that was never registered.
	ErrCodeUnknownKey ErrorCode = "UNKNOWN_KEY"
	// ErrCodeTypeMismatch indicates a stored result is not of the requested type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Computation errors
const (
	// ErrCodeSourceFailed indicates reading the source sequence failed.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
	// ErrCodeForkFailed indicates a fork's transform returned an error or panicked.
	ErrCodeForkFailed ErrorCode = "FORK_FAILED"
	// ErrCodeCancelled indicates the operation's context was cancelled or timed out.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. AppError.Is matches on code only, so any error
// produced by the constructors below compares equal to the sentinel with the
// same code.
var (
	ErrDuplicateKey = &AppError{Code: ErrCodeDuplicateKey}
	ErrInvalidState = &AppError{Code: ErrCodeInvalidState}
	ErrUnknownKey   = &AppError{Code: ErrCodeUnknownKey}
	ErrTypeMismatch = &AppError{Code: ErrCodeTypeMismatch}
	ErrSourceFailed = &AppError{Code: ErrCodeSourceFailed}
	ErrForkFailed   = &AppError{Code: ErrCodeForkFailed}
	ErrCancelled    = &AppError{Code: ErrCodeCancelled}
	ErrInvalidInput = &AppError{Code: ErrCodeInvalidInput}
)
