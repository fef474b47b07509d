package apperror

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// AppError is the application error type. It carries a stable code, a
// human-readable message, optional structured context, and the wrapped cause.
type AppError struct {
	Code      Code           `json:"code"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	cause error
	stack []uintptr
}

// Option configures an AppError.
type Option func(*AppError)

// WithMessage overrides the default message for the code.
func WithMessage(msg string) Option {
	return func(e *AppError) {
		e.Message = msg
	}
}

// WithMessagef overrides the default message with a formatted one.
func WithMessagef(format string, args ...any) Option {
	return func(e *AppError) {
		e.Message = fmt.Sprintf(format, args...)
	}
}

// WithContext attaches a structured key/value pair to the error.
func WithContext(key string, value any) Option {
	return func(e *AppError) {
		if e.Context == nil {
			e.Context = make(map[string]any)
		}
		e.Context[key] = value
	}
}

// WithCause records the underlying error.
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// New creates an AppError with the given code, applying options.
func New(code Code, opts ...Option) *AppError {
	msg, ok := messages[code]
	if !ok {
		msg = messages[CodeUnknownError]
	}

	e := &AppError{
		Code:      code,
		Message:   msg,
		Timestamp: time.Now().UTC(),
		stack:     callers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wrap creates an AppError with the given code wrapping err. If err is
// already an AppError with the same code it is returned unchanged.
func Wrap(err error, code Code, opts ...Option) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == code && len(opts) == 0 {
		return appErr
	}

	return New(code, append([]Option{WithCause(err)}, opts...)...)
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// StackTrace renders the captured call stack, most recent call first.
func (e *AppError) StackTrace() []string {
	frames := runtime.CallersFrames(e.stack)
	var out []string
	for {
		frame, more := frames.Next()
		out = append(out, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return out
}

// IsAppError reports whether err is (or wraps) an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the code from err, or CodeUnknownError if err is not
// an AppError.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func callers() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}
