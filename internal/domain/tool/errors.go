package tool

// ErrorType classifies tool failures for the agent loop: validation errors
// need a corrected payload, transient errors can be retried as-is, fatal
// errors signal a registry or configuration bug.
type ErrorType string

const (
	ErrorValidation ErrorType = "validation_error"
	ErrorTransient  ErrorType = "transient_error"
	ErrorFatal      ErrorType = "fatal_error"
)

// Error is the structured failure carried in a Result. Message is read by
// the LLM itself, so it must be actionable prose, never a bare stack trace.
type Error struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

func (e *Error) Error() string {
	return string(e.Type) + ": " + e.Message
}

// ValidationError builds a non-retryable bad-arguments failure.
func ValidationError(msg string) *Error {
	return &Error{Type: ErrorValidation, Message: msg, Retryable: false}
}

// TransientError builds a retryable execution failure.
func TransientError(msg string) *Error {
	return &Error{Type: ErrorTransient, Message: msg, Retryable: true}
}

// FatalError builds a non-retryable registry-level failure.
func FatalError(msg string) *Error {
	return &Error{Type: ErrorFatal, Message: msg, Retryable: false}
}

// Fail wraps an Error into a failed Result.
func Fail(err *Error) Result {
	return Result{Success: false, Error: err}
}

// Ok wraps a handler output into a successful Result.
func Ok(output any) Result {
	return Result{Success: true, Output: output}
}
