package exit

import (
	"fmt"
	"io"
)

const (
	CodeSuccess = 0
	CodeFailure = 1
	CodeUsage   = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message, if any, to the configured output.
func (r *Result) Print() {
	if r.Output == nil || r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a result with exit code 0.
func Success(w io.Writer, message string) *Result {
	return &Result{Output: w, ExitCode: CodeSuccess, Message: message}
}

// Error creates a result with exit code 1.
func Error(w io.Writer, message string) *Result {
	return &Result{Output: w, ExitCode: CodeFailure, Message: message}
}

// Errorf creates an error result with a formatted message.
func Errorf(w io.Writer, format string, a ...any) *Result {
	return Error(w, fmt.Sprintf(format, a...))
}

// Usage creates a result for invalid invocations with exit code 2.
func Usage(w io.Writer, message string) *Result {
	return &Result{Output: w, ExitCode: CodeUsage, Message: message}
}

// Status forwards code without a message, e.g. a child program's exit status.
func Status(code int) *Result {
	return &Result{ExitCode: code}
}
