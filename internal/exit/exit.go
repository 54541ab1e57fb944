package exit

import (
	"fmt"
	"io"
)

// Stream selects where a result message is written.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// Result describes how the command terminates: what to print, where, and the exit code.
type Result struct {
	Stream   Stream
	ExitCode int
	Message  string
}

// Print writes the message to the stream the result targets.
func (r *Result) Print(stdout, stderr io.Writer) {
	w := stdout
	if r.Stream == Stderr {
		w = stderr
	}
	fmt.Fprint(w, r.Message)
}

// Success writes message to stdout and exits 0.
func Success(message string) *Result {
	return &Result{
		Stream:   Stdout,
		ExitCode: 0,
		Message:  message,
	}
}

// Error writes message to stderr and exits 1.
func Error(message string) *Result {
	return &Result{
		Stream:   Stderr,
		ExitCode: 1,
		Message:  message,
	}
}

// Errorf is Error with a formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// Failure reports err the way every command error is shown.
func Failure(err error) *Result {
	return Errorf("Error: %v\n", err)
}
