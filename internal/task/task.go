// Package task defines the unit of work driven by the controller and the
// terminal outcome of a single run.
//
// A Task is opaque to the controller: it receives a cancellation context and
// a Log to write message-log lines to, and returns either a success message
// or an error. Tasks must observe ctx at their own safe points and return
// promptly (with ctx.Err() or ErrCancelled) once it is done. The controller
// never force-stops a task.
package task

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned by tasks that stop because cancellation was
// requested. context.Canceled is treated the same way.
var ErrCancelled = errors.New("task cancelled")

// Log receives message-log lines from a running task.
type Log interface {
	Printf(format string, args ...any)
}

// Task is a unit of work. Run blocks until the work finishes or ctx is done.
type Task interface {
	Run(ctx context.Context, log Log) (string, error)
}

// Func adapts an ordinary function to the Task interface.
type Func func(ctx context.Context, log Log) (string, error)

// Run calls f(ctx, log).
func (f Func) Run(ctx context.Context, log Log) (string, error) {
	return f(ctx, log)
}

// Kind classifies how a run ended.
type Kind string

const (
	KindSuccess   Kind = "success"
	KindCancelled Kind = "cancelled"
	KindFailed    Kind = "failed"
)

// Messages shown to the user for each outcome.
const (
	SuccessMessage   = "Bot has completed successfully with no errors."
	CancelledMessage = "Bot stopped successfully."
)

// Outcome is the terminal result of one run. It is immutable once built.
type Outcome struct {
	Kind Kind
	// Message is the user-facing text for the outcome.
	Message string
	// Err holds the failure for KindFailed, nil otherwise.
	Err error
}

// Success builds a successful outcome. An empty message uses SuccessMessage.
func Success(message string) Outcome {
	if message == "" {
		message = SuccessMessage
	}
	return Outcome{Kind: KindSuccess, Message: message}
}

// Cancelled builds a cancellation outcome.
func Cancelled() Outcome {
	return Outcome{Kind: KindCancelled, Message: CancelledMessage}
}

// Failed builds a failure outcome for err.
func Failed(err error) Outcome {
	return Outcome{
		Kind:    KindFailed,
		Message: fmt.Sprintf("Encountered an Exception: %v.\nSee the message log for more details.", err),
		Err:     err,
	}
}

// Classify converts the result of Task.Run into an Outcome. Cancellation
// errors are kept apart from genuine failures so a user-requested stop is
// never reported as an error.
func Classify(message string, err error) Outcome {
	switch {
	case err == nil:
		return Success(message)
	case IsCancellation(err):
		return Cancelled()
	default:
		return Failed(err)
	}
}

// IsCancellation reports whether err signals a requested stop.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// String returns the outcome's kind and message on one line.
func (o Outcome) String() string {
	return fmt.Sprintf("%s: %s", o.Kind, o.Message)
}
