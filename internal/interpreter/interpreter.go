// Package interpreter runs the external natural-language-to-SQL program and
// captures its report.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when the interpreter does not finish within the
// configured timeout. The process has been killed by then.
var ErrTimeout = errors.New("interpreter timed out")

// ErrUnavailable is returned by Pool when the caller gives up waiting for a
// free slot.
var ErrUnavailable = errors.New("interpreter unavailable")

// Output is everything captured from one invocation. A non-zero ExitCode is
// not an error; callers still parse Stdout.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Interpreter turns a query into a raw text report.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (*Output, error)
	// Name is used in user-facing error messages.
	Name() string
}

// LaunchError means the process could not be started at all.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Func adapts a plain function to the Interpreter interface.
type Func struct {
	ProgramName string
	Fn          func(ctx context.Context, query string) (*Output, error)
}

func (f Func) Interpret(ctx context.Context, query string) (*Output, error) {
	return f.Fn(ctx, query)
}

func (f Func) Name() string {
	return f.ProgramName
}
