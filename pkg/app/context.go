package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Stdout receives command output, Stderr log and error lines
	Stdout io.Writer
	Stderr io.Writer

	// Common timeouts
	DefaultTimeout time.Duration

	// Progress reporting
	ProgressCallback func(message string, percent int)
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		Context:        context.Background(),
		OutputFormat:   "table",
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		DefaultTimeout: 30 * time.Second,
	}
}

// WithTimeout creates a context with timeout
func (c *Context) WithTimeout(timeout time.Duration) (*Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// WithCancel creates a cancellable context
func (c *Context) WithCancel() (*Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.Context)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// Bounded limits the context to timeout. A zero timeout falls back to
// DefaultTimeout when useDefault is set and otherwise leaves the context
// cancellable only.
func (c *Context) Bounded(timeout time.Duration, useDefault bool) (*Context, context.CancelFunc) {
	if timeout <= 0 && useDefault {
		timeout = c.DefaultTimeout
	}
	if timeout > 0 {
		return c.WithTimeout(timeout)
	}
	return c.WithCancel()
}

// SetProgress sets the progress callback function
func (c *Context) SetProgress(callback func(string, int)) {
	c.ProgressCallback = callback
}

// Progress reports progress if callback is set
func (c *Context) Progress(message string, percent int) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(message, percent)
	}
}

// Log outputs a message based on verbosity settings
func (c *Context) Log(message string) {
	if !c.Quiet && c.Verbose {
		fmt.Fprintln(c.Stderr, message)
	}
}

// Logf formats and logs a message based on verbosity settings
func (c *Context) Logf(format string, args ...any) {
	if !c.Quiet && c.Verbose {
		fmt.Fprintf(c.Stderr, format+"\n", args...)
	}
}

// Error outputs an error message unless quiet
func (c *Context) Error(message string) {
	if !c.Quiet {
		fmt.Fprintln(c.Stderr, "Error:", message)
	}
}

// Trace returns a dictionary trace hook when verbose, nil otherwise
func (c *Context) Trace() func(string) {
	if c.Quiet || !c.Verbose {
		return nil
	}
	return c.Log
}
