package engine

import (
	"context"
	"fmt"

	"github.com/framechat/framechat/sandbox"
	"github.com/framechat/framechat/skills"
)

// RepairFunc asks a code generator for a corrected snippet given the
// failing snippet and a formatted description of its failure. It is
// called once per retry; returning an error abandons the retry loop and
// surfaces the original execution error.
type RepairFunc func(ctx context.Context, code string, traceback string) (string, error)

// FailureHook is invoked on every failed attempt with the snippet that
// failed and a formatted traceback. It is purely observational and must
// not panic; it cannot alter retry behavior.
type FailureHook func(code string, traceback string)

// Config controls Executor behavior. The zero value is usable after
// Validate, which applies defaults.
type Config struct {
	// MaxRetries is the number of correction attempts after the first
	// failure. Total attempts is MaxRetries+1. Must be >= 0.
	MaxRetries int

	// UseErrorCorrection enables the repair loop. When false the first
	// failure is final, regardless of MaxRetries.
	UseErrorCorrection bool

	// EnforceGrouping rejects snippets that reference categorical
	// columns without ever aggregating with groupby.
	EnforceGrouping bool

	// DirectSQL exposes an execute_sql_query builtin backed by the
	// first connector, when that connector supports direct queries.
	DirectSQL bool

	// Repair produces corrected snippets. Required for the retry loop
	// to make progress; when nil and UseErrorCorrection is set, the
	// first failure is final.
	Repair RepairFunc

	// OnFailure, if set, is notified of every failed attempt.
	OnFailure FailureHook

	// Skills makes registered skill handlers callable from snippets.
	// Optional.
	Skills *skills.Manager

	// Environment seeds the sandbox environment builder. When nil a
	// default environment with the standard builtins is created per
	// execution.
	Environment func() *sandbox.Environment

	// Logger receives diagnostic output. Defaults to a no-op logger.
	Logger Logger
}

// Validate checks the configuration and applies defaults. It must be
// called (directly or via New) before the Config is used.
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: MaxRetries must be >= 0, got %d", ErrConfiguration, c.MaxRetries)
	}
	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
	if c.Environment == nil {
		c.Environment = sandbox.NewEnvironment
	}
}
