package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/framechat/framechat/dataset"
	"github.com/framechat/framechat/sandbox"
	"github.com/framechat/framechat/snippet"
)

const tracerName = "github.com/framechat/framechat/engine"

// Executor runs snippets through the materialize-execute-validate
// cycle with bounded error correction. Create one with New; it is safe
// for concurrent use as long as the injected callbacks are.
type Executor struct {
	cfg Config
}

// New validates cfg and returns an Executor.
func New(cfg Config) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Executor{cfg: cfg}, nil
}

// Execute runs code against the given connectors and returns the
// validated result together with the snippet that ultimately produced
// it (the original, or the last repaired version). outputType is an
// optional hint ("number", "dataframe", "plot", "string"); empty means
// any result type is accepted.
//
// On failure the error of the first attempt's root cause chain is
// preserved: repairs that fail or exhaust the retry budget surface the
// execution error, never a wrapper invented by the loop.
func (e *Executor) Execute(ctx context.Context, code string, conns []dataset.Connector, outputType string) (Result, string, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "engine.execute")
	span.SetAttributes(
		attribute.Int("engine.max_retries", e.cfg.MaxRetries),
		attribute.Int("engine.connectors", len(conns)),
		attribute.Bool("engine.error_correction", e.cfg.UseErrorCorrection),
	)
	defer span.End()

	retryCount := 0
	for {
		res, err := e.attempt(ctx, code, conns, outputType, retryCount)
		if err == nil {
			span.SetAttributes(attribute.Int("engine.attempts", retryCount+1))
			return res, code, nil
		}

		traceback := formatTraceback(code, err)
		e.cfg.Logger.Logf("snippet attempt %d failed: %v", retryCount+1, err)
		span.RecordError(err)
		if e.cfg.OnFailure != nil {
			e.cfg.OnFailure(code, traceback)
		}

		if !e.cfg.UseErrorCorrection || retryCount >= e.cfg.MaxRetries || e.cfg.Repair == nil {
			span.SetStatus(codes.Error, "snippet execution failed")
			return Result{}, code, err
		}
		retryCount++

		repaired, rerr := e.cfg.Repair(ctx, code, traceback)
		if rerr != nil {
			e.cfg.Logger.Logf("snippet repair failed: %v", rerr)
			span.SetStatus(codes.Error, "snippet repair failed")
			return Result{}, code, err
		}
		code = repaired
	}
}

// attempt runs a single execution pass: grouping enforcement, parse,
// predicate extraction, scoped materialization, sandbox execution, and
// result validation.
func (e *Executor) attempt(ctx context.Context, code string, conns []dataset.Connector, outputType string, attempt int) (Result, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "engine.attempt")
	span.SetAttributes(attribute.Int("engine.attempt", attempt))
	defer span.End()

	if e.cfg.EnforceGrouping {
		if err := checkGrouping(code, conns); err != nil {
			span.RecordError(err)
			return Result{}, err
		}
	}

	prog, err := snippet.Parse(code)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	frames, err := e.materialize(ctx, prog, conns)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	env := e.cfg.Environment()
	env.Bind(snippet.FramesBinding, frames)
	if len(frames) == 1 {
		env.Bind(snippet.FrameBinding, frames[0])
	}
	if e.cfg.DirectSQL && len(conns) > 0 {
		if dq, ok := conns[0].(dataset.DirectQuerier); ok {
			env.Bind("execute_sql_query", directQueryBuiltin(ctx, dq))
		}
	}
	e.bindSkills(ctx, prog, env)

	value, err := sandbox.Execute(ctx, prog, env)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	res, err := resultFromValue(value)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	if err := ValidateOutputType(outputType, res); err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	if err := ValidateResult(res); err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	span.SetAttributes(attribute.String("engine.result_type", string(res.Type)))
	return res, nil
}

// materialize loads the frames the snippet actually uses, pushing
// statically extracted predicates into each connector first. Slots the
// snippet never references stay nil so connectors are not queried for
// data the snippet will not touch. Predicate extraction is best effort:
// when it fails the attempt degrades to materializing every connector
// unfiltered rather than failing the snippet.
func (e *Executor) materialize(ctx context.Context, prog *snippet.Program, conns []dataset.Connector) ([]any, error) {
	filters, ferr := snippet.ExtractFilters(prog)
	if ferr != nil {
		e.cfg.Logger.Logf("predicate extraction failed, materializing unfiltered: %v", ferr)
		filters = nil
	}

	var required []bool
	if ferr != nil || snippet.NeedsAllFrames(prog) {
		required = make([]bool, len(conns))
		for i := range required {
			required[i] = true
		}
	} else {
		required = snippet.ReferencedSlots(prog, len(conns))
	}

	frames := make([]any, len(conns))
	for i, conn := range conns {
		if !required[i] {
			continue
		}
		conn.ApplyFilters(filters[i])
		f, err := conn.Materialize(ctx)
		if err != nil {
			return nil, fmt.Errorf("materializing dataset %d: %w", i, err)
		}
		frames[i] = f
	}
	return frames, nil
}

// bindSkills exposes registered skill handlers under their names for
// any skill the snippet calls, and records the usage.
func (e *Executor) bindSkills(ctx context.Context, prog *snippet.Program, env *sandbox.Environment) {
	mgr := e.cfg.Skills
	if mgr == nil {
		return
	}
	prog.Walk(func(n *snippet.Node) {
		if n.Kind != snippet.KindCall || n.X == nil || n.X.Kind != snippet.KindName {
			return
		}
		name := n.X.Name
		sk, err := mgr.Get(name)
		if err != nil {
			return
		}
		mgr.MarkUsed(name)
		env.Bind(name, sandbox.Builtin(func(args []any) (any, error) {
			return sk.Handler(ctx, args)
		}))
	})
}

// directQueryBuiltin adapts a connector's direct query support into a
// snippet-callable function taking a single SQL string.
func directQueryBuiltin(ctx context.Context, dq dataset.DirectQuerier) sandbox.Builtin {
	return func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("execute_sql_query takes exactly one argument, got %d", len(args))
		}
		query, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("execute_sql_query argument must be a string, got %T", args[0])
		}
		return dq.ExecuteDirectQuery(ctx, query)
	}
}

// checkGrouping rejects snippets that mention categorical columns as
// quoted literals but never call groupby. Listing the offending columns
// gives the repair callback something concrete to correct.
func checkGrouping(code string, conns []dataset.Connector) error {
	if strings.Contains(code, ".groupby") {
		return nil
	}
	var offending []string
	seen := map[string]bool{}
	for _, conn := range conns {
		for _, field := range conn.Schema() {
			if field.Type != dataset.Object || seen[field.Name] {
				continue
			}
			if strings.Contains(code, "'"+field.Name+"'") || strings.Contains(code, `"`+field.Name+`"`) {
				seen[field.Name] = true
				offending = append(offending, field.Name)
			}
		}
	}
	if len(offending) == 0 {
		return nil
	}
	return &MissingGroupingError{Columns: offending}
}

// formatTraceback renders an execution failure for the repair callback:
// the full error chain, innermost cause last, followed by the snippet
// that produced it.
func formatTraceback(code string, err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		b.WriteString("\ncaused by: ")
		b.WriteString(cause.Error())
	}
	b.WriteString("\n\nCode:\n")
	b.WriteString(code)
	return b.String()
}
