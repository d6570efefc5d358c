// Package engine orchestrates the execution of model-generated snippets
// against materialized datasets. It is the core of the chat-with-data
// flow: given an already screened and generated snippet, it scopes
// dataset materialization using static predicate extraction, executes
// the snippet in a restricted sandbox, validates the declared result
// against the expected output contract, and drives a bounded
// error-correction retry loop.
//
// # Architecture
//
// The package defines one main entry point:
//
//   - [Executor]: runs a snippet through the full
//     materialize-execute-validate cycle, retrying with corrected
//     snippets obtained from an injected repair callback, up to the
//     configured retry budget.
//
// Collaborators are injected as function values and interfaces:
//
//   - [RepairFunc]: produces a replacement snippet from a failing one
//     and its error. Absence disables correction.
//   - [FailureHook]: observability notification on every failed
//     attempt; never alters control flow.
//   - [Logger]: optional best-effort logging.
//
// # Retry Semantics
//
// At most MaxRetries+1 execution attempts occur per invocation. When
// correction is disabled, or the budget is spent, or no repair callback
// was supplied, the original error is returned unchanged so callers see
// the true root cause. Security screening happens upstream and its
// failures never enter this loop.
//
// # Result Convention
//
// Snippets assign their answer to the `result` variable as a dict with
// `type` and `value` entries. The Executor converts that into a typed
// [Result] and checks both the expected output-type hint and the
// internal tag/value consistency.
package engine
