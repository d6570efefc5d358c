// Package sandbox evaluates parsed snippets inside a restricted
// namespace. The namespace is an explicit value object: it contains only
// a whitelist of builtin functions, a whitelist of importable modules,
// the injected dataset frames, any injected skills, and (in direct-SQL
// mode) a query hook. Nothing outside those bindings is reachable from
// snippet code.
//
// Evaluation is a plain tree walk over the snippet AST. A snippet
// produces its answer by assigning to the result variable; a run that
// completes without binding it fails with NoResultFoundError.
package sandbox
