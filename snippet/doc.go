// Package snippet parses model-generated code snippets into a small
// tagged syntax tree and provides the static analyses the engine runs
// before execution: which dataset slots a snippet references, whether it
// needs the whole dataset collection, and which row-level comparison
// predicates can be pushed down to connectors as materialization filters.
//
// The snippet language is a deliberately small, Python-shaped subset:
// assignments, imports, single-level for loops, method calls, subscripts,
// chained comparisons, arithmetic, and list/dict literals. Anything the
// parser does not recognize is a MalformedSnippetError; the engine never
// executes a snippet it could not parse.
//
// # Analyses
//
//   - [Parse] produces the tree (or a MalformedSnippetError).
//   - [ExtractFilters] returns the slot-to-predicate mapping used for
//     partial data loading.
//   - [NeedsAllFrames] detects the iterate/concat-over-all-frames idiom.
//   - [ReferencedSlots] lists the dataset slots a snippet indexes into.
//
// All analyses are pure functions over the parsed tree.
package snippet
