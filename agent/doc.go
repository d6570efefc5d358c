// Package agent is the conversational front end for asking
// natural-language questions over tabular datasets. It owns the full
// turn lifecycle: screening the question, consulting the snippet cache,
// asking an injected [Generator] for code, executing it through the
// engine with retry correction, and remembering the exchange for
// follow-up questions.
//
// # Architecture
//
// An [Agent] composes the other packages in this module:
//
//   - dataset connectors supply schemas and materialized frames
//   - security screens questions before any generation happens
//   - cache maps (data source, schema fingerprints, question) to
//     previously accepted snippets
//   - engine executes snippets with predicate-scoped materialization
//     and the bounded retry-correction loop
//   - skills exposes user-registered functions to snippets
//
// The [Generator] is the only model-facing dependency and is injected,
// so the package works identically with a hosted LLM client or a canned
// generator in tests.
//
// # Conversations
//
// Each Agent carries a conversation identifier and a bounded [Memory]
// of past exchanges; StartNewConversation rotates the identifier and
// clears the memory. Optionally a [VectorStore] holds trained
// question/snippet pairs and documents that are folded into prompts as
// few-shot context.
package agent
