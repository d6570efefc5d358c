package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/framechat/framechat/dataset"
)

// DatasetInfo describes one dataset for prompt construction.
type DatasetInfo struct {
	// Slot is the dfs index the snippet must use for this dataset.
	Slot   int
	Schema dataset.Schema
	Rows   int
}

// Prompt carries everything a Generator needs to produce a snippet.
type Prompt struct {
	// Question is the current user question, verbatim.
	Question string

	// OutputType is the caller's result-type hint, empty for any.
	OutputType string

	// Conversation is the recent exchange history rendered as text,
	// empty on the first turn.
	Conversation string

	// Datasets describes the frames available through the dfs binding.
	Datasets []DatasetInfo

	// Examples are trained question/snippet pairs relevant to the
	// question, most relevant first.
	Examples []QA

	// Docs are trained free-form documents relevant to the question.
	Docs []string

	// Skills lists callable skill signatures with their descriptions.
	Skills []string
}

// String renders the prompt as plain text, suitable for generators that
// talk to a completion-style model endpoint.
func (p Prompt) String() string {
	var b strings.Builder
	b.WriteString("You are given the following datasets, available as dfs[i]:\n")
	for _, d := range p.Datasets {
		if d.Rows > 0 {
			fmt.Fprintf(&b, "dfs[%d] (%d rows):", d.Slot, d.Rows)
		} else {
			fmt.Fprintf(&b, "dfs[%d]:", d.Slot)
		}
		for _, f := range d.Schema {
			fmt.Fprintf(&b, " %s(%s)", f.Name, f.Type)
		}
		b.WriteByte('\n')
	}
	if len(p.Skills) > 0 {
		b.WriteString("\nYou can call these functions:\n")
		for _, s := range p.Skills {
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	for _, d := range p.Docs {
		b.WriteString("\nContext:\n")
		b.WriteString(d)
		b.WriteByte('\n')
	}
	for _, ex := range p.Examples {
		fmt.Fprintf(&b, "\nExample question: %s\nExample code:\n%s\n", ex.Question, ex.Code)
	}
	if p.Conversation != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(p.Conversation)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", p.Question)
	if p.OutputType != "" {
		fmt.Fprintf(&b, "The result type must be %q.\n", p.OutputType)
	}
	b.WriteString("Assign the answer to `result` as a dict with `type` and `value` entries.\n")
	return b.String()
}

// Generator produces snippets from prompts. Implementations wrap a
// model client; tests use canned generators.
//
// Contract:
//   - Generate returns the snippet for a fresh question.
//   - Repair returns a corrected snippet given a failing one and a
//     formatted description of its failure. It is only called when
//     error correction is enabled.
//   - Both must honor ctx cancellation and may be called from
//     concurrent conversations.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	Repair(ctx context.Context, p Prompt, code, traceback string) (string, error)
}

// sanitizeSnippet strips the markdown fences model responses commonly
// wrap code in, leaving the bare snippet.
func sanitizeSnippet(code string) string {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, "```") {
		return code
	}
	code = strings.TrimPrefix(code, "```")
	if i := strings.IndexByte(code, '\n'); i >= 0 {
		// Drop the language tag on the opening fence.
		first := strings.TrimSpace(code[:i])
		if first == "python" || first == "py" || first == "" {
			code = code[i+1:]
		}
	}
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}
