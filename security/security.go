// Package security screens natural-language queries before any code is
// generated or executed. It is a best-effort textual denylist plus an
// optional pluggable policy, not a sandboxing guarantee: it cannot catch
// aliased or indirectly constructed access, and it is not meant to.
package security

import (
	"errors"
	"strings"
)

// ErrMaliciousQuery is the sentinel for queries rejected by the screen.
var ErrMaliciousQuery = errors.New("malicious query")

// MaliciousQueryError reports a query rejected before generation.
type MaliciousQueryError struct {
	// Reason describes which gate tripped.
	Reason string
}

func (e *MaliciousQueryError) Error() string { return e.Reason }

// Is reports whether this error matches ErrMaliciousQuery.
func (e *MaliciousQueryError) Is(target error) bool {
	return target == ErrMaliciousQuery
}

// Policy is an optional externally supplied evaluator. Evaluate returns
// true when the query is unsafe.
type Policy interface {
	Evaluate(query string) (bool, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(query string) (bool, error)

// Evaluate calls f.
func (f PolicyFunc) Evaluate(query string) (bool, error) { return f(query) }

// dangerousFragments are substrings associated with OS or IO module
// access and byte decoding. The surrounding quote, dot, or space
// characters anchor the match to token boundaries so that disguised
// imports are harder to slip past.
var dangerousFragments = []string{
	" os",
	" io",
	".os",
	".io",
	"'os'",
	"'io'",
	`"os"`,
	`"io"`,
	"chr(",
	"chr)",
	"chr ",
	"(chr",
	"b64decode",
}

// Screen applies the denylist and an optional policy to query text.
type Screen struct {
	policy Policy
}

// NewScreen builds a Screen. policy may be nil.
func NewScreen(policy Policy) *Screen {
	return &Screen{policy: policy}
}

// Check inspects the raw query and returns *MaliciousQueryError when
// either gate trips. It never retries and runs before generation.
func (s *Screen) Check(query string) error {
	if ContainsDangerousFragment(query) {
		return &MaliciousQueryError{
			Reason: "the query contains references to io or os modules or b64decode method which can be used to execute or access system resources in unsafe ways",
		}
	}
	if s.policy != nil {
		unsafe, err := s.policy.Evaluate(query)
		if err != nil {
			return err
		}
		if unsafe {
			return &MaliciousQueryError{Reason: "query can result in malicious code"}
		}
	}
	return nil
}

// ContainsDangerousFragment reports whether any denylisted fragment
// occurs in the query. Matching is case-sensitive substring containment.
func ContainsDangerousFragment(query string) bool {
	for _, fragment := range dangerousFragments {
		if strings.Contains(query, fragment) {
			return true
		}
	}
	return false
}
