package agent

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/framechat/framechat/cache"
)

// QA is one trained question/snippet pair.
type QA struct {
	Question string
	Code     string
}

// VectorStore holds trained context for prompt construction.
//
// Contract:
//   - AddQuestionAnswer and AddDocs append training material.
//   - RelevantQA and RelevantDocs return at most n entries ranked most
//     relevant to the question first; fewer or none when the store has
//     nothing useful.
//   - Implementations must be safe for concurrent use.
type VectorStore interface {
	AddQuestionAnswer(ctx context.Context, pairs []QA) error
	AddDocs(ctx context.Context, docs []string) error
	RelevantQA(ctx context.Context, question string, n int) ([]QA, error)
	RelevantDocs(ctx context.Context, question string, n int) ([]string, error)
}

// MemoryVectorStore is an in-process VectorStore ranking by token
// overlap with the normalized question. It is the default for tests and
// single-process agents; production deployments can inject a store
// backed by a real embedding database.
type MemoryVectorStore struct {
	mu    sync.RWMutex
	pairs []QA
	docs  []string
}

// NewMemoryVectorStore creates an empty store.
func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{}
}

// AddQuestionAnswer appends trained pairs.
func (s *MemoryVectorStore) AddQuestionAnswer(ctx context.Context, pairs []QA) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs = append(s.pairs, pairs...)
	return nil
}

// AddDocs appends trained documents.
func (s *MemoryVectorStore) AddDocs(ctx context.Context, docs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	return nil
}

// RelevantQA returns up to n trained pairs ranked by token overlap with
// the question.
func (s *MemoryVectorStore) RelevantQA(ctx context.Context, question string, n int) ([]QA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranked := rank(question, len(s.pairs), func(i int) string { return s.pairs[i].Question })
	out := make([]QA, 0, n)
	for _, i := range ranked {
		if len(out) == n {
			break
		}
		out = append(out, s.pairs[i])
	}
	return out, nil
}

// RelevantDocs returns up to n trained documents ranked by token
// overlap with the question.
func (s *MemoryVectorStore) RelevantDocs(ctx context.Context, question string, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranked := rank(question, len(s.docs), func(i int) string { return s.docs[i] })
	out := make([]string, 0, n)
	for _, i := range ranked {
		if len(out) == n {
			break
		}
		out = append(out, s.docs[i])
	}
	return out, nil
}

// rank orders candidate indices by descending token overlap with the
// question, dropping candidates with no overlap at all.
func rank(question string, count int, text func(int) string) []int {
	qTokens := tokenSet(question)
	type scored struct {
		idx   int
		score int
	}
	var hits []scored
	for i := 0; i < count; i++ {
		score := 0
		for tok := range tokenSet(text(i)) {
			if qTokens[tok] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{idx: i, score: score})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.idx
	}
	return out
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(cache.NormalizeQuestion(s)) {
		set[tok] = true
	}
	return set
}
