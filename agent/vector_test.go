package agent

import (
	"context"
	"testing"
)

func TestMemoryVectorStore_RelevantQA(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryVectorStore()
	err := s.AddQuestionAnswer(ctx, []QA{
		{Question: "total gdp per country", Code: "a"},
		{Question: "average age of customers", Code: "b"},
		{Question: "gdp growth per year", Code: "c"},
	})
	if err != nil {
		t.Fatalf("AddQuestionAnswer() error = %v", err)
	}

	got, err := s.RelevantQA(ctx, "what is the gdp per region?", 2)
	if err != nil {
		t.Fatalf("RelevantQA() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RelevantQA() returned %d pairs, want 2", len(got))
	}
	for _, qa := range got {
		if qa.Code == "b" {
			t.Errorf("unrelated pair %+v ranked as relevant", qa)
		}
	}
}

func TestMemoryVectorStore_NoOverlapReturnsNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryVectorStore()
	if err := s.AddDocs(ctx, []string{"customer churn playbook"}); err != nil {
		t.Fatalf("AddDocs() error = %v", err)
	}
	got, err := s.RelevantDocs(ctx, "weather forecast", 3)
	if err != nil {
		t.Fatalf("RelevantDocs() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("RelevantDocs() = %v, want none", got)
	}
}

func TestMemoryVectorStore_RelevantDocs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryVectorStore()
	if err := s.AddDocs(ctx, []string{"gdp is reported in millions", "shipping rates table"}); err != nil {
		t.Fatalf("AddDocs() error = %v", err)
	}
	got, err := s.RelevantDocs(ctx, "what is the gdp?", 5)
	if err != nil {
		t.Fatalf("RelevantDocs() error = %v", err)
	}
	if len(got) != 1 || got[0] != "gdp is reported in millions" {
		t.Errorf("RelevantDocs() = %v", got)
	}
}
