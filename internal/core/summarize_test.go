package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"care-companion/internal/core"
	"care-companion/pkg"
)

func TestSummarizer_EmptyTranscript_SkipsModel(t *testing.T) {
	f := &fakeLLM{reply: "x"}
	s := core.NewSummarizer(f, time.Second)
	sum, err := s.Summarize(context.Background(), "default", nil)
	if err != nil || sum.Text != core.EmptySummary || sum.Turns != 0 {
		t.Fatalf("got %+v, %v", sum, err)
	}
	if f.calls() != 0 {
		t.Fatal("model called for empty transcript")
	}
}

func TestSummarizer_SendsTranscript(t *testing.T) {
	f := &fakeLLM{reply: "Margaret was cheerful."}
	s := core.NewSummarizer(f, time.Second)
	turns := []pkg.Turn{{Role: pkg.RoleUser, Content: "I took my pills"}, {Role: pkg.RoleAssistant, Content: "Well done"}}
	sum, err := s.Summarize(context.Background(), "default", turns)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sum.Text != "Margaret was cheerful." || sum.Turns != 2 || sum.Session != "default" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	p := f.lastPrompt()
	if !strings.HasPrefix(p, core.SummarizationInstruction) || !strings.Contains(p, "User: I took my pills\nCare Companion: Well done") {
		t.Fatalf("unexpected prompt:\n%s", p)
	}
}

func TestSummarizer_Failure_ReturnsFallback(t *testing.T) {
	s := core.NewSummarizer(&fakeLLM{err: errors.New("down")}, time.Second)
	sum, err := s.Summarize(context.Background(), "default", []pkg.Turn{{Role: pkg.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if sum == nil || sum.Text != core.SummaryFallback {
		t.Fatalf("expected fallback summary, got %+v", sum)
	}
}

func TestCompanion_Summarize_UnknownSession(t *testing.T) {
	f := newFixture(t, &fakeLLM{}, nil)
	if _, err := f.c.Summarize(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}
