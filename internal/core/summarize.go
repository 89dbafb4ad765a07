package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"care-companion/internal/llm"
	"care-companion/pkg"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Summarizer produces a caregiver-facing recap of a session.
type Summarizer struct {
	LLM     llm.Client
	Timeout time.Duration
}

// NewSummarizer constructs a summariser.
func NewSummarizer(client llm.Client, timeout time.Duration) *Summarizer {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Summarizer{LLM: client, Timeout: timeout}
}

// Summarize recaps the transcript of a session.  When the model call fails
// the fallback summary is returned alongside the error.
func (s *Summarizer) Summarize(ctx context.Context, session string, transcript []pkg.Turn) (*pkg.Summary, error) {
	summary := &pkg.Summary{
		Session:   session,
		Turns:     len(transcript),
		UpdatedAt: time.Now().UTC(),
	}
	if len(transcript) == 0 {
		summary.Text = EmptySummary
		return summary, nil
	}

	ctx, span := tracer.Start(ctx, "summarize")
	defer span.End()
	span.SetAttributes(attribute.Int("session.turns", len(transcript)))

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	prompt := SummarizationInstruction + "\n\n" + FormatTranscript(transcript)
	resp, err := s.LLM.Summarize(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarize failed")
		summary.Text = SummaryFallback
		return summary, fmt.Errorf("summarize %q: %w", session, err)
	}
	if resp = strings.TrimSpace(resp); resp == "" {
		resp = SummaryFallback
	}
	summary.Text = resp
	return summary, nil
}
