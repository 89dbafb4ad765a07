package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"care-companion/internal/llm"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// DefaultGenerationTimeout bounds a single model call when no timeout is
// configured.
const DefaultGenerationTimeout = 20 * time.Second

// ChatService turns a composed prompt into a reply through the LLM client.
// It never returns an empty reply: failures and empty output are replaced
// by fixed fallback texts.
type ChatService struct {
	LLM     llm.Client
	Timeout time.Duration
	Logger  *slog.Logger

	duration metric.Float64Histogram
	failures metric.Int64Counter
}

// NewChatService constructs a ChatService.  A zero timeout selects
// DefaultGenerationTimeout.
func NewChatService(client llm.Client, timeout time.Duration, logger *slog.Logger) *ChatService {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := meter()
	duration, _ := m.Float64Histogram("companion.generation.duration",
		metric.WithDescription("Model call duration in milliseconds"),
		metric.WithUnit("ms"))
	failures, _ := m.Int64Counter("companion.generation.failures",
		metric.WithDescription("Model calls replaced by the apology fallback"))
	return &ChatService{
		LLM:      client,
		Timeout:  timeout,
		Logger:   logger,
		duration: duration,
		failures: failures,
	}
}

// Generate sends prompt to the model.  On failure the apology fallback is
// returned together with the error, which callers treat as a soft notice.
// An empty response yields the greeting fallback and a nil error.
func (s *ChatService) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	model := s.LLM.Model()
	span.SetAttributes(attribute.String("llm.model", model), attribute.Int("llm.prompt_chars", len(prompt)))

	start := time.Now()
	resp, err := s.LLM.Complete(ctx, prompt)
	if s.duration != nil {
		s.duration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attribute.String("llm.model", model)))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		if s.failures != nil {
			s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("llm.model", model)))
		}
		s.Logger.Warn("generation failed, using fallback reply", "model", model, "error", err)
		return ApologyFallback, fmt.Errorf("generate: %w", err)
	}
	if strings.TrimSpace(resp) == "" {
		s.Logger.Info("empty model response, using greeting", "model", model)
		return GreetingFallback, nil
	}
	return resp, nil
}
