package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no Anthropic model is configured.
const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// AnthropicClient calls the Anthropic Messages API.  The API key is read
// from ANTHROPIC_API_KEY by the SDK unless passed as an option.
type AnthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicClient returns a client for model with the given request
// options.
func NewAnthropicClient(model string, opts ...option.RequestOption) *AnthropicClient {
	m := anthropic.Model(model)
	if model == "" {
		m = DefaultAnthropicModel
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     m,
		maxTokens: 1024,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, prompt)
}

func (c *AnthropicClient) Summarize(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, prompt)
}

func (c *AnthropicClient) Model() string { return string(c.model) }

func (c *AnthropicClient) send(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok && tb.Text != "" {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
