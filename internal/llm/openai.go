package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient calls the OpenAI chat completion API.  The composed prompt is
// sent as a single user message.
type OpenAIClient struct {
	client       *openai.Client
	chatModel    string
	summaryModel string
}

// DefaultOpenAIModel is used when no chat model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// NewOpenAIClient constructs an OpenAI-backed client.  An empty chatModel
// falls back to DefaultOpenAIModel and an empty summaryModel to chatModel.
func NewOpenAIClient(cfg openai.ClientConfig, chatModel, summaryModel string) *OpenAIClient {
	if chatModel == "" {
		chatModel = DefaultOpenAIModel
	}
	if summaryModel == "" {
		summaryModel = chatModel
	}
	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		chatModel:    chatModel,
		summaryModel: summaryModel,
	}
}

// Complete returns the model's continuation of prompt.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, c.chatModel, prompt, 0.7)
}

// Summarize generates a short summary using the summary model.
func (c *OpenAIClient) Summarize(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, c.summaryModel, prompt, 0.2)
}

// Model reports the chat model identifier.
func (c *OpenAIClient) Model() string { return c.chatModel }

func (c *OpenAIClient) complete(ctx context.Context, model, prompt string, temperature float32) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
