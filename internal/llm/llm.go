// Package llm wraps the hosted text-generation APIs behind a single
// prompt-in, text-out interface.
package llm

import "context"

// Client is the generation boundary used by the chat pipeline and the
// summariser.  Implementations return an empty string (and nil error) when
// the API answers without any text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Summarize(ctx context.Context, prompt string) (string, error)
	Model() string
}
