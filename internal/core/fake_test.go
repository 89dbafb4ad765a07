package core_test

import (
	"context"
	"sync"
)

// fakeLLM records every prompt and answers with a fixed reply or error.
type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	block   bool
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	block := f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeLLM) Summarize(ctx context.Context, prompt string) (string, error) {
	return f.Complete(ctx, prompt)
}

func (f *fakeLLM) Model() string { return "fake-model" }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}
