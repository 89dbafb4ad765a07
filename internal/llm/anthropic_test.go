package llm_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"care-companion/internal/llm"

	"github.com/anthropics/anthropic-sdk-go/option"
)

type fakeTransport struct {
	respStatus int
	respBody   []byte
	body       []byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	f.body = b
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newAnthropic(rt http.RoundTripper) *llm.AnthropicClient {
	return llm.NewAnthropicClient("claude-test",
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
}

func TestAnthropicClient_Complete_JoinsTextBlocks(t *testing.T) {
	fake := &fakeTransport{respStatus: 200, respBody: []byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
		"content":[{"type":"text","text":"Hello"},{"type":"text","text":"there"}],
		"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)}
	c := newAnthropic(fake)

	out, err := c.Complete(context.Background(), "User: hi\nCare Companion:")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "Hello\nthere" {
		t.Fatalf("got %q", out)
	}

	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(fake.body, &req); err != nil {
		t.Fatalf("decode request: %v\nbody=%s", err, fake.body)
	}
	if req.Model != "claude-test" {
		t.Fatalf("model = %q", req.Model)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content[0].Text != "User: hi\nCare Companion:" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
}

func TestAnthropicClient_EmptyContent_ReturnsEmpty(t *testing.T) {
	c := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(`{"id":"m","type":"message","role":"assistant","content":[]}`)})
	out, err := c.Complete(context.Background(), "hi")
	if err != nil || out != "" {
		t.Fatalf("expected empty text and nil error, got %q, %v", out, err)
	}
}

func TestAnthropicClient_HTTPError_Propagates(t *testing.T) {
	c := newAnthropic(&fakeTransport{respStatus: 400, respBody: []byte(`{"type":"error","error":{"type":"invalid_request_error","message":"nope"}}`)})
	if _, err := c.Complete(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}
}
