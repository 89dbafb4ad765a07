package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"care-companion/internal/llm"

	openai "github.com/sashabaranov/go-openai"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOpenAI(t *testing.T, status int, body string, got *chatRequest) *llm.OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		if got != nil {
			if err := json.Unmarshal(b, got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return llm.NewOpenAIClient(cfg, "test-chat", "test-summary")
}

func TestOpenAIClient_Complete_SendsPromptAsUserMessage(t *testing.T) {
	var req chatRequest
	c := newOpenAI(t, http.StatusOK, `{"id":"1","object":"chat.completion","created":1,"model":"test-chat",
		"choices":[{"index":0,"message":{"role":"assistant","content":"Hello dear"},"finish_reason":"stop"}]}`, &req)

	out, err := c.Complete(context.Background(), "User: hi\nCare Companion:")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "Hello dear" {
		t.Fatalf("got %q", out)
	}
	if req.Model != "test-chat" {
		t.Fatalf("model = %q", req.Model)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "User: hi\nCare Companion:" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
}

func TestOpenAIClient_Summarize_UsesSummaryModel(t *testing.T) {
	var req chatRequest
	c := newOpenAI(t, http.StatusOK, `{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`, &req)
	if _, err := c.Summarize(context.Background(), "summarise"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if req.Model != "test-summary" {
		t.Fatalf("model = %q", req.Model)
	}
}

func TestOpenAIClient_NoChoices_ReturnsEmpty(t *testing.T) {
	c := newOpenAI(t, http.StatusOK, `{"choices":[]}`, nil)
	out, err := c.Complete(context.Background(), "hi")
	if err != nil || out != "" {
		t.Fatalf("expected empty text and nil error, got %q, %v", out, err)
	}
}

func TestOpenAIClient_APIError_Propagates(t *testing.T) {
	c := newOpenAI(t, http.StatusBadRequest, `{"error":{"message":"bad request","type":"invalid_request_error"}}`, nil)
	if _, err := c.Complete(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewOpenAIClient_DefaultModels(t *testing.T) {
	c := llm.NewOpenAIClient(openai.DefaultConfig("k"), "", "")
	if c.Model() != llm.DefaultOpenAIModel {
		t.Fatalf("model = %q", c.Model())
	}
}
