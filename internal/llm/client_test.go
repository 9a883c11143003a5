package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func TestAnthropicClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/messages" {
			t.Errorf("Expected /messages path, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Expected test-key in x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Expected anthropic-version header")
		}

		var body AnthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("Expected single user message, got %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"content": [{"type": "text", "text": "Reticulate counts the splines."}],
			"usage": {"input_tokens": 10, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	defer client.httpClient.CloseIdleConnections()

	resp, err := client.Complete(context.Background(), "document this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp != "Reticulate counts the splines." {
		t.Errorf("Unexpected response: %q", resp)
	}
}

func TestAnthropicClient_RetryOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	client.retryBackoff = 1 * time.Millisecond
	defer client.httpClient.CloseIdleConnections()

	resp, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp != "ok" {
		t.Errorf("Unexpected response: %q", resp)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts (2 retries), got %d", attempts)
	}
}

func TestAnthropicClient_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	client.retryBackoff = 1 * time.Millisecond
	defer client.httpClient.CloseIdleConnections()

	_, err := client.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("Expected max retries error, got: %v", err)
	}
	if attempts != rateLimitAttempts {
		t.Errorf("Expected %d attempts, got %d", rateLimitAttempts, attempts)
	}
}

func TestAnthropicClient_ServerErrorFailsImmediately(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"type": "api_error", "message": "boom"}}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	client.retryBackoff = 1 * time.Millisecond
	defer client.httpClient.CloseIdleConnections()

	_, err := client.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("Expected error on 500")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Expected status 500 in error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected no retries on server error, got %d attempts", attempts)
	}
}

func TestAnthropicClient_ErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "too long"}}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	defer client.httpClient.CloseIdleConnections()

	_, err := client.Complete(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "too long") {
		t.Errorf("Expected API error message, got: %v", err)
	}
}

func TestAnthropicClient_MissingAPIKey(t *testing.T) {
	client := NewAnthropicClient("")

	_, err := client.Complete(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "API key not configured") {
		t.Errorf("Expected missing key error, got: %v", err)
	}
}

func TestAnthropicClient_SetModel(t *testing.T) {
	client := NewAnthropicClient("test-key")

	if client.GetModel() == "" {
		t.Error("Expected default model to be set")
	}

	client.SetModel("claude-sonnet-4-20250514")
	if client.GetModel() != "claude-sonnet-4-20250514" {
		t.Errorf("Expected model override, got %s", client.GetModel())
	}
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions path, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Expected test-key authorization")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices": [{"message": {"content": "Hello, world!"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL
	defer client.httpClient.CloseIdleConnections()

	resp, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp != "Hello, world!" {
		t.Errorf("Unexpected response: %q", resp)
	}
}

func TestOpenAIClient_SystemMessageIncluded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body OpenAIRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(body.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(body.Messages))
		}
		if body.Messages[0].Role != "system" || body.Messages[0].Content != "sys" {
			t.Errorf("Expected leading system message, got %+v", body.Messages[0])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL
	defer client.httpClient.CloseIdleConnections()

	if _, err := client.CompleteWithSystem(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("CompleteWithSystem failed: %v", err)
	}
}

func TestOpenAIClient_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = server.URL
	client.retryBackoff = 1 * time.Millisecond
	defer client.httpClient.CloseIdleConnections()

	_, err := client.Complete(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("Expected max retries error, got: %v", err)
	}
	if attempts != rateLimitAttempts {
		t.Errorf("Expected %d attempts, got %d", rateLimitAttempts, attempts)
	}
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key")
	client.baseURL = server.URL
	defer client.httpClient.CloseIdleConnections()

	_, err := client.Complete(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "no completion returned") {
		t.Errorf("Expected empty completion error, got: %v", err)
	}
}
