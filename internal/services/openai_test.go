package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"echoes/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chatCompletion(content string) OpenAIChatResponse {
	return OpenAIChatResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []OpenAIChatChoice{
			{Message: chat.ChatMessage{Role: chat.ChatRoleAgent, Content: content}},
		},
	}
}

func newTestService(t *testing.T, handler http.HandlerFunc) *OpenAIService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service := NewOpenAIService("test-key", "gpt-4o-mini", 0, 0, testLogger())
	service.baseURL = server.URL
	service.retryDelay = time.Millisecond
	return service
}

func TestNewOpenAIService_Defaults(t *testing.T) {
	service := NewOpenAIService("key", "", 0, 0, testLogger())
	if service.modelName != DefaultOpenAIModel {
		t.Errorf("expected default model, got %s", service.modelName)
	}
	if service.temperature != DefaultOpenAITemperature {
		t.Errorf("expected default temperature, got %f", service.temperature)
	}
	if service.maxTokens != DefaultOpenAIMaxTokens {
		t.Errorf("expected default max tokens, got %d", service.maxTokens)
	}
	if service.httpClient == nil {
		t.Error("expected HTTP client to be initialized")
	}
}

func TestGenerateText_ConfiguredGenerationSettings(t *testing.T) {
	var gotReq OpenAIChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(chatCompletion("ok"))
	}))
	t.Cleanup(server.Close)

	service := NewOpenAIService("test-key", "gpt-4o-mini", 0.2, 1500, testLogger())
	service.baseURL = server.URL
	service.retryDelay = time.Millisecond

	// A request that leaves both unset inherits the configured values.
	if _, err := service.GenerateText(context.Background(), GenerateRequest{Prompt: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.Temperature != 0.2 {
		t.Errorf("expected configured temperature, got %f", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 1500 {
		t.Errorf("expected configured max tokens, got %d", gotReq.MaxTokens)
	}

	// Per-request values still win over the configured ones.
	if _, err := service.GenerateText(context.Background(), GenerateRequest{Prompt: "hi", MaxTokens: 2000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.MaxTokens != 2000 {
		t.Errorf("expected request max tokens to win, got %d", gotReq.MaxTokens)
	}
}

func TestGenerateText_Success(t *testing.T) {
	var gotReq OpenAIChatRequest
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatCompletion("The ruins stretch before you."))
	})

	text, err := service.GenerateText(context.Background(), GenerateRequest{
		Prompt:       "describe the ruins",
		SystemPrompt: "You are the Game Master.",
		MaxTokens:    2000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "The ruins stretch before you." {
		t.Errorf("unexpected text %q", text)
	}

	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != chat.ChatRoleSystem {
		t.Errorf("expected system role first, got %s", gotReq.Messages[0].Role)
	}
	if gotReq.MaxTokens != 2000 {
		t.Errorf("expected max tokens passed through, got %d", gotReq.MaxTokens)
	}
	if gotReq.Temperature != DefaultOpenAITemperature {
		t.Errorf("expected default temperature, got %f", gotReq.Temperature)
	}
}

func TestGenerateText_NoSystemPrompt(t *testing.T) {
	var gotReq OpenAIChatRequest
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(chatCompletion("ok"))
	})

	if _, err := service.GenerateText(context.Background(), GenerateRequest{Prompt: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != chat.ChatRoleUser {
		t.Errorf("expected a single user message, got %+v", gotReq.Messages)
	}
}

func TestGenerateText_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(chatCompletion("recovered"))
	})

	text, err := service.GenerateText(context.Background(), GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "recovered" {
		t.Errorf("unexpected text %q", text)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestGenerateText_ExhaustionReturnsFallback(t *testing.T) {
	attempts := 0
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "server error", http.StatusInternalServerError)
	})

	text, err := service.GenerateText(context.Background(), GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("expected nil error on exhaustion, got %v", err)
	}
	if text != FallbackResponse {
		t.Errorf("expected fallback response, got %q", text)
	}
	if attempts != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, attempts)
	}
}

func TestGenerateText_APIErrorPayload(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		resp := OpenAIChatResponse{}
		resp.Error = &struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		}{Message: "model overloaded", Type: "server_error"}
		_ = json.NewEncoder(w).Encode(resp)
	})

	text, err := service.GenerateText(context.Background(), GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("expected nil error on exhaustion, got %v", err)
	}
	if text != FallbackResponse {
		t.Errorf("expected fallback response, got %q", text)
	}
}

func TestGenerateText_ContextCancelledDuringRetry(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	})
	service.retryDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, err := service.GenerateText(ctx, GenerateRequest{Prompt: "hi"}); err == nil {
		t.Fatal("expected error when context is cancelled mid-retry")
	}
}
