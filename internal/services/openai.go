package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"echoes/pkg/chat"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"

	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultOpenAITemperature = 0.7
	DefaultOpenAIMaxTokens   = 500

	// Bounded retry: 3 attempts total, backoff starts at 2s and doubles.
	maxAttempts       = 3
	initialRetryDelay = 2 * time.Second
)

// OpenAIService implements LLMService against the OpenAI chat completions API.
type OpenAIService struct {
	apiKey      string
	modelName   string
	baseURL     string
	temperature float64
	maxTokens   int
	retryDelay  time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ LLMService = (*OpenAIService)(nil)

// OpenAIChatRequest is the chat completions request payload.
type OpenAIChatRequest struct {
	Model       string             `json:"model"`
	Messages    []chat.ChatMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

// OpenAIChatChoice is a single choice in the chat completions response.
type OpenAIChatChoice struct {
	Index        int              `json:"index"`
	Message      chat.ChatMessage `json:"message"`
	FinishReason string           `json:"finish_reason"`
}

// OpenAIChatResponse is the chat completions response payload.
type OpenAIChatResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []OpenAIChatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenAIService creates a new OpenAI chat completions service. Zero
// temperature and maxTokens fall back to the package defaults.
func NewOpenAIService(apiKey, modelName string, temperature float64, maxTokens int, logger *slog.Logger) *OpenAIService {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	if temperature == 0 {
		temperature = DefaultOpenAITemperature
	}
	if maxTokens == 0 {
		maxTokens = DefaultOpenAIMaxTokens
	}
	return &OpenAIService{
		apiKey:      apiKey,
		modelName:   modelName,
		baseURL:     openAIBaseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		retryDelay:  initialRetryDelay,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		logger: logger,
	}
}

// GenerateText generates a completion, retrying transient failures with
// exponential backoff. On exhaustion it returns FallbackResponse with a nil
// error so a degraded round can still complete.
func (s *OpenAIService) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	var messages []chat.ChatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: req.Prompt})

	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = s.maxTokens
	}

	payload := OpenAIChatRequest{
		Model:       s.modelName,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	retryDelay := s.retryDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := s.complete(ctx, payload)
		if err == nil {
			return text, nil
		}

		if attempt < maxAttempts {
			s.logger.Warn("Generation attempt failed, retrying",
				"attempt", attempt, "retry_delay", retryDelay, "error", err)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
			continue
		}

		s.logger.Error("Generation failed after all attempts",
			"attempts", maxAttempts, "error", err)
	}

	return FallbackResponse, nil
}

func (s *OpenAIService) complete(ctx context.Context, payload OpenAIChatRequest) (string, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp OpenAIChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}
