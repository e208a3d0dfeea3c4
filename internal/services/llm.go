package services

import "context"

// FallbackResponse is returned when generation fails after all retries. It is
// written in-character so a degraded round still reads like narration.
const FallbackResponse = "I'm having trouble connecting to my storytelling abilities right now. Please try again."

// GenerateRequest carries one text-generation call to the LLM boundary.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string  // optional
	Temperature  float64 // 0 means provider default
	MaxTokens    int     // 0 means provider default
}

// LLMService defines the interface for interacting with the LLM API.
// Implementations retry transient failures internally and degrade to
// FallbackResponse on exhaustion; callers never see a hard network failure.
type LLMService interface {
	// GenerateText generates a completion for the request.
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}
