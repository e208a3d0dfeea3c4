package services

import (
	"context"
	"sync"
)

// MockLLMService is a mock implementation of LLMService for testing.
type MockLLMService struct {
	GenerateTextFunc func(ctx context.Context, req GenerateRequest) (string, error)

	// Track calls for testing
	GenerateTextCalls []GenerateRequest

	mu sync.Mutex // protects fields above
}

var _ LLMService = (*MockLLMService)(nil)

// NewMockLLMService creates a new mock LLM service.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		GenerateTextCalls: make([]GenerateRequest, 0),
	}
}

// GenerateText mocks text generation. The default behavior returns a canned
// narration string.
func (m *MockLLMService) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateTextCalls = append(m.GenerateTextCalls, req)

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, req)
	}
	return "The wind howls over the ruins as your story continues.", nil
}

// CallCount returns the number of GenerateText calls so far.
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateTextCalls)
}
