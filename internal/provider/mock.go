package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider generates simulated responses for testing and demos. With no
// scripted responses it echoes a short acknowledgement of the prompt.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	callCount int
}

// NewMockProvider creates a mock provider with optional scripted responses,
// returned in order and repeated from the start once exhausted.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string { return "mock" }

// DisplayName returns the human-friendly name.
func (p *MockProvider) DisplayName() string { return "Mock (Simulated)" }

// Available always returns true for the mock provider.
func (p *MockProvider) Available() bool { return true }

// Generate returns the next scripted response.
func (p *MockProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.responses) == 0 {
		return fmt.Sprintf("Mock response to: %s", truncateForLog(userPrompt)), nil
	}
	resp := p.responses[p.callCount%len(p.responses)]
	p.callCount++
	return resp, nil
}

// CallCount returns the number of Generate calls served.
func (p *MockProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callCount
}
