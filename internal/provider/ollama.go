package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOllamaHost is the local Ollama endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the model used when none is configured.
	DefaultOllamaModel = "llama3:8b"

	// ollamaTimeout bounds a single chat call.
	ollamaTimeout = 2 * time.Minute

	// maxResponseSize caps the response body (1MB).
	maxResponseSize = 1 << 20
)

// OllamaConfig holds settings for the Ollama provider.
type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// OllamaProvider generates text through a local Ollama chat endpoint.
type OllamaProvider struct {
	host    string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewOllamaProvider creates an Ollama-backed provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	host := strings.TrimRight(cfg.Host, "/")
	if host == "" {
		host = DefaultOllamaHost
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = ollamaTimeout
	}
	return &OllamaProvider{
		host:    host,
		model:   model,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (p *OllamaProvider) Name() string { return "ollama" }

// DisplayName returns the human-friendly name.
func (p *OllamaProvider) DisplayName() string {
	return fmt.Sprintf("Ollama (%s)", p.model)
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// Generate sends the prompts to the Ollama chat API.
func (p *OllamaProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reqBody := ollamaChatRequest{
		Model: p.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Provider: p.Name(), Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Provider: p.Name(), Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Calling Ollama", "host", p.host, "model", p.model, "prompt_len", len(userPrompt))

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &Error{Provider: p.Name(), Message: "chat request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", &Error{Provider: p.Name(), Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Provider: p.Name(), Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncateForLog(string(body)))}
	}

	var chat ollamaChatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return "", &Error{Provider: p.Name(), Message: "failed to decode response", Err: err}
	}
	if chat.Error != "" {
		return "", &Error{Provider: p.Name(), Message: chat.Error}
	}

	return strings.TrimSpace(chat.Message.Content), nil
}

// Available probes the Ollama endpoint with a short TCP dial.
func (p *OllamaProvider) Available() bool {
	addr := strings.TrimPrefix(strings.TrimPrefix(p.host, "http://"), "https://")
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
