package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ModelInfo describes the model block the chat endpoint expects.
type ModelInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MaxLength  int    `json:"maxLength"`
	TokenLimit int    `json:"tokenLimit"`
}

// OpenChat posts prompts to an OpenChat-style chat endpoint, which answers
// with the generated text as the raw response body.
type OpenChat struct {
	url        string
	model      ModelInfo
	httpClient *http.Client
	Stats      *LLMStats
}

func NewOpenChat(url string, model ModelInfo, timeout time.Duration) *OpenChat {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenChat{
		url:   url,
		model: model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewLLMStats(time.Hour),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       ModelInfo     `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Key         string        `json:"key"`
	Prompt      string        `json:"prompt"`
	Temperature float64       `json:"temperature"`
}

// Generate sends one user message and returns the generated text.
func (c *OpenChat) Generate(ctx context.Context, req Request) (string, error) {
	model := c.model
	if req.MaxLength > 0 {
		model.MaxLength = req.MaxLength
	}
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Prompt:      " ",
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.Stats.Record(time.Since(start).Milliseconds(), false)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	c.Stats.Record(time.Since(start).Milliseconds(), err == nil && resp.StatusCode == http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	text := strings.TrimSpace(string(respBody))
	if text == "" {
		return "", fmt.Errorf("empty response from chat api")
	}
	return text, nil
}

// Model returns the configured model name.
func (c *OpenChat) Model() string {
	return c.model.Name
}

// Close releases resources.
func (c *OpenChat) Close() {
	c.httpClient.CloseIdleConnections()
}
