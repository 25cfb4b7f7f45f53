// File: internal/infra/adapters/ai/claude_corrector.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"paper-assistant/internal/domain/ports/adapter"
	"paper-assistant/internal/infra/metrics"
)

var _ adapter.Corrector = (*ClaudeCorrector)(nil)

const (
	claudeBaseURL    = "https://api.anthropic.com/v1"
	claudeAPIVersion = "2023-06-01"
	claudeMaxTokens  = 8192
)

// ClaudeCorrector talks to the Anthropic Messages API over plain HTTP.
type ClaudeCorrector struct {
	apiKey string
	base   string
	model  string
	system string
	client *http.Client
}

func NewClaudeCorrector(apiKey, model, systemPrompt string) *ClaudeCorrector {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &ClaudeCorrector{
		apiKey: apiKey,
		base:   claudeBaseURL,
		model:  model,
		system: systemPrompt,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *ClaudeCorrector) Name() string { return "claude" }

func (c *ClaudeCorrector) Available() bool { return c.apiKey != "" }

func (c *ClaudeCorrector) CheckText(ctx context.Context, text string) (*adapter.CorrectionResult, error) {
	if !c.Available() {
		return nil, errors.New("claude: no api key configured")
	}
	start := time.Now()
	res, err := c.checkText(ctx, text)
	metrics.ObserveCorrectorCall(c.Name(), time.Since(start).Seconds(), err == nil)
	return res, err
}

func (c *ClaudeCorrector) checkText(ctx context.Context, text string) (*adapter.CorrectionResult, error) {
	reqBody := struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    string `json:"system"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		System:    c.system,
	}
	reqBody.Messages = append(reqBody.Messages, struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: "user", Content: text})

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/messages", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("claude http %d", resp.StatusCode)
	}

	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	for _, block := range payload.Content {
		if block.Type == "text" && block.Text != "" {
			return parseCorrection(block.Text)
		}
	}
	return nil, errors.New("claude: no text content in reply")
}
