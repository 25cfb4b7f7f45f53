// File: internal/infra/adapters/ai/gemini_corrector.go
package ai

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"paper-assistant/internal/domain/ports/adapter"
	"paper-assistant/internal/infra/metrics"
)

var _ adapter.Corrector = (*GeminiCorrector)(nil)

// GeminiCorrector uses the official Gemini SDK.
type GeminiCorrector struct {
	client *genai.Client
	model  string
	system string
}

func NewGeminiCorrector(ctx context.Context, apiKey, model, systemPrompt string) (*GeminiCorrector, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if apiKey == "" {
		// kept in the registry as an unavailable provider
		return &GeminiCorrector{model: model, system: systemPrompt}, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiCorrector{client: c, model: model, system: systemPrompt}, nil
}

func (g *GeminiCorrector) Name() string { return "gemini" }

func (g *GeminiCorrector) Available() bool { return g.client != nil }

func (g *GeminiCorrector) CheckText(ctx context.Context, text string) (*adapter.CorrectionResult, error) {
	if !g.Available() {
		return nil, errors.New("gemini: no api key configured")
	}
	start := time.Now()
	res, err := g.checkText(ctx, text)
	metrics.ObserveCorrectorCall(g.Name(), time.Since(start).Seconds(), err == nil)
	return res, err
}

func (g *GeminiCorrector) checkText(ctx context.Context, text string) (*adapter.CorrectionResult, error) {
	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: text}}},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: g.system}}},
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini: empty reply")
	}
	if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
		return parseCorrection(t)
	}
	return nil, errors.New("gemini: no text part in reply")
}
