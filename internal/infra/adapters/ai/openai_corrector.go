// File: internal/infra/adapters/ai/openai_corrector.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"paper-assistant/internal/domain/ports/adapter"
	"paper-assistant/internal/infra/metrics"
)

var _ adapter.Corrector = (*OpenAICorrector)(nil)

// openaiTokenBudget bounds the prompt size; chunks from the splitter stay well
// under this, the check guards direct callers.
const openaiTokenBudget = 100_000

// OpenAICorrector uses the official SDK's Chat Completions surface.
type OpenAICorrector struct {
	client  openai.Client
	model   string
	system  string
	enabled bool
	encoder *tiktoken.Tiktoken
}

func NewOpenAICorrector(apiKey, model, systemPrompt string) *OpenAICorrector {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &OpenAICorrector{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		system:  systemPrompt,
		enabled: apiKey != "",
		encoder: enc,
	}
}

func (o *OpenAICorrector) Name() string { return "openai" }

func (o *OpenAICorrector) Available() bool { return o.enabled }

// CountTokens reports the prompt token count for text, or a rune-based
// estimate when the encoder failed to load.
func (o *OpenAICorrector) CountTokens(text string) int {
	if o.encoder == nil {
		return len([]rune(text)) / 4
	}
	return len(o.encoder.Encode(text, nil, nil))
}

func (o *OpenAICorrector) CheckText(ctx context.Context, text string) (*adapter.CorrectionResult, error) {
	if !o.Available() {
		return nil, errors.New("openai: no api key configured")
	}
	if n := o.CountTokens(text); n > openaiTokenBudget {
		return nil, fmt.Errorf("openai: prompt of %d tokens exceeds budget", n)
	}
	start := time.Now()
	res, err := o.checkText(ctx, text)
	metrics.ObserveCorrectorCall(o.Name(), time.Since(start).Seconds(), err == nil)
	return res, err
}

func (o *OpenAICorrector) checkText(ctx context.Context, text string) (*adapter.CorrectionResult, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.system),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return nil, err
	}
	for _, choice := range resp.Choices {
		if choice.Message.Content != "" {
			return parseCorrection(choice.Message.Content)
		}
	}
	return nil, errors.New("openai: no choice content")
}
