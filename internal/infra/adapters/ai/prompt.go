// File: internal/infra/adapters/ai/prompt.go
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/adapter"
)

// DefaultSystemPrompt instructs providers to return a strict JSON document.
// Keep the schema in sync with parseCorrection below.
const DefaultSystemPrompt = `You are a proofreading assistant. Find typos, spelling mistakes and
grammatical errors in the user's text and correct them. Preserve the original wording, formatting
and line breaks everywhere else. Respond with ONLY a JSON object, no prose, in this exact shape:

{
  "corrected_text": "<the full corrected text>",
  "issues": [
    {
      "original": "<the misspelled fragment>",
      "corrected": "<the fixed fragment>",
      "position": <0-based character offset of the fragment in the input>,
      "issue_type": "<spelling|grammar|punctuation>",
      "explanation": "<one short sentence>"
    }
  ]
}

If the text has no issues, return the text unchanged with an empty issues array.`

type correctionPayload struct {
	CorrectedText string            `json:"corrected_text"`
	Issues        []model.TypoIssue `json:"issues"`
}

// parseCorrection decodes a provider reply into a CorrectionResult. Models
// routinely wrap JSON in markdown fences despite instructions, so fences are
// stripped before decoding. A reply that is not valid JSON after stripping is
// a malformed result, not a transient failure.
func parseCorrection(raw string) (*adapter.CorrectionResult, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty reply", domain.ErrMalformedResult)
	}
	var payload correctionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
	}
	if payload.CorrectedText == "" {
		return nil, fmt.Errorf("%w: missing corrected_text", domain.ErrMalformedResult)
	}
	return &adapter.CorrectionResult{
		CorrectedText: payload.CorrectedText,
		Issues:        payload.Issues,
	}, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 8 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
