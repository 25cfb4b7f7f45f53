package model

import "time"

// TypoIssue is a single correction the provider reported. Position is
// a character index into the original submitted text.
type TypoIssue struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Position    int    `json:"position"`
	Kind        string `json:"issue_type"` // spelling | spacing | grammar | punctuation
	Explanation string `json:"explanation"`
}

// TypoCheckResult stores the outcome of a completed typo check job.
type TypoCheckResult struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	TextHash      string      `json:"original_text_hash"`
	OriginalText  string      `json:"original_text"`
	CorrectedText string      `json:"corrected_text"`
	Issues        []TypoIssue `json:"issues"`
	Provider      string      `json:"provider"`
	CreatedAt     time.Time   `json:"created_at"`
}
