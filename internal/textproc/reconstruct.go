package textproc

import (
	"sort"
	"strings"

	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/adapter"
)

// DefaultTruncationRatio flags an aggregated correction as truncated
// when it is shorter than this fraction of the original. Empirical
// tunable, not a verified invariant.
const DefaultTruncationRatio = 0.5

// Aggregate joins per-chunk correction results back into one result.
// The corrected texts concatenate in chunk order; every issue position
// is re-based by the cumulative length of the ORIGINAL prior chunks so
// all positions live in the original input's coordinate space.
func Aggregate(chunks []string, results []*adapter.CorrectionResult) (string, []model.TypoIssue) {
	var corrected strings.Builder
	var issues []model.TypoIssue

	offset := 0
	for i, res := range results {
		corrected.WriteString(res.CorrectedText)
		for _, issue := range res.Issues {
			issue.Position += offset
			issues = append(issues, issue)
		}
		offset += len(chunks[i])
	}
	return corrected.String(), issues
}

// Truncated reports whether corrected is materially shorter than
// original, which signals the provider returned a diff-style answer
// rather than the full corrected text.
func Truncated(original, corrected string, ratio float64) bool {
	if ratio <= 0 {
		ratio = DefaultTruncationRatio
	}
	if original == "" {
		return false
	}
	return float64(len(corrected)) < float64(len(original))*ratio
}

// Reconstruct rebuilds the corrected text by splicing each issue's
// correction into the original. Issues are applied in descending
// position order, so an applied splice never shifts the offsets of
// issues still to come. When the original snippet no longer sits at
// its recorded offset, the first textual occurrence is used instead;
// snippets that cannot be found at all are skipped.
func Reconstruct(original string, issues []model.TypoIssue) string {
	sorted := make([]model.TypoIssue, len(issues))
	copy(sorted, issues)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})

	out := original
	for _, issue := range sorted {
		if issue.Original == "" {
			continue
		}
		at := issue.Position
		if at < 0 || at+len(issue.Original) > len(out) || out[at:at+len(issue.Original)] != issue.Original {
			at = strings.Index(out, issue.Original)
			if at < 0 {
				continue
			}
		}
		out = out[:at] + issue.Corrected + out[at+len(issue.Original):]
	}
	return out
}
