package metrics

import "strings"

// norm keeps label values lowercase and bounded.
func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
