package agent

import "regexp"

var disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9\s.,?!]`)

// Sanitize strips every character outside the allow-set of letters, digits,
// whitespace and basic punctuation. Defensive normalization against prompt
// injection payloads and control characters; pure, total and idempotent.
func Sanitize(raw string) string {
	return disallowedChars.ReplaceAllString(raw, "")
}
