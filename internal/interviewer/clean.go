// Package interviewer implements question generation, response evaluation and
// session summarization, each with an AI path and a deterministic fallback.
package interviewer

import "strings"

// CleanJSONReply strips markdown fences and surrounding prose from an LLM
// reply so it can be decoded strictly. Models frequently wrap JSON in
// ```json blocks or prepend a sentence of commentary.
func CleanJSONReply(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	closing := byte('}')
	if s[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(s, closing)
	if end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
