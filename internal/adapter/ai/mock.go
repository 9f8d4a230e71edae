// Package ai provides the deterministic mock AI client used when no provider
// key is configured and in tests.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/devmeetai/interview-service/internal/domain"
)

// MockClient implements domain.AIClient deterministically for offline/dev
// mode. It inspects the system prompt to decide which reply schema to
// produce; the reply content is derived from a stable hash of the user
// prompt so repeated calls agree.
type MockClient struct{}

// NewMockClient constructs a deterministic mock AI client.
func NewMockClient() domain.AIClient { return &MockClient{} }

// ChatJSON returns compact JSON matching the schema implied by the system
// prompt.
func (m *MockClient) ChatJSON(_ domain.Context, systemPrompt, userPrompt string, _ int) (string, error) {
	switch {
	case strings.Contains(systemPrompt, "preparing questions"):
		return m.questions(userPrompt)
	case strings.Contains(systemPrompt, "scoring a single candidate answer"):
		return m.evaluation(userPrompt)
	case strings.Contains(systemPrompt, "final hiring summary"):
		return m.summary(userPrompt)
	}
	return "", fmt.Errorf("%w: unrecognized prompt", domain.ErrInvalidArgument)
}

func (m *MockClient) questions(userPrompt string) (string, error) {
	// Reuse a named topic from the prompt when one stands out.
	topic := "your main programming language"
	if i := strings.Index(userPrompt, "Skills: "); i >= 0 {
		rest := userPrompt[i+len("Skills: "):]
		if j := strings.IndexAny(rest, ",\n"); j > 0 {
			topic = rest[:j]
		}
	}
	qs := []map[string]any{
		{
			"question":   fmt.Sprintf("Walk me through a project where you used %s in production.", topic),
			"type":       "technical",
			"difficulty": "medium",
			"category":   "experience",
			"key_points": []string{"architecture", "trade-offs", "outcome"},
		},
		{
			"question":   "How would you design a rate limiter shared by several API replicas?",
			"type":       "system_design",
			"difficulty": "medium",
			"category":   "design",
			"key_points": []string{"shared state", "consistency", "failure modes"},
		},
		{
			"question":   "Write a function that deduplicates a slice while preserving order.",
			"type":       "coding",
			"difficulty": "easy",
			"category":   "coding",
			"key_points": []string{"complexity", "edge cases"},
		},
		{
			"question":   "Tell me about a time a production incident changed how you work.",
			"type":       "behavioral",
			"difficulty": "medium",
			"category":   "behavioral",
			"key_points": []string{"incident", "learning", "change"},
		},
		{
			"question":   "What does idiomatic error handling look like in your preferred stack?",
			"type":       "technical",
			"difficulty": "medium",
			"category":   "fundamentals",
			"key_points": []string{"errors", "wrapping", "logging"},
		},
	}
	b, err := json.Marshal(qs)
	return string(b), err
}

func (m *MockClient) evaluation(userPrompt string) (string, error) {
	score := 5.0 + float64(hash(userPrompt)%40)/10.0 // 5.0 .. 8.9
	payload := map[string]any{
		"detailedScores": map[string]float64{
			"technical_accuracy": score,
			"problem_solving":    score,
			"communication":      score,
		},
		"overallScore": score,
		"feedback":     "Clear reasoning; consider covering failure modes in more depth.",
	}
	b, err := json.Marshal(payload)
	return string(b), err
}

func (m *MockClient) summary(userPrompt string) (string, error) {
	score := 6.0 + float64(hash(userPrompt)%30)/10.0 // 6.0 .. 8.9
	rec := "no_hire"
	if score > 7 {
		rec = "hire"
	}
	payload := map[string]any{
		"overallScore":   score,
		"strengths":      []string{"consistent technical depth", "structured communication"},
		"weaknesses":     []string{"limited operational war stories"},
		"recommendation": rec,
		"summary":        "The candidate answered consistently across the session.",
	}
	b, err := json.Marshal(payload)
	return string(b), err
}

// hash is a small FNV-1a over the prompt for stable pseudo-variation.
func hash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
