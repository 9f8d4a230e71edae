package interviewer

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/observability"
)

// Summarizer aggregates a completed session's scored responses into an
// overall outcome, via the AI client or the averaging fallback.
type Summarizer struct {
	AI        domain.AIClient
	MaxTokens int
}

// NewSummarizer constructs a Summarizer.
func NewSummarizer(ai domain.AIClient, maxTokens int) *Summarizer {
	return &Summarizer{AI: ai, MaxTokens: maxTokens}
}

// Summarize never fails; AI and parse errors degrade to the averaging
// fallback.
func (s *Summarizer) Summarize(ctx domain.Context, questions []domain.InterviewQuestion, responses []domain.InterviewResponse) domain.SessionSummary {
	if s.AI != nil {
		sum, err := s.summarizeAI(ctx, questions, responses)
		if err == nil {
			observability.RecommendationsTotal.WithLabelValues(string(sum.Recommendation)).Inc()
			return sum
		}
		observability.LoggerFromContext(ctx).Warn("summary fell back to score averaging", slog.Any("error", err))
		observability.FallbacksTotal.WithLabelValues("summarize").Inc()
	}
	sum := FallbackSummary(questions, responses)
	observability.RecommendationsTotal.WithLabelValues(string(sum.Recommendation)).Inc()
	return sum
}

// summaryDTO is the wire shape expected from the AI reply.
type summaryDTO struct {
	OverallScore   *float64 `json:"overallScore"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Recommendation string   `json:"recommendation"`
	Summary        string   `json:"summary"`
}

func (s *Summarizer) summarizeAI(ctx domain.Context, questions []domain.InterviewQuestion, responses []domain.InterviewResponse) (domain.SessionSummary, error) {
	out, err := s.AI.ChatJSON(ctx, summarySystemPrompt, buildSummaryPrompt(questions, responses), s.MaxTokens)
	if err != nil {
		return domain.SessionSummary{}, fmt.Errorf("op=summarizer.summarize: %w", err)
	}
	var dto summaryDTO
	if err := json.Unmarshal([]byte(CleanJSONReply(out)), &dto); err != nil {
		return domain.SessionSummary{}, fmt.Errorf("op=summarizer.decode: %w: %v", domain.ErrSchemaInvalid, err)
	}
	if dto.OverallScore == nil {
		return domain.SessionSummary{}, fmt.Errorf("op=summarizer.decode: %w: overallScore missing", domain.ErrSchemaInvalid)
	}
	rec := domain.Recommendation(dto.Recommendation)
	if !domain.ValidRecommendation(rec) {
		return domain.SessionSummary{}, fmt.Errorf("op=summarizer.decode: %w: unknown recommendation %q", domain.ErrSchemaInvalid, dto.Recommendation)
	}
	return domain.SessionSummary{
		OverallScore:   clamp(*dto.OverallScore, 1, 10),
		Strengths:      capList(dto.Strengths, 3),
		Weaknesses:     capList(dto.Weaknesses, 3),
		Recommendation: rec,
		Summary:        dto.Summary,
	}, nil
}

// FallbackSummary averages the individually-scored responses. Responses
// without a score contribute 0 to the average, which pulls it down; callers
// rely on that zero-fill behavior, so it is pinned by tests rather than
// "fixed". Policy: three-tier thresholds, average > 7 hire, >= 5 no_hire,
// below strong_no_hire. The fallback never recommends strong_hire.
func FallbackSummary(questions []domain.InterviewQuestion, responses []domain.InterviewResponse) domain.SessionSummary {
	total := 0.0
	for _, r := range responses {
		if r.Score != nil {
			total += *r.Score
		}
	}
	avg := 0.0
	if len(responses) > 0 {
		avg = total / float64(len(responses))
	}

	rec := domain.StrongNoHire
	switch {
	case avg > 7:
		rec = domain.Hire
	case avg >= 5:
		rec = domain.NoHire
	}

	var strengths, weaknesses []string
	for i, r := range responses {
		if r.Score == nil || i >= len(questions) {
			continue
		}
		q := questions[i]
		switch {
		case *r.Score >= 7 && len(strengths) < 3:
			strengths = append(strengths, fmt.Sprintf("Strong %s answer on %q", q.Type, truncate(q.Text, 60)))
		case *r.Score < 5 && len(weaknesses) < 3:
			weaknesses = append(weaknesses, fmt.Sprintf("Weak %s answer on %q", q.Type, truncate(q.Text, 60)))
		}
	}
	if len(strengths) == 0 {
		strengths = []string{"Completed the full interview"}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"No standout gaps identified by heuristic scoring"}
	}

	return domain.SessionSummary{
		OverallScore:   avg,
		Strengths:      strengths,
		Weaknesses:     weaknesses,
		Recommendation: rec,
		Summary:        fmt.Sprintf("Candidate answered %d of %d questions with an average score of %.1f.", len(responses), len(questions), avg),
	}
}

func capList(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
