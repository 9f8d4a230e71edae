package interviewer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/observability"
)

// Evaluation is the scored outcome for a single response.
type Evaluation struct {
	OverallScore   float64            `json:"overall_score"`
	Feedback       string             `json:"feedback"`
	DetailedScores map[string]float64 `json:"detailed_scores"`
	FollowUp       string             `json:"follow_up,omitempty"`
}

// Evaluator scores one candidate answer against a question's rubric, via the
// AI client or the keyword/length heuristic when the AI path fails.
type Evaluator struct {
	AI        domain.AIClient
	MaxTokens int
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(ai domain.AIClient, maxTokens int) *Evaluator {
	return &Evaluator{AI: ai, MaxTokens: maxTokens}
}

// Evaluate never fails: evaluation errors degrade to the heuristic so a live
// interview cannot stall. A predefined follow-up question always wins over an
// AI-synthesized one.
func (e *Evaluator) Evaluate(ctx domain.Context, q domain.InterviewQuestion, response, extra string) Evaluation {
	var ev Evaluation
	if e.AI != nil {
		aiEv, err := e.evaluateAI(ctx, q, response, extra)
		if err == nil {
			ev = aiEv
		} else {
			observability.LoggerFromContext(ctx).Warn("evaluation fell back to heuristic",
				slog.Any("error", err), slog.String("question_id", q.ID))
			observability.FallbacksTotal.WithLabelValues("evaluate").Inc()
			ev = HeuristicEvaluation(q, response)
		}
	} else {
		ev = HeuristicEvaluation(q, response)
	}
	if len(q.FollowUpQuestions) > 0 {
		ev.FollowUp = q.FollowUpQuestions[0]
	}
	observability.ResponseScoreHistogram.Observe(ev.OverallScore)
	return ev
}

// evaluationDTO is the wire shape expected from the AI reply.
type evaluationDTO struct {
	DetailedScores map[string]float64 `json:"detailedScores"`
	OverallScore   *float64           `json:"overallScore"`
	Feedback       string             `json:"feedback"`
	FollowUp       string             `json:"followUp"`
}

func (e *Evaluator) evaluateAI(ctx domain.Context, q domain.InterviewQuestion, response, extra string) (Evaluation, error) {
	out, err := e.AI.ChatJSON(ctx, evaluationSystemPrompt, buildEvaluationPrompt(q, response, extra), e.MaxTokens)
	if err != nil {
		return Evaluation{}, fmt.Errorf("op=evaluator.evaluate: %w", err)
	}
	var dto evaluationDTO
	if err := json.Unmarshal([]byte(CleanJSONReply(out)), &dto); err != nil {
		return Evaluation{}, fmt.Errorf("op=evaluator.decode: %w: %v", domain.ErrSchemaInvalid, err)
	}
	if dto.OverallScore == nil {
		return Evaluation{}, fmt.Errorf("op=evaluator.decode: %w: overallScore missing", domain.ErrSchemaInvalid)
	}
	ev := Evaluation{
		OverallScore:   clamp(*dto.OverallScore, 0, 10),
		Feedback:       dto.Feedback,
		DetailedScores: dto.DetailedScores,
		FollowUp:       dto.FollowUp,
	}
	for name, s := range ev.DetailedScores {
		ev.DetailedScores[name] = clamp(s, 0, 10)
	}
	return ev, nil
}

// HeuristicEvaluation is the deterministic non-AI scoring path: base 5, up to
// 2 points for length, a keyword-overlap bonus proportional to matched key
// points, and a narrow type-specific nudge. The result is clamped to [1,10].
// Detailed scores are an equal split of the overall score across the rubric,
// so tests can assert exact values.
func HeuristicEvaluation(q domain.InterviewQuestion, response string) Evaluation {
	score := 5.0
	if len(response) > 100 {
		score++
	}
	if len(response) > 300 {
		score++
	}

	lower := strings.ToLower(response)
	matched := 0
	for _, kp := range q.KeyPoints {
		if kp != "" && strings.Contains(lower, strings.ToLower(kp)) {
			matched++
		}
	}
	score += 2 * float64(matched) / float64(max(len(q.KeyPoints), 1))

	switch q.Type {
	case domain.QuestionCoding:
		if strings.Contains(lower, "function") {
			score += 0.5
		}
	case domain.QuestionSystemDesign:
		if strings.Contains(lower, "scal") {
			score += 0.5
		}
	}
	score = clamp(score, 1, 10)

	detailed := make(map[string]float64, len(q.Rubric))
	for name := range q.Rubric {
		detailed[name] = score
	}
	return Evaluation{
		OverallScore:   score,
		Feedback:       heuristicFeedback(score, matched, len(q.KeyPoints)),
		DetailedScores: detailed,
	}
}

func heuristicFeedback(score float64, matched, total int) string {
	coverage := ""
	if total > 0 {
		coverage = fmt.Sprintf(" The answer covered %d of %d expected key points.", matched, total)
	}
	switch {
	case score >= 7:
		return "Strong answer with good depth and structure." + coverage
	case score >= 5:
		return "Adequate answer; more detail and concrete examples would strengthen it." + coverage
	default:
		return "The answer needs substantially more depth and specifics." + coverage
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
