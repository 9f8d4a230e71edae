package interviewer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/observability"
)

// maxFallbackQuestions bounds the generic question pool.
const maxFallbackQuestions = 5

// GenerateParams describes one question-generation request.
type GenerateParams struct {
	Profile     domain.CandidateProfile
	Type        domain.QuestionType
	Difficulty  domain.Difficulty
	Count       int
	TechStack   []string
	Personality string
}

// Generator produces interview questions for a candidate profile, via the AI
// client or a fixed fallback pool when the AI path fails.
type Generator struct {
	AI        domain.AIClient
	MaxTokens int
}

// NewGenerator constructs a Generator.
func NewGenerator(ai domain.AIClient, maxTokens int) *Generator {
	return &Generator{AI: ai, MaxTokens: maxTokens}
}

// Generate returns questions for the given parameters. It never fails: a live
// interview must not stall, so any AI or parse error degrades to the fallback
// pool. No retry of the external call is attempted here (the AI client owns
// transport-level retries).
func (g *Generator) Generate(ctx domain.Context, p GenerateParams) []domain.InterviewQuestion {
	if p.Count <= 0 {
		p.Count = maxFallbackQuestions
	}
	if p.Type == "" {
		p.Type = domain.QuestionTechnical
	}
	if p.Difficulty == "" {
		p.Difficulty = domain.DifficultyMedium
	}
	if g.AI != nil {
		qs, err := g.generateAI(ctx, p)
		if err == nil {
			return qs
		}
		observability.LoggerFromContext(ctx).Warn("question generation fell back to static pool",
			slog.Any("error", err), slog.String("candidate_id", p.Profile.ID))
		observability.FallbacksTotal.WithLabelValues("generate").Inc()
	}
	return FallbackQuestions(p.Profile, p.Count)
}

// questionDTO is the wire shape expected from the AI reply.
type questionDTO struct {
	ID                string   `json:"id"`
	Question          string   `json:"question"`
	Type              string   `json:"type"`
	Difficulty        string   `json:"difficulty"`
	Category          string   `json:"category"`
	ExpectedAnswer    string   `json:"expected_answer"`
	KeyPoints         []string `json:"key_points"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	CodeSnippet       string   `json:"code_snippet"`
	TimeLimitMinutes  int      `json:"time_limit_minutes"`
}

func (g *Generator) generateAI(ctx domain.Context, p GenerateParams) ([]domain.InterviewQuestion, error) {
	out, err := g.AI.ChatJSON(ctx, generationSystemPrompt, buildGenerationPrompt(p), g.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("op=generator.generate: %w", err)
	}
	dtos, err := decodeQuestionList(out)
	if err != nil {
		return nil, err
	}
	qs := make([]domain.InterviewQuestion, 0, len(dtos))
	for _, d := range dtos {
		if strings.TrimSpace(d.Question) == "" {
			return nil, fmt.Errorf("op=generator.generate: %w: question text missing", domain.ErrSchemaInvalid)
		}
		qs = append(qs, postProcess(d))
	}
	if len(qs) > p.Count {
		qs = qs[:p.Count]
	}
	return qs, nil
}

// decodeQuestionList accepts either a bare JSON array or an object wrapping
// one under a "questions" key, which some models insist on producing.
func decodeQuestionList(raw string) ([]questionDTO, error) {
	cleaned := CleanJSONReply(raw)
	var dtos []questionDTO
	if err := json.Unmarshal([]byte(cleaned), &dtos); err != nil {
		var wrapper struct {
			Questions []questionDTO `json:"questions"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapper); err2 != nil || len(wrapper.Questions) == 0 {
			return nil, fmt.Errorf("op=generator.decode: %w: %v", domain.ErrSchemaInvalid, err)
		}
		dtos = wrapper.Questions
	}
	if len(dtos) == 0 {
		return nil, fmt.Errorf("op=generator.decode: %w: empty question list", domain.ErrSchemaInvalid)
	}
	return dtos, nil
}

// postProcess fills defaults the external reply is allowed to omit.
func postProcess(d questionDTO) domain.InterviewQuestion {
	q := domain.InterviewQuestion{
		ID:                d.ID,
		Text:              d.Question,
		Type:              domain.QuestionType(d.Type),
		Difficulty:        domain.Difficulty(d.Difficulty),
		Category:          d.Category,
		ExpectedAnswer:    d.ExpectedAnswer,
		KeyPoints:         d.KeyPoints,
		FollowUpQuestions: d.FollowUpQuestions,
		CodeSnippet:       d.CodeSnippet,
		TimeLimitMinutes:  d.TimeLimitMinutes,
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	switch q.Type {
	case domain.QuestionTechnical, domain.QuestionBehavioral, domain.QuestionSituational, domain.QuestionCoding, domain.QuestionSystemDesign:
	default:
		q.Type = domain.QuestionTechnical
	}
	switch q.Difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		q.Difficulty = domain.DifficultyMedium
	}
	if q.Category == "" {
		q.Category = "general"
	}
	if q.TimeLimitMinutes <= 0 {
		q.TimeLimitMinutes = 5
	}
	if len(q.Rubric) == 0 {
		q.Rubric = DefaultRubric(q.Type)
	}
	return q
}

// DefaultRubric synthesizes the weighted rubric for a question type. Coding
// questions carry a code_quality criterion and system-design questions a
// system_thinking criterion, both funded by lowering technical-accuracy and
// communication weight.
func DefaultRubric(t domain.QuestionType) domain.Rubric {
	switch t {
	case domain.QuestionCoding:
		return domain.Rubric{
			"technical_accuracy": {Weight: 0.3, Description: "Correctness of the technical content"},
			"problem_solving":    {Weight: 0.3, Description: "Approach and reasoning"},
			"communication":      {Weight: 0.2, Description: "Clarity of the explanation"},
			"code_quality":       {Weight: 0.2, Description: "Structure and readability of code"},
		}
	case domain.QuestionSystemDesign:
		return domain.Rubric{
			"technical_accuracy": {Weight: 0.3, Description: "Correctness of the technical content"},
			"problem_solving":    {Weight: 0.3, Description: "Approach and reasoning"},
			"communication":      {Weight: 0.2, Description: "Clarity of the explanation"},
			"system_thinking":    {Weight: 0.2, Description: "Trade-offs, scaling and failure modes"},
		}
	default:
		return domain.Rubric{
			"technical_accuracy": {Weight: 0.4, Description: "Correctness of the technical content"},
			"problem_solving":    {Weight: 0.3, Description: "Approach and reasoning"},
			"communication":      {Weight: 0.3, Description: "Clarity of the explanation"},
		}
	}
}

// FallbackQuestions returns up to five hand-written generic questions, the
// first interpolating the candidate's leading skill. An empty skill list
// silently becomes "software development".
func FallbackQuestions(profile domain.CandidateProfile, count int) []domain.InterviewQuestion {
	skill := "software development"
	if len(profile.Skills) > 0 && strings.TrimSpace(profile.Skills[0]) != "" {
		skill = profile.Skills[0]
	}
	pool := []domain.InterviewQuestion{
		{
			Text:      fmt.Sprintf("Tell me about your experience with %s. What is the most substantial thing you have built with it?", skill),
			Type:      domain.QuestionTechnical,
			KeyPoints: []string{"experience", "project", "challenges"},
		},
		{
			Text:      "Describe a challenging technical problem you faced recently. How did you approach it and what was the outcome?",
			Type:      domain.QuestionBehavioral,
			KeyPoints: []string{"problem", "approach", "outcome"},
		},
		{
			Text:      "How do you approach debugging an issue you cannot reproduce locally?",
			Type:      domain.QuestionTechnical,
			KeyPoints: []string{"logs", "hypothesis", "reproduce"},
		},
		{
			Text:      "Tell me about a time you disagreed with a teammate about a technical decision. How was it resolved?",
			Type:      domain.QuestionBehavioral,
			KeyPoints: []string{"disagreement", "communication", "resolution"},
		},
		{
			Text:      "How do you decide what to test in a new feature, and where do you draw the line?",
			Type:      domain.QuestionTechnical,
			KeyPoints: []string{"unit tests", "edge cases", "coverage"},
		},
	}
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]domain.InterviewQuestion, 0, count)
	for i := 0; i < count; i++ {
		q := pool[i]
		q.ID = uuid.New().String()
		q.Difficulty = domain.DifficultyMedium
		q.Category = "general"
		q.TimeLimitMinutes = 5
		q.Rubric = DefaultRubric(q.Type)
		out = append(out, q)
	}
	return out
}
