package interviewer

import (
	"fmt"
	"strings"

	"github.com/devmeetai/interview-service/internal/domain"
)

const generationSystemPrompt = `You are an expert technical interviewer preparing questions for a candidate.
Reply with ONLY a JSON array of question objects. Each object has the keys:
"id", "question", "type" (technical|behavioral|situational|coding|system_design),
"difficulty" (easy|medium|hard), "category", "expected_answer",
"key_points" (array of short strings), "follow_up_questions" (array of strings),
"code_snippet" (optional), "time_limit_minutes" (number).
Do not wrap the JSON in markdown fences or add commentary.`

const evaluationSystemPrompt = `You are an expert interviewer scoring a single candidate answer.
Reply with ONLY a JSON object with the keys:
"detailedScores" (object mapping each rubric criterion to a 0-10 number),
"overallScore" (0-10 number), "feedback" (short constructive text),
"followUp" (optional follow-up question text).
Do not wrap the JSON in markdown fences or add commentary.`

const summarySystemPrompt = `You are an expert interviewer writing a final hiring summary.
Reply with ONLY a JSON object with the keys:
"overallScore" (1-10 number), "strengths" (array of up to 3 strings),
"weaknesses" (array of up to 3 strings),
"recommendation" (strong_hire|hire|no_hire|strong_no_hire),
"summary" (a short paragraph).
Do not wrap the JSON in markdown fences or add commentary.`

func buildGenerationPrompt(p GenerateParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d %s interview questions at %s difficulty.\n\n", p.Count, p.Type, p.Difficulty)
	fmt.Fprintf(&b, "Candidate: %s\n", p.Profile.Name)
	fmt.Fprintf(&b, "Position: %s\n", p.Profile.Position)
	fmt.Fprintf(&b, "Experience level: %s\n", p.Profile.ExperienceLevel)
	if len(p.Profile.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(p.Profile.Skills, ", "))
	}
	if len(p.TechStack) > 0 {
		fmt.Fprintf(&b, "Interview tech stack focus: %s\n", strings.Join(p.TechStack, ", "))
	}
	if p.Personality != "" {
		fmt.Fprintf(&b, "Interviewer personality: %s\n", p.Personality)
	}
	if p.Profile.ResumeText != "" {
		fmt.Fprintf(&b, "\nResume excerpt:\n%s\n", truncate(p.Profile.ResumeText, 4000))
	}
	b.WriteString("\nReturn the JSON array now.")
	return b.String()
}

func buildEvaluationPrompt(q domain.InterviewQuestion, response, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question (%s, %s): %s\n", q.Type, q.Difficulty, q.Text)
	if len(q.KeyPoints) > 0 {
		fmt.Fprintf(&b, "Key points expected: %s\n", strings.Join(q.KeyPoints, "; "))
	}
	if len(q.Rubric) > 0 {
		b.WriteString("Rubric:\n")
		for name, c := range q.Rubric {
			fmt.Fprintf(&b, "- %s (weight %.2f): %s\n", name, c.Weight, c.Description)
		}
	}
	if extra != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", extra)
	}
	fmt.Fprintf(&b, "\nCandidate response:\n%s\n", truncate(response, 8000))
	b.WriteString("\nReturn the JSON object now.")
	return b.String()
}

func buildSummaryPrompt(questions []domain.InterviewQuestion, responses []domain.InterviewResponse) string {
	var b strings.Builder
	b.WriteString("Interview transcript with per-answer scores:\n\n")
	for i, r := range responses {
		var qText string
		if i < len(questions) {
			qText = questions[i].Text
		}
		score := "unscored"
		if r.Score != nil {
			score = fmt.Sprintf("%.1f", *r.Score)
		}
		fmt.Fprintf(&b, "Q%d: %s\nAnswer: %s\nScore: %s\n\n", i+1, qText, truncate(r.Text, 2000), score)
	}
	b.WriteString("Return the JSON object now.")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
