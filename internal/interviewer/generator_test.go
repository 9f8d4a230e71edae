package interviewer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/interviewer"
)

// fakeAI returns a canned reply or error for every call.
type fakeAI struct {
	reply     string
	err       error
	gotSystem string
	gotUser   string
	calls     int
}

func (f *fakeAI) ChatJSON(_ domain.Context, systemPrompt, userPrompt string, _ int) (string, error) {
	f.calls++
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	return f.reply, f.err
}

var rubricKeyUniverse = map[string]bool{
	"technical_accuracy": true,
	"problem_solving":    true,
	"communication":      true,
	"code_quality":       true,
	"system_thinking":    true,
}

func TestFallbackQuestions_CountAndRubric(t *testing.T) {
	t.Parallel()
	profile := domain.CandidateProfile{Name: "Ada", Skills: []string{"React"}}

	for _, requested := range []int{1, 3, 5, 8} {
		qs := interviewer.FallbackQuestions(profile, requested)
		want := requested
		if want > 5 {
			want = 5
		}
		require.Len(t, qs, want)
		for _, q := range qs {
			require.NotEmpty(t, q.Rubric)
			for key := range q.Rubric {
				assert.True(t, rubricKeyUniverse[key], "unexpected rubric key %q", key)
			}
		}
	}
}

func TestFallbackQuestions_FirstQuestionUsesLeadingSkill(t *testing.T) {
	t.Parallel()
	qs := interviewer.FallbackQuestions(domain.CandidateProfile{Skills: []string{"React"}}, 5)
	require.NotEmpty(t, qs)
	assert.Contains(t, qs[0].Text, "React")

	// Empty skills silently fall back to a generic phrase.
	qs = interviewer.FallbackQuestions(domain.CandidateProfile{}, 1)
	assert.Contains(t, qs[0].Text, "software development")
}

func TestGenerate_AIPathParsesAndPostProcesses(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: `[
		{"question":"Explain goroutine scheduling.","type":"technical","difficulty":"hard","category":"concurrency","key_points":["scheduler","preemption"]},
		{"question":"Write a function reversing a list.","type":"coding"},
		{"question":"Design a URL shortener.","type":"system_design"}
	]`}
	g := interviewer.NewGenerator(ai, 1024)
	qs := g.Generate(context.Background(), interviewer.GenerateParams{
		Profile: domain.CandidateProfile{Name: "Ada", Position: "Backend Engineer"},
		Type:    domain.QuestionTechnical,
		Count:   3,
	})
	require.Len(t, qs, 3)

	assert.Equal(t, domain.DifficultyHard, qs[0].Difficulty)
	assert.Equal(t, "concurrency", qs[0].Category)
	assert.NotEmpty(t, qs[0].ID)

	// Defaults filled for sparse items.
	assert.Equal(t, domain.DifficultyMedium, qs[1].Difficulty)
	assert.Equal(t, "general", qs[1].Category)
	assert.Contains(t, qs[1].Rubric, "code_quality")
	assert.Contains(t, qs[2].Rubric, "system_thinking")
}

func TestGenerate_WrappedObjectReply(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: `{"questions":[{"question":"What is a channel?","type":"technical"}]}`}
	g := interviewer.NewGenerator(ai, 1024)
	qs := g.Generate(context.Background(), interviewer.GenerateParams{Count: 1})
	require.Len(t, qs, 1)
	assert.Equal(t, "What is a channel?", qs[0].Text)
}

func TestGenerate_TruncatesToRequestedCount(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: `[
		{"question":"q1"},{"question":"q2"},{"question":"q3"},{"question":"q4"}
	]`}
	g := interviewer.NewGenerator(ai, 1024)
	qs := g.Generate(context.Background(), interviewer.GenerateParams{Count: 2})
	assert.Len(t, qs, 2)
}

func TestGenerate_FallsBackOnAIError(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{err: errors.New("provider down")}
	g := interviewer.NewGenerator(ai, 1024)
	qs := g.Generate(context.Background(), interviewer.GenerateParams{
		Profile: domain.CandidateProfile{Skills: []string{"React"}},
		Count:   5,
	})
	require.Len(t, qs, 5)
	assert.Contains(t, qs[0].Text, "React")
}

func TestGenerate_FallsBackOnMalformedReply(t *testing.T) {
	t.Parallel()
	for _, reply := range []string{
		"I cannot produce questions right now.",
		`{"questions":[]}`,
		`[{"type":"technical"}]`, // missing question text
	} {
		ai := &fakeAI{reply: reply}
		g := interviewer.NewGenerator(ai, 1024)
		qs := g.Generate(context.Background(), interviewer.GenerateParams{Count: 3})
		assert.Len(t, qs, 3, "reply %q should degrade to fallback", reply)
	}
}

func TestGenerate_PromptEmbedsProfileAndStack(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: `[{"question":"q"}]`}
	g := interviewer.NewGenerator(ai, 1024)
	g.Generate(context.Background(), interviewer.GenerateParams{
		Profile:     domain.CandidateProfile{Name: "Ada", Position: "Backend Engineer", Skills: []string{"Go", "Postgres"}},
		TechStack:   []string{"Go", "Kubernetes"},
		Personality: "friendly",
		Count:       1,
	})
	assert.Contains(t, ai.gotUser, "Ada")
	assert.Contains(t, ai.gotUser, "Backend Engineer")
	assert.Contains(t, ai.gotUser, "Go, Kubernetes")
	assert.Contains(t, ai.gotUser, "friendly")
}
