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

func scored(v float64) domain.InterviewResponse {
	return domain.InterviewResponse{Text: "answer", Score: &v}
}

func questions(n int) []domain.InterviewQuestion {
	qs := make([]domain.InterviewQuestion, n)
	for i := range qs {
		qs[i] = domain.InterviewQuestion{ID: "q", Text: "question", Type: domain.QuestionTechnical}
	}
	return qs
}

func TestFallbackSummary_UnscoredResponseContributesZero(t *testing.T) {
	t.Parallel()
	// Third response unscored: average = (8 + 7 + 0) / 3 = 5.
	resp := []domain.InterviewResponse{scored(8), scored(7), {Text: "answer"}}
	sum := interviewer.FallbackSummary(questions(3), resp)
	assert.InDelta(t, 5.0, sum.OverallScore, 1e-9)
	assert.Equal(t, domain.NoHire, sum.Recommendation)
}

func TestFallbackSummary_ThresholdPolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		avg  float64
		want domain.Recommendation
	}{
		{7.5, domain.Hire},
		{7.01, domain.Hire},
		{7.0, domain.NoHire}, // strictly greater than 7 is required for hire
		{5.0, domain.NoHire},
		{4.99, domain.StrongNoHire},
		{0, domain.StrongNoHire},
	}
	for _, tt := range tests {
		sum := interviewer.FallbackSummary(questions(1), []domain.InterviewResponse{scored(tt.avg)})
		assert.Equal(t, tt.want, sum.Recommendation, "avg %v", tt.avg)
	}
}

func TestFallbackSummary_NeverStrongHire(t *testing.T) {
	t.Parallel()
	sum := interviewer.FallbackSummary(questions(2), []domain.InterviewResponse{scored(10), scored(10)})
	assert.Equal(t, domain.Hire, sum.Recommendation)
}

func TestFallbackSummary_EmptySession(t *testing.T) {
	t.Parallel()
	sum := interviewer.FallbackSummary(nil, nil)
	assert.Zero(t, sum.OverallScore)
	assert.Equal(t, domain.StrongNoHire, sum.Recommendation)
	assert.NotEmpty(t, sum.Strengths)
	assert.NotEmpty(t, sum.Weaknesses)
}

func TestFallbackSummary_StrengthsAndWeaknessesCappedAtThree(t *testing.T) {
	t.Parallel()
	resp := []domain.InterviewResponse{scored(9), scored(8), scored(9), scored(8), scored(2), scored(3), scored(1), scored(2)}
	sum := interviewer.FallbackSummary(questions(8), resp)
	assert.LessOrEqual(t, len(sum.Strengths), 3)
	assert.LessOrEqual(t, len(sum.Weaknesses), 3)
}

func TestSummarize_AIPath(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: `{"overallScore":8.4,"strengths":["deep Go knowledge","clear communication"],
		"weaknesses":["limited ops exposure"],"recommendation":"hire","summary":"solid candidate"}`}
	s := interviewer.NewSummarizer(ai, 1024)
	sum := s.Summarize(context.Background(), questions(2), []domain.InterviewResponse{scored(8), scored(9)})
	assert.InDelta(t, 8.4, sum.OverallScore, 1e-9)
	assert.Equal(t, domain.Hire, sum.Recommendation)
	assert.Equal(t, "solid candidate", sum.Summary)
}

func TestSummarize_AIScoreClampedIntoOneTen(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: `{"overallScore":99,"recommendation":"strong_hire","summary":"x"}`}
	s := interviewer.NewSummarizer(ai, 1024)
	sum := s.Summarize(context.Background(), questions(1), []domain.InterviewResponse{scored(9)})
	assert.Equal(t, 10.0, sum.OverallScore)
	assert.Equal(t, domain.StrongHire, sum.Recommendation)
}

func TestSummarize_InvalidRecommendationFallsBack(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{reply: `{"overallScore":8,"recommendation":"definitely","summary":"x"}`}
	s := interviewer.NewSummarizer(ai, 1024)
	sum := s.Summarize(context.Background(), questions(2), []domain.InterviewResponse{scored(8), scored(8)})
	// Fallback average of 8 > 7 yields hire.
	assert.Equal(t, domain.Hire, sum.Recommendation)
	assert.InDelta(t, 8.0, sum.OverallScore, 1e-9)
}

func TestSummarize_ProviderErrorFallsBack(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{err: errors.New("down")}
	s := interviewer.NewSummarizer(ai, 1024)
	sum := s.Summarize(context.Background(), questions(3), []domain.InterviewResponse{scored(8), scored(7), {Text: "x"}})
	require.Equal(t, domain.NoHire, sum.Recommendation)
}
