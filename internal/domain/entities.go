// Package domain defines the core entities and ports of the interview service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInternal          = errors.New("internal error")
)

// Context aliases context.Context to keep port signatures compact.
type Context = context.Context

// QuestionType enumerates the kinds of interview questions.
type QuestionType string

// Question types understood by the generator and evaluator.
const (
	QuestionTechnical    QuestionType = "technical"
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionSituational  QuestionType = "situational"
	QuestionCoding       QuestionType = "coding"
	QuestionSystemDesign QuestionType = "system_design"
)

// Difficulty enumerates question difficulty levels.
type Difficulty string

// Difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// RubricCriterion is one weighted evaluation criterion.
// Weights are advisory text for the evaluator; nothing enforces they sum to 1.
type RubricCriterion struct {
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Rubric maps criterion names to their weight and description.
type Rubric map[string]RubricCriterion

// InterviewQuestion is a single question presented to a candidate.
type InterviewQuestion struct {
	ID                string       `json:"id"`
	Text              string       `json:"question"`
	Type              QuestionType `json:"type"`
	Difficulty        Difficulty   `json:"difficulty"`
	Category          string       `json:"category"`
	ExpectedAnswer    string       `json:"expected_answer,omitempty"`
	KeyPoints         []string     `json:"key_points,omitempty"`
	FollowUpQuestions []string     `json:"follow_up_questions,omitempty"`
	CodeSnippet       string       `json:"code_snippet,omitempty"`
	TimeLimitMinutes  int          `json:"time_limit_minutes,omitempty"`
	Rubric            Rubric       `json:"rubric"`
}

// InterviewResponse is one candidate answer, scored after evaluation.
// Score is nil until the evaluator has run; DetailedScores mirror the
// question rubric's keys when present.
type InterviewResponse struct {
	QuestionID      string             `json:"question_id"`
	Text            string             `json:"response"`
	SubmittedAt     time.Time          `json:"submitted_at"`
	DurationSeconds int                `json:"duration_seconds,omitempty"`
	Score           *float64           `json:"score,omitempty"`
	Feedback        string             `json:"feedback,omitempty"`
	DetailedScores  map[string]float64 `json:"detailed_scores,omitempty"`
}

// SessionStatus enumerates interview session lifecycle states.
type SessionStatus string

// Session lifecycle states. SessionPaused is reserved: no transition in the
// current state machine produces it.
const (
	SessionStarted    SessionStatus = "started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionPaused     SessionStatus = "paused"
)

// Recommendation is the categorical hiring outcome of a session summary.
type Recommendation string

// Recommendation values. The fallback summarizer never emits StrongHire.
const (
	StrongHire   Recommendation = "strong_hire"
	Hire         Recommendation = "hire"
	NoHire       Recommendation = "no_hire"
	StrongNoHire Recommendation = "strong_no_hire"
)

// ValidRecommendation reports whether r is one of the known outcomes.
func ValidRecommendation(r Recommendation) bool {
	switch r {
	case StrongHire, Hire, NoHire, StrongNoHire:
		return true
	}
	return false
}

// SessionSummary aggregates a completed session into an overall outcome.
type SessionSummary struct {
	OverallScore   float64        `json:"overall_score"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	Recommendation Recommendation `json:"recommendation"`
	Summary        string         `json:"summary"`
}

// InterviewSession tracks one candidate's run through an ordered question
// list. Responses are append-only and forward-only: the index advances by
// exactly one per accepted response and never moves backward.
type InterviewSession struct {
	ID           string              `json:"id"`
	CandidateID  string              `json:"candidate_id"`
	Questions    []InterviewQuestion `json:"questions"`
	Responses    []InterviewResponse `json:"responses"`
	CurrentIndex int                 `json:"current_question_index"`
	Status       SessionStatus       `json:"status"`
	Personality  string              `json:"personality,omitempty"`
	TechStack    []string            `json:"tech_stack,omitempty"`
	Summary      *SessionSummary     `json:"summary,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ApplyResponse appends a response, advances the index, and derives the new
// status. Status flips to completed iff the new index equals the question
// count, otherwise in_progress. Submitting past the last question is a
// conflict.
func (s *InterviewSession) ApplyResponse(r InterviewResponse) error {
	if s.Status == SessionCompleted || s.CurrentIndex >= len(s.Questions) {
		return fmt.Errorf("%w: session %s already completed", ErrConflict, s.ID)
	}
	s.Responses = append(s.Responses, r)
	s.CurrentIndex++
	if s.CurrentIndex == len(s.Questions) {
		s.Status = SessionCompleted
	} else {
		s.Status = SessionInProgress
	}
	return nil
}

// CurrentQuestion returns the question awaiting a response, or false when the
// session is exhausted.
func (s *InterviewSession) CurrentQuestion() (InterviewQuestion, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return InterviewQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// CandidateProfile is the input used to build generation prompts.
type CandidateProfile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	ExperienceLevel string    `json:"experience_level"`
	Skills          []string  `json:"skills"`
	Position        string    `json:"position"`
	ResumeText      string    `json:"resume_text,omitempty"`
	GitHubUsername  string    `json:"github_username,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionEvent is handed to the live-update broadcaster on state transitions.
type SessionEvent struct {
	Type          string        `json:"type"`
	SessionID     string        `json:"session_id"`
	CandidateID   string        `json:"candidate_id"`
	QuestionIndex int           `json:"question_index"`
	Status        SessionStatus `json:"status"`
	At            time.Time     `json:"at"`
}

// Session event types published to observers.
const (
	EventInterviewStarted   = "interview.started"
	EventResponseAccepted   = "response.accepted"
	EventInterviewCompleted = "interview.completed"
)
