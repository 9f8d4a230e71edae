// Package usecase contains application business logic services.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/interviewer"
	"github.com/devmeetai/interview-service/internal/monitoring"
	"github.com/devmeetai/interview-service/internal/observability"
)

// InterviewService orchestrates the session lifecycle: question generation,
// per-response evaluation, the forward-only index, and the final summary.
type InterviewService struct {
	Sessions   domain.SessionRepository
	Candidates domain.CandidateRepository
	Generator  *interviewer.Generator
	Evaluator  *interviewer.Evaluator
	Summarizer *interviewer.Summarizer
	Broadcast  domain.Broadcaster
	Monitor    *monitoring.Collector
}

// NewInterviewService constructs an InterviewService with its dependencies.
func NewInterviewService(
	sessions domain.SessionRepository,
	candidates domain.CandidateRepository,
	gen *interviewer.Generator,
	eval *interviewer.Evaluator,
	sum *interviewer.Summarizer,
	broadcast domain.Broadcaster,
	monitor *monitoring.Collector,
) InterviewService {
	return InterviewService{
		Sessions:   sessions,
		Candidates: candidates,
		Generator:  gen,
		Evaluator:  eval,
		Summarizer: sum,
		Broadcast:  broadcast,
		Monitor:    monitor,
	}
}

// StartParams describes one session-start request.
type StartParams struct {
	CandidateID string
	Type        domain.QuestionType
	Difficulty  domain.Difficulty
	Count       int
	TechStack   []string
	Personality string
}

// Start loads the candidate, generates the question list, and persists a new
// started session at index zero.
func (s InterviewService) Start(ctx domain.Context, p StartParams) (domain.InterviewSession, error) {
	if p.CandidateID == "" {
		return domain.InterviewSession{}, fmt.Errorf("%w: candidate id required", domain.ErrInvalidArgument)
	}
	profile, err := s.Candidates.Get(ctx, p.CandidateID)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.start: %w", err)
	}

	questions := s.Generator.Generate(ctx, interviewer.GenerateParams{
		Profile:     profile,
		Type:        p.Type,
		Difficulty:  p.Difficulty,
		Count:       p.Count,
		TechStack:   p.TechStack,
		Personality: p.Personality,
	})
	if len(questions) == 0 {
		return domain.InterviewSession{}, fmt.Errorf("%w: no questions produced", domain.ErrInternal)
	}

	now := time.Now().UTC()
	sess := domain.InterviewSession{
		ID:          uuid.NewString(),
		CandidateID: profile.ID,
		Questions:   questions,
		Responses:   []domain.InterviewResponse{},
		Status:      domain.SessionStarted,
		Personality: p.Personality,
		TechStack:   p.TechStack,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.Sessions.Create(ctx, sess)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.start: %w", err)
	}
	sess.ID = id

	s.publish(ctx, domain.SessionEvent{
		Type:        domain.EventInterviewStarted,
		SessionID:   sess.ID,
		CandidateID: sess.CandidateID,
		Status:      sess.Status,
		At:          now,
	})
	s.track(domain.EventInterviewStarted, sess, map[string]string{
		"question_count": strconv.Itoa(len(questions)),
	})
	return sess, nil
}

// Get returns a session by id.
func (s InterviewService) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	if id == "" {
		return domain.InterviewSession{}, fmt.Errorf("%w: session id required", domain.ErrInvalidArgument)
	}
	sess, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.get: %w", err)
	}
	return sess, nil
}

// SubmitResult is returned to the client after one accepted response.
type SubmitResult struct {
	Evaluation   interviewer.Evaluation
	NextQuestion *domain.InterviewQuestion
	Status       domain.SessionStatus
	Summary      *domain.SessionSummary
}

// SubmitResponse evaluates one answer and appends it at the session's current
// index. The append is a compare-and-set on that index, so two racing
// submissions for the same question cannot both land: the loser gets
// ErrConflict. Completion triggers the summary.
func (s InterviewService) SubmitResponse(ctx domain.Context, sessionID, responseText string, durationSeconds int) (SubmitResult, error) {
	if sessionID == "" || responseText == "" {
		return SubmitResult{}, fmt.Errorf("%w: session id and response required", domain.ErrInvalidArgument)
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("op=interview.submit: %w", err)
	}
	question, ok := sess.CurrentQuestion()
	if !ok {
		return SubmitResult{}, fmt.Errorf("%w: session %s already completed", domain.ErrConflict, sessionID)
	}

	ev := s.Evaluator.Evaluate(ctx, question, responseText, "")
	resp := domain.InterviewResponse{
		QuestionID:      question.ID,
		Text:            responseText,
		SubmittedAt:     time.Now().UTC(),
		DurationSeconds: durationSeconds,
		Score:           &ev.OverallScore,
		Feedback:        ev.Feedback,
		DetailedScores:  ev.DetailedScores,
	}

	expected := sess.CurrentIndex
	if err := sess.ApplyResponse(resp); err != nil {
		return SubmitResult{}, err
	}
	if err := s.Sessions.AppendResponse(ctx, sess.ID, resp, expected, sess.Status); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			observability.LoggerFromContext(ctx).Warn("concurrent submission rejected",
				slog.String("session_id", sess.ID), slog.Int("expected_index", expected))
		}
		return SubmitResult{}, fmt.Errorf("op=interview.submit: %w", err)
	}

	s.publish(ctx, domain.SessionEvent{
		Type:          domain.EventResponseAccepted,
		SessionID:     sess.ID,
		CandidateID:   sess.CandidateID,
		QuestionIndex: sess.CurrentIndex,
		Status:        sess.Status,
		At:            resp.SubmittedAt,
	})
	s.track(domain.EventResponseAccepted, sess, map[string]string{
		"question_index": strconv.Itoa(expected),
	})

	result := SubmitResult{Evaluation: ev, Status: sess.Status}
	if next, ok := sess.CurrentQuestion(); ok {
		result.NextQuestion = &next
	}
	if sess.Status == domain.SessionCompleted {
		summary := s.Summarizer.Summarize(ctx, sess.Questions, sess.Responses)
		if err := s.Sessions.SetSummary(ctx, sess.ID, summary); err != nil {
			return SubmitResult{}, fmt.Errorf("op=interview.submit: %w", err)
		}
		result.Summary = &summary
		s.publish(ctx, domain.SessionEvent{
			Type:          domain.EventInterviewCompleted,
			SessionID:     sess.ID,
			CandidateID:   sess.CandidateID,
			QuestionIndex: sess.CurrentIndex,
			Status:        sess.Status,
			At:            time.Now().UTC(),
		})
		s.track(domain.EventInterviewCompleted, sess, map[string]string{
			"recommendation": string(summary.Recommendation),
		})
	}
	return result, nil
}

// publish hands an event to the broadcaster. Broadcast failures never fail
// the request; the session record is already consistent.
func (s InterviewService) publish(ctx domain.Context, ev domain.SessionEvent) {
	if s.Broadcast == nil {
		return
	}
	if err := s.Broadcast.PublishSessionEvent(ctx, ev); err != nil {
		observability.LoggerFromContext(ctx).Warn("session event broadcast failed",
			slog.Any("error", err), slog.String("session_id", ev.SessionID))
	}
}

func (s InterviewService) track(name string, sess domain.InterviewSession, props map[string]string) {
	if s.Monitor == nil {
		return
	}
	s.Monitor.TrackEvent(monitoring.AnalyticsEvent{
		Name:       name,
		UserID:     sess.CandidateID,
		SessionID:  sess.ID,
		Properties: props,
	})
}
