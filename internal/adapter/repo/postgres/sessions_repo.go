package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/devmeetai/interview-service/internal/domain"
)

// SessionRepo persists interview sessions. Questions, responses, and the
// summary live in jsonb columns; the current index and status are plain
// columns so the append can compare-and-set on the index.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create inserts a new session and returns its id.
func (r *SessionRepo) Create(ctx domain.Context, s domain.InterviewSession) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	q := `INSERT INTO interview_sessions
	      (id, candidate_id, questions, responses, current_question_index, status, personality, tech_stack, created_at, updated_at)
	      VALUES ($1,$2,$3,'[]'::jsonb,$4,$5,$6,$7,$8,$9)`
	now := time.Now().UTC()
	_, err = r.Pool.Exec(ctx, q, s.ID, s.CandidateID, questions, s.CurrentIndex, s.Status, s.Personality, s.TechStack, now, now)
	if err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return s.ID, nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()
	q := `SELECT id, candidate_id, questions, responses, current_question_index, status,
	             COALESCE(personality,''), tech_stack, summary, created_at, updated_at
	      FROM interview_sessions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var (
		s         domain.InterviewSession
		questions []byte
		responses []byte
		summary   []byte
	)
	if err := row.Scan(&s.ID, &s.CandidateID, &questions, &responses, &s.CurrentIndex, &s.Status,
		&s.Personality, &s.TechStack, &summary, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	if err := json.Unmarshal(questions, &s.Questions); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: questions: %w", err)
	}
	if err := json.Unmarshal(responses, &s.Responses); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: responses: %w", err)
	}
	if len(summary) > 0 {
		var sum domain.SessionSummary
		if err := json.Unmarshal(summary, &sum); err != nil {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: summary: %w", err)
		}
		s.Summary = &sum
	}
	return s, nil
}

// AppendResponse appends one response and advances the index, guarded by a
// compare-and-set on the current index. A stale expectedIndex matches zero
// rows and is reported as ErrConflict.
func (r *SessionRepo) AppendResponse(ctx domain.Context, id string, resp domain.InterviewResponse, expectedIndex int, newStatus domain.SessionStatus) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.AppendResponse")
	defer span.End()
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("op=session.append: %w", err)
	}
	q := `UPDATE interview_sessions
	      SET responses = responses || $2::jsonb,
	          current_question_index = current_question_index + 1,
	          status = $3,
	          updated_at = $4
	      WHERE id=$1 AND current_question_index=$5 AND status <> 'completed'`
	tag, err := r.Pool.Exec(ctx, q, id, payload, newStatus, time.Now().UTC(), expectedIndex)
	if err != nil {
		return fmt.Errorf("op=session.append: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.append: index %d stale: %w", expectedIndex, domain.ErrConflict)
	}
	return nil
}

// SetSummary stores the final summary for a completed session.
func (r *SessionRepo) SetSummary(ctx domain.Context, id string, sum domain.SessionSummary) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.SetSummary")
	defer span.End()
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("op=session.set_summary: %w", err)
	}
	q := `UPDATE interview_sessions SET summary=$2, updated_at=$3 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=session.set_summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.set_summary: %w", domain.ErrNotFound)
	}
	return nil
}
