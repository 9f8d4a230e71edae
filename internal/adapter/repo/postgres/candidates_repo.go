package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/devmeetai/interview-service/internal/domain"
)

// CandidateRepo persists candidate profiles.
type CandidateRepo struct{ Pool PgxPool }

// NewCandidateRepo constructs a CandidateRepo with the given pool.
func NewCandidateRepo(p PgxPool) *CandidateRepo { return &CandidateRepo{Pool: p} }

// Create inserts a candidate and returns its id (generates one if empty).
func (r *CandidateRepo) Create(ctx domain.Context, c domain.CandidateProfile) (string, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Create")
	defer span.End()
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	q := `INSERT INTO candidates (id, name, email, experience_level, skills, position, resume_text, github_username, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.Pool.Exec(ctx, q, id, c.Name, c.Email, c.ExperienceLevel, c.Skills, c.Position, c.ResumeText, c.GitHubUsername, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=candidate.create: %w", err)
	}
	return id, nil
}

// Get loads a candidate by id.
func (r *CandidateRepo) Get(ctx domain.Context, id string) (domain.CandidateProfile, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Get")
	defer span.End()
	q := `SELECT id, name, COALESCE(email,''), experience_level, skills, position, COALESCE(resume_text,''), COALESCE(github_username,''), created_at
	      FROM candidates WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var c domain.CandidateProfile
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.ExperienceLevel, &c.Skills, &c.Position, &c.ResumeText, &c.GitHubUsername, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CandidateProfile{}, fmt.Errorf("op=candidate.get: %w", domain.ErrNotFound)
		}
		return domain.CandidateProfile{}, fmt.Errorf("op=candidate.get: %w", err)
	}
	return c, nil
}
