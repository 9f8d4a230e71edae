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

// AnalysisRepo caches GitHub analyses keyed by username.
type AnalysisRepo struct{ Pool PgxPool }

// NewAnalysisRepo constructs an AnalysisRepo with the given pool.
func NewAnalysisRepo(p PgxPool) *AnalysisRepo { return &AnalysisRepo{Pool: p} }

// Upsert stores the analysis, replacing any previous one for the username.
func (r *AnalysisRepo) Upsert(ctx domain.Context, a domain.GitHubAnalysis) error {
	tracer := otel.Tracer("repo.analyses")
	ctx, span := tracer.Start(ctx, "analyses.Upsert")
	defer span.End()
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("op=analysis.upsert: %w", err)
	}
	q := `INSERT INTO github_analyses (username, analysis, analyzed_at)
	      VALUES ($1,$2,$3)
	      ON CONFLICT (username) DO UPDATE SET analysis=EXCLUDED.analysis, analyzed_at=EXCLUDED.analyzed_at`
	if _, err := r.Pool.Exec(ctx, q, a.Username, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=analysis.upsert: %w", err)
	}
	return nil
}

// GetByUsername loads the cached analysis for a username.
func (r *AnalysisRepo) GetByUsername(ctx domain.Context, username string) (domain.GitHubAnalysis, error) {
	tracer := otel.Tracer("repo.analyses")
	ctx, span := tracer.Start(ctx, "analyses.GetByUsername")
	defer span.End()
	q := `SELECT analysis FROM github_analyses WHERE username=$1`
	var payload []byte
	if err := r.Pool.QueryRow(ctx, q, username).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GitHubAnalysis{}, fmt.Errorf("op=analysis.get: %w", domain.ErrNotFound)
		}
		return domain.GitHubAnalysis{}, fmt.Errorf("op=analysis.get: %w", err)
	}
	var a domain.GitHubAnalysis
	if err := json.Unmarshal(payload, &a); err != nil {
		return domain.GitHubAnalysis{}, fmt.Errorf("op=analysis.get: %w", err)
	}
	return a, nil
}
