package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/devmeetai/interview-service/internal/config"
	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/interviewer"
	"github.com/devmeetai/interview-service/internal/monitoring"
	"github.com/devmeetai/interview-service/internal/usecase"
	"github.com/devmeetai/interview-service/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Interviews  usecase.InterviewService
	Analyses    usecase.AnalysisService
	Generator   *interviewer.Generator
	Candidates  domain.CandidateRepository
	Monitor     *monitoring.Collector
	DBCheck     func(ctx context.Context) error
	RedisCheck  func(ctx context.Context) error
	AICheck     func(ctx context.Context) error
	GitHubCheck func(ctx context.Context) error
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// decodeValid decodes a JSON body into req and runs struct validation.
// The body is capped at 1MB.
func decodeValid(w http.ResponseWriter, r *http.Request, req any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if err := getValidator().Struct(req); err != nil {
		verrs := map[string]string{}
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

type createCandidateRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Email           string   `json:"email" validate:"omitempty,email"`
	ExperienceLevel string   `json:"experience_level" validate:"required,oneof=junior mid senior staff"`
	Skills          []string `json:"skills" validate:"required,min=1,dive,max=100"`
	Position        string   `json:"position" validate:"required,max=200"`
	ResumeText      string   `json:"resume_text" validate:"omitempty,max=50000"`
	GitHubUsername  string   `json:"github_username" validate:"omitempty,max=100"`
}

// CreateCandidateHandler stores a candidate profile for later sessions.
func (s *Server) CreateCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCandidateRequest
		if !decodeValid(w, r, &req) {
			return
		}
		id, err := s.Candidates.Create(r.Context(), domain.CandidateProfile{
			Name:            req.Name,
			Email:           req.Email,
			ExperienceLevel: req.ExperienceLevel,
			Skills:          req.Skills,
			Position:        req.Position,
			ResumeText:      textx.SanitizeText(req.ResumeText),
			GitHubUsername:  req.GitHubUsername,
			CreatedAt:       time.Now().UTC(),
		})
		if err != nil {
			writeError(w, r, fmt.Errorf("candidate create: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

type startInterviewRequest struct {
	CandidateID   string   `json:"candidate_id" validate:"required,max=100"`
	InterviewType string   `json:"interview_type" validate:"omitempty,oneof=technical behavioral situational coding system_design"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionCount int      `json:"question_count" validate:"omitempty,min=1"`
	TechStack     []string `json:"tech_stack" validate:"omitempty,dive,max=100"`
	Personality   string   `json:"personality" validate:"omitempty,max=100"`
}

// StartInterviewHandler creates a new session for a candidate.
func (s *Server) StartInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startInterviewRequest
		if !decodeValid(w, r, &req) {
			return
		}
		if req.QuestionCount > s.Cfg.MaxQuestionCount {
			writeError(w, r, fmt.Errorf("%w: question_count above limit %d", domain.ErrInvalidArgument, s.Cfg.MaxQuestionCount), nil)
			return
		}
		count := req.QuestionCount
		if count == 0 {
			count = s.Cfg.DefaultQuestionCount
		}
		sess, err := s.Interviews.Start(r.Context(), usecase.StartParams{
			CandidateID: req.CandidateID,
			Type:        domain.QuestionType(req.InterviewType),
			Difficulty:  domain.Difficulty(req.Difficulty),
			Count:       count,
			TechStack:   req.TechStack,
			Personality: req.Personality,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

// GetInterviewHandler returns the current session state.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, err := s.Interviews.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

type submitResponseRequest struct {
	Response        string `json:"response" validate:"required,max=20000"`
	DurationSeconds int    `json:"duration_seconds" validate:"omitempty,min=0"`
}

type submitResponseReply struct {
	Evaluation   interviewer.Evaluation    `json:"evaluation"`
	NextQuestion *domain.InterviewQuestion `json:"next_question,omitempty"`
	Status       domain.SessionStatus      `json:"status"`
	Summary      *domain.SessionSummary    `json:"summary,omitempty"`
}

// SubmitResponseHandler evaluates one answer and advances the session.
func (s *Server) SubmitResponseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req submitResponseRequest
		if !decodeValid(w, r, &req) {
			return
		}
		res, err := s.Interviews.SubmitResponse(r.Context(), id, textx.SanitizeText(req.Response), req.DurationSeconds)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, submitResponseReply{
			Evaluation:   res.Evaluation,
			NextQuestion: res.NextQuestion,
			Status:       res.Status,
			Summary:      res.Summary,
		})
	}
}

type generateQuestionsRequest struct {
	Profile       createCandidateRequest `json:"profile" validate:"required"`
	InterviewType string                 `json:"interview_type" validate:"omitempty,oneof=technical behavioral situational coding system_design"`
	Difficulty    string                 `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Count         int                    `json:"count" validate:"omitempty,min=1"`
}

// GenerateQuestionsHandler produces questions for an ad-hoc profile payload
// without creating a session.
func (s *Server) GenerateQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateQuestionsRequest
		if !decodeValid(w, r, &req) {
			return
		}
		if req.Count > s.Cfg.MaxQuestionCount {
			writeError(w, r, fmt.Errorf("%w: count above limit %d", domain.ErrInvalidArgument, s.Cfg.MaxQuestionCount), nil)
			return
		}
		count := req.Count
		if count == 0 {
			count = s.Cfg.DefaultQuestionCount
		}
		questions := s.Generator.Generate(r.Context(), interviewer.GenerateParams{
			Profile: domain.CandidateProfile{
				Name:            req.Profile.Name,
				ExperienceLevel: req.Profile.ExperienceLevel,
				Skills:          req.Profile.Skills,
				Position:        req.Profile.Position,
				ResumeText:      textx.SanitizeText(req.Profile.ResumeText),
			},
			Type:       domain.QuestionType(req.InterviewType),
			Difficulty: domain.Difficulty(req.Difficulty),
			Count:      count,
		})
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
	}
}

type analyzeGitHubRequest struct {
	Username string `json:"username" validate:"required,max=100"`
}

// AnalyzeGitHubHandler runs a fresh analysis for a username.
func (s *Server) AnalyzeGitHubHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeGitHubRequest
		if !decodeValid(w, r, &req) {
			return
		}
		a, err := s.Analyses.Analyze(r.Context(), req.Username)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GetAnalysisHandler returns the cached analysis for a username.
func (s *Server) GetAnalysisHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		a, err := s.Analyses.Cached(r.Context(), username)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// ReadyzHandler probes DB, Redis, the AI backend, and the code host.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name string
			fn   func(context.Context) error
		}{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
			{"ai", s.AICheck},
			{"github", s.GitHubCheck},
		}
		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: p.name, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: p.name, OK: true})
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

// OpenAPIServe serves api/openapi.yaml if present.
func (s *Server) OpenAPIServe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile("api/openapi.yaml")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}
