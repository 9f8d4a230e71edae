package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmeetai/interview-service/internal/adapter/httpserver"
	"github.com/devmeetai/interview-service/internal/config"
	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/interviewer"
	"github.com/devmeetai/interview-service/internal/monitoring"
	"github.com/devmeetai/interview-service/internal/usecase"
)

type memCandidates struct {
	mu       sync.Mutex
	profiles map[string]domain.CandidateProfile
}

func (m *memCandidates) Create(_ domain.Context, p domain.CandidateProfile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = fmt.Sprintf("cand-%d", len(m.profiles)+1)
	}
	if m.profiles == nil {
		m.profiles = map[string]domain.CandidateProfile{}
	}
	m.profiles[p.ID] = p
	return p.ID, nil
}

func (m *memCandidates) Get(_ domain.Context, id string) (domain.CandidateProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domain.CandidateProfile{}, fmt.Errorf("%w: candidate %s", domain.ErrNotFound, id)
	}
	return p, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.InterviewSession
}

func (m *memSessions) Create(_ domain.Context, s domain.InterviewSession) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = map[string]domain.InterviewSession{}
	}
	m.sessions[s.ID] = s
	return s.ID, nil
}

func (m *memSessions) Get(_ domain.Context, id string) (domain.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.InterviewSession{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return s, nil
}

func (m *memSessions) AppendResponse(_ domain.Context, id string, r domain.InterviewResponse, expectedIndex int, newStatus domain.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	if s.CurrentIndex != expectedIndex {
		return fmt.Errorf("%w: index moved", domain.ErrConflict)
	}
	s.Responses = append(s.Responses, r)
	s.CurrentIndex++
	s.Status = newStatus
	m.sessions[id] = s
	return nil
}

func (m *memSessions) SetSummary(_ domain.Context, id string, sum domain.SessionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	s.Summary = &sum
	m.sessions[id] = s
	return nil
}

type memHost struct {
	profile domain.GitHubProfile
	repos   []domain.GitHubRepo
	err     error
}

func (m *memHost) GetUser(_ domain.Context, username string) (domain.GitHubProfile, error) {
	if m.err != nil {
		return domain.GitHubProfile{}, m.err
	}
	return m.profile, nil
}

func (m *memHost) ListRepos(_ domain.Context, username string, limit int) ([]domain.GitHubRepo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.repos, nil
}

func newTestServer(t *testing.T) (*httpserver.Server, *chi.Mux) {
	t.Helper()
	candidates := &memCandidates{profiles: map[string]domain.CandidateProfile{
		"cand-1": {ID: "cand-1", Name: "Ada", ExperienceLevel: "senior", Skills: []string{"Go"}, Position: "Backend Engineer"},
	}}
	collector := monitoring.NewCollector(monitoring.Caps{})
	gen := interviewer.NewGenerator(nil, 0)
	interviews := usecase.NewInterviewService(
		&memSessions{}, candidates, gen,
		interviewer.NewEvaluator(nil, 0), interviewer.NewSummarizer(nil, 0),
		nil, collector,
	)
	analyses := usecase.NewAnalysisService(&memHost{profile: domain.GitHubProfile{Login: "octocat"}}, nil, 100, collector)
	srv := &httpserver.Server{
		Cfg: config.Config{
			DefaultQuestionCount: 5,
			MaxQuestionCount:     20,
		},
		Interviews: interviews,
		Analyses:   analyses,
		Generator:  gen,
		Candidates: candidates,
		Monitor:    collector,
	}
	r := chi.NewRouter()
	r.Post("/v1/candidates", srv.CreateCandidateHandler())
	r.Post("/v1/interviews", srv.StartInterviewHandler())
	r.Get("/v1/interviews/{id}", srv.GetInterviewHandler())
	r.Post("/v1/interviews/{id}/responses", srv.SubmitResponseHandler())
	r.Post("/v1/questions/generate", srv.GenerateQuestionsHandler())
	r.Post("/v1/analyses/github", srv.AnalyzeGitHubHandler())
	r.Get("/v1/analyses/github/{username}", srv.GetAnalysisHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	return srv, r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateCandidate(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/candidates", map[string]any{
		"name":             "Grace",
		"experience_level": "mid",
		"skills":           []string{"Python"},
		"position":         "Data Engineer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got["id"])
}

func TestCreateCandidateValidation(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/candidates", map[string]any{
		"name": "No Skills",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestStartInterview(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/interviews", map[string]any{
		"candidate_id":   "cand-1",
		"question_count": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess domain.InterviewSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, domain.SessionStarted, sess.Status)
	assert.Len(t, sess.Questions, 3)
	assert.Zero(t, sess.CurrentIndex)
}

func TestStartInterviewUnknownCandidate(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/interviews", map[string]any{"candidate_id": "ghost"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestStartInterviewCountAboveLimit(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/interviews", map[string]any{
		"candidate_id":   "cand-1",
		"question_count": 50,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitResponseFlow(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/interviews", map[string]any{
		"candidate_id":   "cand-1",
		"question_count": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sess domain.InterviewSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))

	rec = doJSON(t, r, http.MethodPost, "/v1/interviews/"+sess.ID+"/responses", map[string]any{
		"response": "I would shard by tenant and keep hot keys in a cache.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	type submitReply struct {
		Status       domain.SessionStatus       `json:"status"`
		NextQuestion *domain.InterviewQuestion  `json:"next_question"`
		Summary      *domain.SessionSummary     `json:"summary"`
		Evaluation   map[string]json.RawMessage `json:"evaluation"`
	}
	var first submitReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, domain.SessionInProgress, first.Status)
	require.NotNil(t, first.NextQuestion)
	assert.Nil(t, first.Summary)

	rec = doJSON(t, r, http.MethodPost, "/v1/interviews/"+sess.ID+"/responses", map[string]any{
		"response": "Second answer.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	// Fresh target: omitted fields must read as absent, not as leftovers
	// from the first reply.
	var last submitReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &last))
	assert.Equal(t, domain.SessionCompleted, last.Status)
	assert.Nil(t, last.NextQuestion)
	require.NotNil(t, last.Summary)

	// A third submission conflicts.
	rec = doJSON(t, r, http.MethodPost, "/v1/interviews/"+sess.ID+"/responses", map[string]any{
		"response": "Too late.",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFLICT")
}

func TestSubmitResponseEmptyBody(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/interviews/any/responses", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInterviewNotFound(t *testing.T) {
	_, r := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/interviews/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateQuestions(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/questions/generate", map[string]any{
		"profile": map[string]any{
			"name":             "Ada",
			"experience_level": "senior",
			"skills":           []string{"React"},
			"position":         "Frontend Engineer",
		},
		"count": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Questions []domain.InterviewQuestion `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Questions, 5)
	assert.Contains(t, got.Questions[0].Text, "React")
}

func TestAnalyzeGitHub(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/analyses/github", map[string]any{"username": "octocat"})
	require.Equal(t, http.StatusOK, rec.Code)
	var a domain.GitHubAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "octocat", a.Username)
}

func TestAnalyzeGitHubMissingUsername(t *testing.T) {
	_, r := newTestServer(t)
	rec := doJSON(t, r, http.MethodPost, "/v1/analyses/github", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadyzAllOK(t *testing.T) {
	srv, r := newTestServer(t)
	srv.DBCheck = func(domain.Context) error { return nil }
	srv.RedisCheck = func(domain.Context) error { return nil }
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzFailing(t *testing.T) {
	srv, r := newTestServer(t)
	srv.DBCheck = func(domain.Context) error { return fmt.Errorf("connection refused") }
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
