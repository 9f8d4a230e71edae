package usecase

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/monitoring"
	"github.com/devmeetai/interview-service/internal/observability"
)

// AnalysisService derives heuristic activity/quality/collaboration scores
// from a candidate's public code-hosting footprint.
type AnalysisService struct {
	Host      domain.CodeHost
	Analyses  domain.AnalysisRepository
	RepoLimit int
	Monitor   *monitoring.Collector
}

// NewAnalysisService constructs an AnalysisService.
func NewAnalysisService(host domain.CodeHost, analyses domain.AnalysisRepository, repoLimit int, monitor *monitoring.Collector) AnalysisService {
	return AnalysisService{Host: host, Analyses: analyses, RepoLimit: repoLimit, Monitor: monitor}
}

const (
	languageHistogramRepos = 20
	recentPushWindow       = 365 * 24 * time.Hour
	commitsPerRecentRepo   = 10
	activeDaysPerRepo      = 5
)

// Analyze fetches the profile and repositories for username and computes the
// derived metrics. Any API error aborts the whole analysis; there is no
// partial result. Persisting the result is best-effort.
func (s AnalysisService) Analyze(ctx domain.Context, username string) (domain.GitHubAnalysis, error) {
	if username == "" {
		return domain.GitHubAnalysis{}, fmt.Errorf("%w: username required", domain.ErrInvalidArgument)
	}
	profile, err := s.Host.GetUser(ctx, username)
	if err != nil {
		observability.GitHubAnalysesTotal.WithLabelValues("error").Inc()
		return domain.GitHubAnalysis{}, fmt.Errorf("op=analyze: user %s: %w", username, err)
	}
	repos, err := s.Host.ListRepos(ctx, username, s.RepoLimit)
	if err != nil {
		observability.GitHubAnalysesTotal.WithLabelValues("error").Inc()
		return domain.GitHubAnalysis{}, fmt.Errorf("op=analyze: repos for %s: %w", username, err)
	}

	now := time.Now().UTC()
	a := domain.GitHubAnalysis{
		Username:      username,
		Profile:       profile,
		Repos:         repos,
		Languages:     languageHistogram(repos),
		Activity:      activityMetrics(repos, now),
		Quality:       qualityMetrics(repos),
		Collaboration: collaborationMetrics(repos),
		AnalyzedAt:    now,
	}
	a.Scores = overallScores(a.Activity, a.Quality, a.Collaboration)
	a.Insights = insights(a)
	a.Recommendations = recommendations(a)

	if s.Analyses != nil {
		if err := s.Analyses.Upsert(ctx, a); err != nil {
			observability.LoggerFromContext(ctx).Warn("analysis persist failed",
				slog.Any("error", err), slog.String("username", username))
		}
	}
	observability.GitHubAnalysesTotal.WithLabelValues("success").Inc()
	if s.Monitor != nil {
		s.Monitor.TrackEvent(monitoring.AnalyticsEvent{
			Name:   "github.analyzed",
			UserID: username,
			Properties: map[string]string{
				"repos": fmt.Sprintf("%d", len(repos)),
			},
		})
	}
	return a, nil
}

// Cached returns the most recently persisted analysis for username.
func (s AnalysisService) Cached(ctx domain.Context, username string) (domain.GitHubAnalysis, error) {
	if username == "" {
		return domain.GitHubAnalysis{}, fmt.Errorf("%w: username required", domain.ErrInvalidArgument)
	}
	if s.Analyses == nil {
		return domain.GitHubAnalysis{}, fmt.Errorf("%w: analysis store unavailable", domain.ErrNotFound)
	}
	a, err := s.Analyses.GetByUsername(ctx, username)
	if err != nil {
		return domain.GitHubAnalysis{}, fmt.Errorf("op=analyze.cached: %w", err)
	}
	return a, nil
}

// languageHistogram sums repository size per language over at most the 20
// most recently pushed repositories. Size is the hosting API's unit, not a
// byte count.
func languageHistogram(repos []domain.GitHubRepo) map[string]int {
	sorted := make([]domain.GitHubRepo, len(repos))
	copy(sorted, repos)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PushedAt.After(sorted[j].PushedAt)
	})
	if len(sorted) > languageHistogramRepos {
		sorted = sorted[:languageHistogramRepos]
	}
	hist := map[string]int{}
	for _, r := range sorted {
		if r.Language != "" {
			hist[r.Language] += r.SizeKB
		}
	}
	return hist
}

// activityMetrics derives rough proxies from repos pushed within the last
// year. Commit and active-day counts are fixed multiples of that repo count,
// not measured history.
func activityMetrics(repos []domain.GitHubRepo, now time.Time) domain.ActivityMetrics {
	recent := 0
	for _, r := range repos {
		if !r.PushedAt.IsZero() && now.Sub(r.PushedAt) <= recentPushWindow {
			recent++
		}
	}
	activeDays := recent * activeDaysPerRepo
	return domain.ActivityMetrics{
		RecentRepos:      recent,
		EstimatedCommits: recent * commitsPerRecentRepo,
		ActiveDays:       activeDays,
		ConsistencyScore: math.Min(10, float64(activeDays)/365*10),
	}
}

func qualityMetrics(repos []domain.GitHubRepo) domain.QualityMetrics {
	if len(repos) == 0 {
		return domain.QualityMetrics{}
	}
	documented := 0
	tested := 0
	langs := map[string]struct{}{}
	for _, r := range repos {
		if strings.TrimSpace(r.Description) != "" {
			documented++
		}
		if mentionsTests(r) {
			tested++
		}
		if r.Language != "" {
			langs[r.Language] = struct{}{}
		}
	}
	n := float64(len(repos))
	return domain.QualityMetrics{
		DocumentationScore: float64(documented) / n * 10,
		TestCoverageScore:  float64(tested) / n * 10,
		ComplexityScore:    math.Min(10, float64(len(langs))*1.5),
	}
}

func mentionsTests(r domain.GitHubRepo) bool {
	if strings.Contains(strings.ToLower(r.Name), "test") {
		return true
	}
	for _, t := range r.Topics {
		if strings.Contains(strings.ToLower(t), "test") {
			return true
		}
	}
	return false
}

// collaborationMetrics reuse fork counts received on the candidate's own
// repos. No issue or PR data is fetched, so those fields stay 0.
func collaborationMetrics(repos []domain.GitHubRepo) domain.CollaborationMetrics {
	forks := 0
	for _, r := range repos {
		forks += r.Forks
	}
	return domain.CollaborationMetrics{
		ForksReceived: forks,
		Score:         math.Min(10, float64(forks)*0.5),
	}
}

func overallScores(act domain.ActivityMetrics, q domain.QualityMetrics, col domain.CollaborationMetrics) domain.OverallScores {
	activity := math.Min(10, float64(act.RecentRepos))
	quality := q.DocumentationScore*0.4 + q.TestCoverageScore*0.3 + q.ComplexityScore*0.3
	return domain.OverallScores{
		Activity:      activity,
		CodeQuality:   quality,
		Collaboration: col.Score,
		Consistency:   act.ConsistencyScore,
		Overall:       activity*0.3 + quality*0.4 + col.Score*0.2 + act.ConsistencyScore*0.1,
	}
}

func insights(a domain.GitHubAnalysis) []string {
	var out []string
	if a.Scores.Activity > 7 {
		out = append(out, "Highly active contributor with frequent recent pushes.")
	} else if a.Scores.Activity < 3 {
		out = append(out, "Limited recent public activity.")
	}
	if a.Quality.DocumentationScore > 7 {
		out = append(out, "Most repositories carry descriptions, suggesting attention to documentation.")
	}
	if a.Quality.TestCoverageScore > 5 {
		out = append(out, "Several repositories reference testing.")
	}
	if len(a.Languages) > 3 {
		out = append(out, fmt.Sprintf("Works across %d languages.", len(a.Languages)))
	}
	if a.Collaboration.ForksReceived > 10 {
		out = append(out, "Repositories attract forks from other developers.")
	}
	if len(out) == 0 {
		out = append(out, "Not enough public signal to derive insights.")
	}
	return out
}

func recommendations(a domain.GitHubAnalysis) []string {
	var out []string
	if a.Scores.Overall > 7 {
		out = append(out, "Strong candidate based on public coding footprint.")
	}
	if a.Quality.DocumentationScore < 5 {
		out = append(out, "Probe documentation habits; few repositories carry descriptions.")
	}
	if a.Quality.TestCoverageScore < 3 {
		out = append(out, "Ask about testing practice; little public test signal.")
	}
	if a.Scores.Activity < 3 {
		out = append(out, "Verify recent experience; public activity is sparse.")
	}
	if len(out) == 0 {
		out = append(out, "Solid all-round profile; no specific follow-ups suggested.")
	}
	return out
}
