package domain

import "time"

// GitHubProfile is a snapshot of a public user profile.
type GitHubProfile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"public_repos"`
	CreatedAt   time.Time `json:"created_at"`
}

// GitHubRepo is the subset of repository fields the analyzer consumes.
// SizeKB is the hosting API's size unit, not an actual byte count.
type GitHubRepo struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	SizeKB      int       `json:"size"`
	Fork        bool      `json:"fork"`
	Topics      []string  `json:"topics,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

// ActivityMetrics are rough proxies derived from repos pushed within the last
// year, not measured commit history.
type ActivityMetrics struct {
	RecentRepos      int     `json:"recent_repos"`
	EstimatedCommits int     `json:"estimated_commits"`
	ActiveDays       int     `json:"active_days"`
	ConsistencyScore float64 `json:"consistency_score"`
}

// QualityMetrics are cheap documentation/test/complexity proxies.
type QualityMetrics struct {
	DocumentationScore float64 `json:"documentation_score"`
	TestCoverageScore  float64 `json:"test_coverage_score"`
	ComplexityScore    float64 `json:"complexity_score"`
}

// CollaborationMetrics reuse fork counts as a stand-in for contribution to
// others. IssuesOpened and PullRequestsContributed are always 0: no issue or
// PR data is fetched.
type CollaborationMetrics struct {
	ForksReceived            int     `json:"forks_received"`
	IssuesOpened             int     `json:"issues_opened"`
	PullRequestsContributed  int     `json:"pull_requests_contributed"`
	Score                    float64 `json:"score"`
}

// OverallScores combines the per-dimension scores into one weighted number.
type OverallScores struct {
	Activity      float64 `json:"activity"`
	CodeQuality   float64 `json:"code_quality"`
	Collaboration float64 `json:"collaboration"`
	Consistency   float64 `json:"consistency"`
	Overall       float64 `json:"overall"`
}

// GitHubAnalysis is the full derived result for one username, computed on
// demand per request.
type GitHubAnalysis struct {
	Username        string               `json:"username"`
	Profile         GitHubProfile        `json:"profile"`
	Repos           []GitHubRepo         `json:"repos"`
	Languages       map[string]int       `json:"languages"`
	Activity        ActivityMetrics      `json:"activity_metrics"`
	Quality         QualityMetrics       `json:"quality_metrics"`
	Collaboration   CollaborationMetrics `json:"collaboration_metrics"`
	Scores          OverallScores        `json:"overall_scores"`
	Insights        []string             `json:"insights"`
	Recommendations []string             `json:"recommendations"`
	AnalyzedAt      time.Time            `json:"analyzed_at"`
}
