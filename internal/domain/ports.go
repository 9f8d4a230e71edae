package domain

// AIClient (port)
// ChatJSON submits a prompt to the external text-generation service and
// returns the raw reply, expected (but not guaranteed) to be JSON.
type AIClient interface {
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// CandidateRepository (port)
type CandidateRepository interface {
	Create(ctx Context, p CandidateProfile) (string, error)
	Get(ctx Context, id string) (CandidateProfile, error)
}

// SessionRepository (port)
// AppendResponse performs a compare-and-set on the session's current index:
// the append is rejected with ErrConflict when expectedIndex no longer
// matches, which closes the concurrent double-submission race.
type SessionRepository interface {
	Create(ctx Context, s InterviewSession) (string, error)
	Get(ctx Context, id string) (InterviewSession, error)
	AppendResponse(ctx Context, id string, r InterviewResponse, expectedIndex int, newStatus SessionStatus) error
	SetSummary(ctx Context, id string, sum SessionSummary) error
}

// AnalysisRepository (port)
type AnalysisRepository interface {
	Upsert(ctx Context, a GitHubAnalysis) error
	GetByUsername(ctx Context, username string) (GitHubAnalysis, error)
}

// Broadcaster (port)
// Publish-only boundary towards the real-time messaging collaborator; the
// core does not implement the transport.
type Broadcaster interface {
	PublishSessionEvent(ctx Context, ev SessionEvent) error
}

// CodeHost (port)
// Read-only boundary towards the external code-hosting API.
type CodeHost interface {
	GetUser(ctx Context, username string) (GitHubProfile, error)
	ListRepos(ctx Context, username string, limit int) ([]GitHubRepo, error)
}
