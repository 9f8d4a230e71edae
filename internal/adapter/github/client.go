// Package github implements the read-only code-hosting boundary against the
// GitHub REST API.
package github

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/devmeetai/interview-service/internal/config"
	"github.com/devmeetai/interview-service/internal/domain"
)

// maxRepoPage is the API's per_page ceiling; the analyzer never needs more.
const maxRepoPage = 100

// Client implements domain.CodeHost.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// New constructs a Client from configuration.
func New(cfg config.Config) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("GitHub %s %s", r.Method, r.URL.Host)
		}),
	)
	return &Client{
		baseURL: cfg.GitHubBaseURL,
		token:   cfg.GitHubToken,
		hc:      &http.Client{Timeout: cfg.GitHubTimeout, Transport: transport},
	}
}

type userDTO struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"public_repos"`
	CreatedAt   time.Time `json:"created_at"`
}

type repoDTO struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Size        int       `json:"size"`
	Fork        bool      `json:"fork"`
	Topics      []string  `json:"topics"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

// GetUser fetches the public profile for username.
func (c *Client) GetUser(ctx domain.Context, username string) (domain.GitHubProfile, error) {
	var dto userDTO
	path := "/users/" + url.PathEscape(username)
	if err := c.getJSON(ctx, path, &dto); err != nil {
		return domain.GitHubProfile{}, fmt.Errorf("op=github.get_user: %w", err)
	}
	return domain.GitHubProfile{
		Login:       dto.Login,
		Name:        dto.Name,
		Bio:         dto.Bio,
		Followers:   dto.Followers,
		Following:   dto.Following,
		PublicRepos: dto.PublicRepos,
		CreatedAt:   dto.CreatedAt,
	}, nil
}

// ListRepos fetches up to limit repositories for username, most recently
// updated first.
func (c *Client) ListRepos(ctx domain.Context, username string, limit int) ([]domain.GitHubRepo, error) {
	if limit <= 0 || limit > maxRepoPage {
		limit = maxRepoPage
	}
	var dtos []repoDTO
	path := fmt.Sprintf("/users/%s/repos?per_page=%d&sort=updated", url.PathEscape(username), limit)
	if err := c.getJSON(ctx, path, &dtos); err != nil {
		return nil, fmt.Errorf("op=github.list_repos: %w", err)
	}
	repos := make([]domain.GitHubRepo, 0, len(dtos))
	for _, d := range dtos {
		repos = append(repos, domain.GitHubRepo{
			Name:        d.Name,
			Description: d.Description,
			Language:    d.Language,
			Stars:       d.Stars,
			Forks:       d.Forks,
			SizeKB:      d.Size,
			Fork:        d.Fork,
			Topics:      d.Topics,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
			PushedAt:    d.PushedAt,
		})
	}
	return repos, nil
}

// getJSON performs one GET with retry on transient failures. 404 maps to
// ErrNotFound and 403 to ErrUpstreamRateLimit (the API reports exhausted
// quota as 403).
func (c *Client) getJSON(ctx domain.Context, path string, v any) error {
	op := func() error {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Accept", "application/vnd.github+json")
		if c.token != "" {
			r.Header.Set("Authorization", "Bearer "+c.token)
		}
		resp, err := c.hc.Do(r)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(domain.ErrNotFound)
		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("github rate limited",
				slog.Int("status", resp.StatusCode),
				slog.String("remaining", resp.Header.Get("X-RateLimit-Remaining")))
			return backoff.Permanent(domain.ErrUpstreamRateLimit)
		case resp.StatusCode >= 500:
			return fmt.Errorf("github status %d", resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("github status %d", resp.StatusCode))
		}
		if err := json.Unmarshal(body, v); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err))
		}
		return nil
	}
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = 10 * time.Second
	expo.InitialInterval = 200 * time.Millisecond
	return backoff.Retry(op, backoff.WithContext(expo, ctx))
}
