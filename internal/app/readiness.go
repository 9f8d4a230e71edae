package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/devmeetai/interview-service/internal/config"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// BuildReadinessChecks returns four probes: db, redis, the AI backend, and
// the code-hosting API. redisPing may be nil when broadcasting is disabled;
// the probe then reports healthy since the dependency is optional.
func BuildReadinessChecks(cfg config.Config, pool Pinger, redisPing func(ctx context.Context) error) (
	dbCheck func(ctx context.Context) error,
	redisCheck func(ctx context.Context) error,
	aiCheck func(ctx context.Context) error,
	githubCheck func(ctx context.Context) error,
) {
	dbCheck = func(ctx context.Context) error {
		if pool == nil {
			return fmt.Errorf("db not configured")
		}
		return pool.Ping(ctx)
	}
	redisCheck = func(ctx context.Context) error {
		if redisPing == nil {
			return nil
		}
		return redisPing(ctx)
	}
	aiCheck = func(ctx context.Context) error {
		if !cfg.AIEnabled() {
			// Mock client is always ready.
			return nil
		}
		return probeHTTP(ctx, cfg.OpenAIBaseURL+"/models", map[string]string{
			"Authorization": "Bearer " + cfg.OpenAIAPIKey,
		})
	}
	githubCheck = func(ctx context.Context) error {
		headers := map[string]string{}
		if cfg.GitHubToken != "" {
			headers["Authorization"] = "Bearer " + cfg.GitHubToken
		}
		return probeHTTP(ctx, cfg.GitHubBaseURL+"/rate_limit", headers)
	}
	return dbCheck, redisCheck, aiCheck, githubCheck
}

func probeHTTP(ctx context.Context, url string, headers map[string]string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
}
