// Package openai implements domain.AIClient against any OpenAI-compatible
// chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/devmeetai/interview-service/internal/config"
	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/observability"
)

// Client implements domain.AIClient over an OpenAI-compatible endpoint.
type Client struct {
	cfg     config.Config
	hc      *http.Client
	counter *tokenCounter
}

// New constructs a Client with the configured timeout. Outbound calls carry
// OTel spans so chat latency shows up next to the request trace.
func New(cfg config.Config) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("AI %s %s", r.Method, r.URL.Host)
		}),
	)
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.ChatTimeout, Transport: transport},
		counter: newTokenCounter(),
	}
}

func (c *Client) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = c.cfg.AIBackoffMaxElapsedTime
	expo.InitialInterval = c.cfg.AIBackoffInitialInterval
	expo.MaxInterval = c.cfg.AIBackoffMaxInterval
	expo.Multiplier = c.cfg.AIBackoffMultiplier
	return expo
}

// ChatJSON calls the chat completions endpoint and returns the first choice's
// message content. Transient failures (429, 5xx, network) are retried with
// exponential backoff; 4xx responses are permanent.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	promptTokens := c.counter.Count(c.cfg.ChatModel, systemPrompt+userPrompt)
	slog.Debug("ai chat request",
		slog.String("model", c.cfg.ChatModel),
		slog.Int("prompt_tokens", promptTokens),
		slog.Int("max_tokens", maxTokens))

	body := map[string]any{
		"model":       c.cfg.ChatModel,
		"temperature": 0.2,
		"max_tokens":  maxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("op=ai.chat: %w", err)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	var rateLimited bool
	op := func() error {
		start := time.Now()
		// Recreate the request each attempt to avoid reusing a consumed body.
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/chat/completions", bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		outcome := "ok"
		defer func() {
			observability.ObserveAIRequest("chat", outcome, time.Since(start))
		}()
		if err != nil {
			outcome = "error"
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			outcome = "error"
			return err
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			outcome = "rate_limited"
			rateLimited = true
			slog.Warn("ai provider rate limited", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			outcome = "client_error"
			slog.Warn("ai provider 4xx",
				slog.Int("status", resp.StatusCode),
				slog.String("body", snippet(bodyBytes, 512)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			outcome = "server_error"
			slog.Error("ai provider non-2xx",
				slog.Int("status", resp.StatusCode),
				slog.String("body", snippet(bodyBytes, 512)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		rateLimited = false
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			outcome = "decode_error"
			return backoff.Permanent(fmt.Errorf("decode chat response: %w", err))
		}
		return nil
	}

	bo := backoff.WithContext(c.backoffConfig(), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("op=ai.chat: %w: %v", domain.ErrUpstreamTimeout, err)
		}
		if rateLimited {
			return "", fmt.Errorf("op=ai.chat: %w: %v", domain.ErrUpstreamRateLimit, err)
		}
		return "", fmt.Errorf("op=ai.chat: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("op=ai.chat: %w: empty choices", domain.ErrSchemaInvalid)
	}
	slog.Debug("ai chat response",
		slog.Int("total_tokens", out.Usage.TotalTokens),
		slog.Int("content_len", len(out.Choices[0].Message.Content)))
	return out.Choices[0].Message.Content, nil
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
