// Command server starts the DevMeet interview service HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devmeetai/interview-service/internal/adapter/ai"
	"github.com/devmeetai/interview-service/internal/adapter/ai/openai"
	redisbc "github.com/devmeetai/interview-service/internal/adapter/broadcast/redis"
	"github.com/devmeetai/interview-service/internal/adapter/github"
	"github.com/devmeetai/interview-service/internal/adapter/httpserver"
	"github.com/devmeetai/interview-service/internal/adapter/repo/postgres"
	"github.com/devmeetai/interview-service/internal/app"
	"github.com/devmeetai/interview-service/internal/config"
	"github.com/devmeetai/interview-service/internal/domain"
	"github.com/devmeetai/interview-service/internal/interviewer"
	"github.com/devmeetai/interview-service/internal/monitoring"
	"github.com/devmeetai/interview-service/internal/observability"
	"github.com/devmeetai/interview-service/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	candidateRepo := postgres.NewCandidateRepo(pool)
	sessionRepo := postgres.NewSessionRepo(pool)
	analysisRepo := postgres.NewAnalysisRepo(pool)

	// Live-update broadcasting is optional; nil publisher drops events.
	publisher := redisbc.NewPublisher(cfg.RedisAddr, cfg.RedisPassword)
	if publisher != nil {
		defer func() { _ = publisher.Close() }()
	}

	var aiClient domain.AIClient
	if cfg.AIEnabled() {
		aiClient = openai.New(cfg)
		slog.Info("ai client configured", slog.String("model", cfg.ChatModel))
	} else {
		aiClient = ai.NewMockClient()
		slog.Warn("no AI key configured, using deterministic mock client")
	}

	collector := monitoring.NewCollector(monitoring.Caps{
		Events:   cfg.MonitoringEventCap,
		Requests: cfg.MonitoringRequestCap,
		Errors:   cfg.MonitoringErrorCap,
	})

	generator := interviewer.NewGenerator(aiClient, cfg.ChatMaxTokens)
	evaluator := interviewer.NewEvaluator(aiClient, cfg.ChatMaxTokens)
	summarizer := interviewer.NewSummarizer(aiClient, cfg.ChatMaxTokens)

	interviewSvc := usecase.NewInterviewService(sessionRepo, candidateRepo, generator, evaluator, summarizer, publisherOrNil(publisher), collector)
	analysisSvc := usecase.NewAnalysisService(github.New(cfg), analysisRepo, cfg.GitHubRepoLimit, collector)

	var redisPing func(ctx context.Context) error
	if publisher != nil {
		redisPing = publisher.Ping
	}
	dbCheck, redisCheck, aiCheck, githubCheck := app.BuildReadinessChecks(cfg, pool, redisPing)

	srv := &httpserver.Server{
		Cfg:         cfg,
		Interviews:  interviewSvc,
		Analyses:    analysisSvc,
		Generator:   generator,
		Candidates:  candidateRepo,
		Monitor:     collector,
		DBCheck:     dbCheck,
		RedisCheck:  redisCheck,
		AICheck:     aiCheck,
		GitHubCheck: githubCheck,
	}
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

// publisherOrNil avoids the classic typed-nil-in-interface trap: a nil
// *Publisher stored in a Broadcaster interface would compare non-nil.
func publisherOrNil(p *redisbc.Publisher) domain.Broadcaster {
	if p == nil {
		return nil
	}
	return p
}
