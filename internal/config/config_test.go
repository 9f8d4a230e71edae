package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmeetai/interview-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "https://api.github.com", cfg.GitHubBaseURL)
	assert.Equal(t, 100, cfg.GitHubRepoLimit)
	assert.Equal(t, 1000, cfg.MonitoringEventCap)
	assert.Equal(t, 5, cfg.DefaultQuestionCount)
	assert.Equal(t, 30*time.Second, cfg.ServerShutdownTimeout)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHAT_MODEL", "gpt-4o")
	t.Setenv("MONITORING_EVENT_CAP", "50")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.ChatModel)
	assert.Equal(t, 50, cfg.MonitoringEventCap)
	assert.True(t, cfg.IsProd())
	assert.True(t, cfg.AIEnabled())
}

func TestAdminEnabled_RequiresAllThree(t *testing.T) {
	cfg := config.Config{AdminUsername: "admin"}
	assert.False(t, cfg.AdminEnabled())
	cfg.AdminPasswordHash = "hash"
	assert.False(t, cfg.AdminEnabled())
	cfg.AdminSessionSecret = "secret"
	assert.True(t, cfg.AdminEnabled())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("CHAT_TIMEOUT", "not-a-duration")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=config.Load")
}
