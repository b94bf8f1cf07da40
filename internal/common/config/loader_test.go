package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, "app:\n  environment: test\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "figma-to-fsd", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "https://api.figma.com", cfg.Figma.BaseURL)
	assert.Equal(t, "png", cfg.Figma.ImageFormat)
	assert.Equal(t, 2.0, cfg.Figma.ImageScale)
	assert.Equal(t, "Story", cfg.Atlassian.ParentIssueType)
	assert.Equal(t, "Sub-task", cfg.Atlassian.SubtaskIssueType)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 60000, cfg.Workflow.StageTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoadFromFile_EnvExpansionAndOverrides(t *testing.T) {
	t.Setenv("FSD_TEST_FIGMA_URL", "http://figma.local")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	path := writeConfig(t, `
figma:
  base_url: ${FSD_TEST_FIGMA_URL}
llm:
  provider: anthropic
workers:
  generate-docs:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://figma.local", cfg.Figma.BaseURL)
	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)

	worker := GetWorkerConfig(cfg, "generate-docs")
	assert.True(t, worker.Enabled)
	assert.Equal(t, cfg.Camunda.MaxJobsActive, worker.MaxJobsActive)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errPart string
	}{
		{
			name:    "unknown provider",
			body:    "llm:\n  provider: cohere\n",
			errPart: "llm.provider",
		},
		{
			name:    "redis enabled without address",
			body:    "database:\n  redis:\n    enabled: true\n",
			errPart: "database.redis.address",
		},
		{
			name:    "camunda enabled without broker",
			body:    "camunda:\n  enabled: true\n",
			errPart: "camunda.broker_address",
		},
		{
			name:    "sns without topic",
			body:    "notifications:\n  aws:\n    region: eu-west-1\n  sns:\n    enabled: true\n",
			errPart: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_ADDRESS", "")
			t.Setenv("SNS_TOPIC_ARN", "")

			_, err := LoadFromFile(writeConfig(t, tt.body))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"off": {Enabled: false}}}

	assert.False(t, IsWorkerEnabled(cfg, "off"))
	assert.True(t, IsWorkerEnabled(cfg, "unlisted"))
}
