package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-research/arbor/internal/research"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "research.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearResearchEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH",
		"RESEARCH_MAX_DEPTH", "RESEARCH_RESULTS_PER_QUERY",
		"RESEARCH_FOLLOWUP_QUESTIONS", "RESEARCH_CONCURRENCY_LIMIT",
		"SEARCH_BASE_URL", "SEARCH_API_KEY", "SEARCH_PROVIDER",
		"LLM_SERVICE_URL", "LLM_MODEL",
		"TEMPORAL_HOST_PORT", "TEMPORAL_NAMESPACE", "TEMPORAL_TASK_QUEUE",
		"REDIS_URL", "METRICS_PORT", "OTLP_ENDPOINT", "TRACING_ENABLED",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearResearchEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, research.Config{
		MaxDepth:                 2,
		ResultsPerQuery:          5,
		FollowUpQuestionsPerNode: 2,
		ConcurrencyLimit:         4,
	}, cfg.ResearchSettings())
	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "default", cfg.Temporal.Namespace)
	assert.Equal(t, "arbor-research", cfg.Temporal.TaskQueue)
	assert.Equal(t, 9095, cfg.Metrics.Port)
}

func TestLoadFromFile(t *testing.T) {
	clearResearchEnv(t)
	path := writeConfigFile(t, `
research:
  max_depth: 3
  results_per_query: 8
  follow_up_questions_per_node: 1
  concurrency_limit: 6
search:
  provider: tavily
temporal:
  task_queue: custom-queue
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Research.MaxDepth)
	assert.Equal(t, 8, cfg.Research.ResultsPerQuery)
	assert.Equal(t, 1, cfg.Research.FollowUpQuestionsPerNode)
	assert.Equal(t, 6, cfg.Research.ConcurrencyLimit)
	assert.Equal(t, "tavily", cfg.Search.Provider)
	assert.Equal(t, "custom-queue", cfg.Temporal.TaskQueue)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearResearchEnv(t)
	path := writeConfigFile(t, "research:\n  max_depth: 3\n")
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("RESEARCH_MAX_DEPTH", "5")
	t.Setenv("SEARCH_API_KEY", "from-env")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Research.MaxDepth)
	assert.Equal(t, "from-env", cfg.Search.APIKey)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadExplicitZeroFollowUpsFromEnv(t *testing.T) {
	clearResearchEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RESEARCH_FOLLOWUP_QUESTIONS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Research.FollowUpQuestionsPerNode,
		"an explicit zero branching factor must not be replaced by the default")
}

func TestLoadExplicitZeroFollowUpsFromFile(t *testing.T) {
	clearResearchEnv(t)
	path := writeConfigFile(t, "research:\n  follow_up_questions_per_node: 0\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Research.FollowUpQuestionsPerNode)
	// Keys the file leaves unset still get their defaults.
	assert.Equal(t, 2, cfg.Research.MaxDepth)
	assert.Equal(t, 5, cfg.Research.ResultsPerQuery)
}

func TestLoadInvalidResearchSettings(t *testing.T) {
	clearResearchEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RESEARCH_MAX_DEPTH", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, research.ErrInvalidConfig)
}

func TestLoadMalformedFile(t *testing.T) {
	clearResearchEnv(t)
	path := writeConfigFile(t, "research: [not a map")
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
}
