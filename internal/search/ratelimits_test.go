package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPMForProviderBuiltIns(t *testing.T) {
	resetLimitsForTest()
	t.Setenv("SEARCH_LIMITS_PATH", "")

	assert.Equal(t, 25, RPMForProvider("exa"))
	assert.Equal(t, 60, RPMForProvider("tavily"))
	assert.Equal(t, 25, RPMForProvider("  EXA  "))
	assert.Equal(t, defaultRPM, RPMForProvider("unknown"))
}

func TestRPMForProviderFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.yaml")
	data := []byte("rate_limits:\n  default_rpm: 10\n  provider_overrides:\n    exa: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	resetLimitsForTest()
	t.Setenv("SEARCH_LIMITS_PATH", path)
	defer resetLimitsForTest()

	assert.Equal(t, 5, RPMForProvider("exa"))
	// Built-in provider limits still beat the file default.
	assert.Equal(t, 60, RPMForProvider("tavily"))
	assert.Equal(t, 10, RPMForProvider("unknown"))
}

func TestLimiterForProviderBurst(t *testing.T) {
	resetLimitsForTest()
	t.Setenv("SEARCH_LIMITS_PATH", "")

	l := LimiterForProvider("tavily")
	assert.Equal(t, 6, l.Burst())
	// Low-RPM providers still get burst 1, never 0.
	l = LimiterForProvider("unknown-low")
	assert.GreaterOrEqual(t, l.Burst(), 1)
}
