package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-research/arbor/internal/research"
)

func TestFormatReportAppendsSources(t *testing.T) {
	sources := []research.SourceInfo{
		{Title: "Paper A", URL: "https://a", Query: "q1", RelevanceScore: 92},
		{Title: "Paper B", URL: "https://b", Query: "q2", RelevanceScore: 75},
	}

	out := FormatReport("The findings [1] contradict earlier work [2].", sources)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, out, "## Sources")
	assert.Contains(t, out, `[1] Paper A (https://a) - relevance 92, found via "q1"`)
	assert.Contains(t, out, `[2] Paper B (https://b) - relevance 75, found via "q2"`)
	// Sources come after the body.
	assert.Less(t, strings.Index(out, "contradict"), strings.Index(out, "## Sources"))
}

func TestFormatReportReplacesModelSourcesSection(t *testing.T) {
	body := "Intro [1].\n\n## Sources\n[1] Made Up - https://fake"
	sources := []research.SourceInfo{{Title: "Real", URL: "https://real", Query: "q", RelevanceScore: 80}}

	out := FormatReport(body, sources)
	assert.NotContains(t, out, "fake")
	assert.Contains(t, out, "https://real")
	assert.Equal(t, 1, strings.Count(out, "## Sources"))
}

func TestFormatReportLowercaseSectionHeader(t *testing.T) {
	body := "Body text.\n\n## sources\n[1] stale"
	out := FormatReport(body, []research.SourceInfo{{Title: "T", URL: "https://t", Query: "q"}})
	assert.NotContains(t, out, "stale")
	assert.Contains(t, out, "## Sources")
}

func TestFormatReportNoSources(t *testing.T) {
	out := FormatReport("Nothing was found.", nil)
	assert.Equal(t, "Nothing was found.", out)
	assert.NotContains(t, out, "## Sources")
}
