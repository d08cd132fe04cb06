package report

import (
	"fmt"
	"strings"

	"github.com/arbor-research/arbor/internal/research"
)

// FormatReport appends a rebuilt "## Sources" section listing every final
// source in rank order. Any Sources section the model emitted itself is
// dropped first, cutting at the last occurrence so body text that merely
// mentions "## Sources" is not lost.
func FormatReport(body string, sources []research.SourceInfo) string {
	s := strings.TrimSpace(body)

	lower := strings.ToLower(s)
	if idx := strings.LastIndex(lower, "## sources"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	if len(sources) == 0 {
		return s
	}

	var b strings.Builder
	if s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	b.WriteString("## Sources\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] %s (%s) - relevance %.0f, found via %q\n",
			i+1, src.Title, src.URL, src.RelevanceScore, src.Query)
	}
	return b.String()
}
