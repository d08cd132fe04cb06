package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arbor-research/arbor/internal/llm"
	"github.com/arbor-research/arbor/internal/research"
)

// Generator produces report prose from accumulated insights and the final
// deduplicated source list. The prose it returns has not yet passed citation
// validation; callers run ValidateCitations on it.
type Generator struct {
	llm *llm.Client
	log *zap.Logger
}

// NewGenerator wraps the LLM client.
func NewGenerator(client *llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llm: client, log: logger}
}

// Generate writes a markdown research report citing sources by their 1-based
// position in sources.
func (g *Generator) Generate(ctx context.Context, topic string, insights []string, sources []research.SourceInfo) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a research report on: %s\n\n", topic)
	b.WriteString("Key insights from the research:\n")
	for _, insight := range insights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	b.WriteString("\nSources (cite inline as [n] using these exact numbers):\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s - %s\n", i+1, s.Title, s.URL)
	}
	b.WriteString("\nWrite a well-structured markdown report. Every factual claim must carry an inline citation [n]. ")
	b.WriteString("Use only the numbered sources above; do not invent sources or numbers.")

	text, err := g.llm.Complete(ctx, "report", b.String())
	if err != nil {
		return "", fmt.Errorf("report generation failed: %w", err)
	}

	g.log.Info("Report generated",
		zap.String("topic", topic),
		zap.Int("insights", len(insights)),
		zap.Int("sources", len(sources)),
		zap.Int("inline_citations", CountInlineCitations(text)),
	)
	return text, nil
}
