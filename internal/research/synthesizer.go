package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arbor-research/arbor/internal/llm"
)

const (
	minInsights = 3
	maxInsights = 5
)

// InsightSynthesizer distills insight statements from relevant results.
type InsightSynthesizer struct {
	llm *llm.Client
	log *zap.Logger
}

// NewInsightSynthesizer wraps the LLM client.
func NewInsightSynthesizer(client *llm.Client, logger *zap.Logger) *InsightSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightSynthesizer{llm: client, log: logger}
}

var insightsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"insights": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "string"},
			"minItems": minInsights,
			"maxItems": maxInsights,
		},
	},
	"required": []string{"insights"},
}

// Synthesize produces 3-5 insight statements from the relevant results of one
// node. Callers must not invoke it with zero results.
func (s *InsightSynthesizer) Synthesize(ctx context.Context, results []RawResult, topic, query string) ([]string, error) {
	var b strings.Builder
	b.WriteString("You are synthesizing research findings.\n\n")
	fmt.Fprintf(&b, "Research topic: %s\n", topic)
	fmt.Fprintf(&b, "Search query: %s\n\n", query)
	b.WriteString("Relevant sources:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n\n", i+1, r.Title, r.URL, truncateChars(r.Text, contentPreviewChars))
	}
	fmt.Fprintf(&b, "Distill %d to %d specific, self-contained insight statements from these sources. ", minInsights, maxInsights)
	b.WriteString("Each insight must state a concrete finding, not a summary of what a source discusses.")

	var out struct {
		Insights []string `json:"insights"`
	}
	if err := s.llm.CompleteStructured(ctx, "insights", b.String(), insightsSchema, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(out.Insights) < minInsights || len(out.Insights) > maxInsights {
		return nil, fmt.Errorf("%w: expected %d-%d insights, got %d", ErrClassification, minInsights, maxInsights, len(out.Insights))
	}

	s.log.Debug("Synthesized insights",
		zap.String("query", query),
		zap.Int("sources", len(results)),
		zap.Int("insights", len(out.Insights)),
	)
	return out.Insights, nil
}
