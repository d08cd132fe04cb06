package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arbor-research/arbor/internal/llm"
)

// contentPreviewChars bounds the result content included in the relevance
// prompt so judgments are reproducible given a fixed model.
const contentPreviewChars = 500

// RelevanceScorer classifies search results with the LLM service.
type RelevanceScorer struct {
	llm *llm.Client
	log *zap.Logger
}

// NewRelevanceScorer wraps the LLM client.
func NewRelevanceScorer(client *llm.Client, logger *zap.Logger) *RelevanceScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelevanceScorer{llm: client, log: logger}
}

var relevanceSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"is_relevant": map[string]interface{}{"type": "boolean"},
		"reasoning":   map[string]interface{}{"type": "string"},
		"relevance_score": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": 100,
		},
	},
	"required": []string{"is_relevant", "reasoning", "relevance_score"},
}

// Score judges one result against the topic and the query that produced it.
func (s *RelevanceScorer) Score(ctx context.Context, result RawResult, topic, query string) (Relevance, error) {
	var b strings.Builder
	b.WriteString("You are evaluating whether a search result is relevant to a research topic.\n\n")
	fmt.Fprintf(&b, "Research topic: %s\n", topic)
	fmt.Fprintf(&b, "Search query: %s\n\n", query)
	fmt.Fprintf(&b, "Result title: %s\n", result.Title)
	fmt.Fprintf(&b, "Result URL: %s\n", result.URL)
	fmt.Fprintf(&b, "Content preview:\n%s\n\n", truncateChars(result.Text, contentPreviewChars))
	b.WriteString("Judge whether this result contains substantive information about the topic. ")
	b.WriteString("Return is_relevant, a relevance_score from 0 to 100, and one sentence of reasoning.")

	var rel Relevance
	if err := s.llm.CompleteStructured(ctx, "relevance", b.String(), relevanceSchema, &rel); err != nil {
		return Relevance{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if rel.RelevanceScore < 0 || rel.RelevanceScore > 100 {
		return Relevance{}, fmt.Errorf("%w: relevance score %.1f outside [0,100]", ErrClassification, rel.RelevanceScore)
	}

	s.log.Debug("Scored result",
		zap.String("url", result.URL),
		zap.Bool("relevant", rel.IsRelevant),
		zap.Float64("score", rel.RelevanceScore),
	)
	return rel, nil
}
