package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arbor-research/arbor/internal/llm"
)

// FollowUpGenerator derives follow-up questions from a node's insights.
type FollowUpGenerator struct {
	llm *llm.Client
	log *zap.Logger
}

// NewFollowUpGenerator wraps the LLM client.
func NewFollowUpGenerator(client *llm.Client, logger *zap.Logger) *FollowUpGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowUpGenerator{llm: client, log: logger}
}

func questionsSchema(count int) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"questions": map[string]interface{}{
				"type":     "array",
				"items":    map[string]interface{}{"type": "string"},
				"minItems": count,
				"maxItems": count,
			},
		},
		"required": []string{"questions"},
	}
}

// Generate produces exactly count follow-up questions phrased as standalone
// search queries. Extra questions from the model are dropped; fewer than
// count is a classification failure.
func (g *FollowUpGenerator) Generate(ctx context.Context, node *Node, topic string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString("You are deepening a research investigation.\n\n")
	fmt.Fprintf(&b, "Research topic: %s\n", topic)
	fmt.Fprintf(&b, "Current line of inquiry: %s\n\n", node.Query)
	b.WriteString("Insights gathered so far:\n")
	for _, insight := range node.Insights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	fmt.Fprintf(&b, "\nGenerate exactly %d follow-up questions that probe gaps or promising threads in these insights. ", count)
	b.WriteString("Phrase each as a standalone web search query; do not repeat the current line of inquiry.")

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := g.llm.CompleteStructured(ctx, "questions", b.String(), questionsSchema(count), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(out.Questions) < count {
		return nil, fmt.Errorf("%w: expected %d follow-up questions, got %d", ErrClassification, count, len(out.Questions))
	}
	questions := out.Questions[:count]

	g.log.Debug("Generated follow-up questions",
		zap.String("query", node.Query),
		zap.Int("count", len(questions)),
	)
	return questions, nil
}
