package research

import "context"

// SearchProvider fetches top-count content-bearing results for a query, in
// provider order. Errors surface as ErrSearchUnavailable at the builder
// boundary.
type SearchProvider interface {
	Search(ctx context.Context, query string, count int) ([]RawResult, error)
}

// Scorer classifies a single search result against a topic/query pair.
type Scorer interface {
	Score(ctx context.Context, result RawResult, topic, query string) (Relevance, error)
}

// Synthesizer distills 3-5 insight statements from a set of relevant results.
// Never invoked with zero results.
type Synthesizer interface {
	Synthesize(ctx context.Context, results []RawResult, topic, query string) ([]string, error)
}

// QuestionGenerator produces exactly count follow-up questions from a node's
// accumulated insights. Invoked only for nodes with insights below the depth
// bound.
type QuestionGenerator interface {
	Generate(ctx context.Context, node *Node, topic string, count int) ([]string, error)
}
