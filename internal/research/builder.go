package research

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine builds research trees. One Engine may serve many concurrent runs;
// each run carries its own Budget sized from its Config.
type Engine struct {
	search SearchProvider
	scorer Scorer
	synth  Synthesizer
	qgen   QuestionGenerator
	log    *zap.Logger
}

// NewEngine wires the four capability wrappers.
func NewEngine(search SearchProvider, scorer Scorer, synth Synthesizer, qgen QuestionGenerator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		search: search,
		scorer: scorer,
		synth:  synth,
		qgen:   qgen,
		log:    logger,
	}
}

// BuildTree expands one top-level query into a bounded-depth tree. Any
// capability failure anywhere in the tree aborts the whole build; the
// returned NodeError names the query, depth, and stage that failed. On error
// no partial node is returned.
func (e *Engine) BuildTree(ctx context.Context, query, topic string, cfg Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	budget := NewBudget(cfg.ConcurrencyLimit)
	return e.build(ctx, query, topic, cfg, 0, budget)
}

// build runs the per-node pipeline: search, score, filter, synthesize,
// branch. Stages run strictly in that order within a node; scoring within a
// node and sibling subtree builds run concurrently, with every external call
// admitted through the shared budget.
func (e *Engine) build(ctx context.Context, query, topic string, cfg Config, depth int, budget *Budget) (*Node, error) {
	node := &Node{
		Query:           query,
		Depth:           depth,
		RelevanceScores: make(map[string]float64),
	}

	e.log.Debug("Exploring node",
		zap.String("query", query),
		zap.Int("depth", depth),
	)

	// Stage 1: search. A zero result budget short-circuits to an empty node.
	if cfg.ResultsPerQuery <= 0 {
		return node, nil
	}
	raw, err := e.searchGated(ctx, budget, query, cfg.ResultsPerQuery)
	if err != nil {
		return nil, newNodeError(query, depth, "search", fmt.Errorf("%w: %v", ErrSearchUnavailable, err))
	}
	node.SearchResults = make([]LightweightResult, len(raw))
	for i, r := range raw {
		node.SearchResults[i] = r.Lightweight()
	}

	// Stage 2: score every result, budget-gated, completion order free.
	scores := make([]Relevance, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	for i := range raw {
		g.Go(func() error {
			if err := budget.Acquire(gctx); err != nil {
				return err
			}
			defer budget.Release()
			rel, err := e.scorer.Score(gctx, raw[i], topic, query)
			if err != nil {
				return err
			}
			scores[i] = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, newNodeError(query, depth, "relevance", err)
	}

	// Stage 3: record scores in provider order (duplicate URLs: later wins)
	// and filter to the relevant subset, preserving order.
	for i, r := range raw {
		node.RelevanceScores[r.URL] = scores[i].RelevanceScore
		if scores[i].IsRelevant && scores[i].RelevanceScore >= RelevanceThreshold {
			node.RelevantResults = append(node.RelevantResults, node.SearchResults[i])
		}
	}

	// Stage 4: synthesize insights; nothing relevant means a leaf node.
	relevantRaw := relevantRawResults(raw, scores)
	if len(relevantRaw) == 0 {
		return node, nil
	}
	node.Insights, err = e.synthesizeGated(ctx, budget, relevantRaw, topic, query)
	if err != nil {
		return nil, newNodeError(query, depth, "insights", err)
	}

	// Stage 5: follow-up questions, skipped at the depth bound.
	if depth >= cfg.MaxDepth-1 || cfg.FollowUpQuestionsPerNode <= 0 {
		return node, nil
	}
	node.FollowUpQuestions, err = e.generateGated(ctx, budget, node, topic, cfg.FollowUpQuestionsPerNode)
	if err != nil {
		return nil, newNodeError(query, depth, "questions", err)
	}

	// Stage 6: recurse per question, children in question order regardless of
	// completion order.
	node.Children = make([]*Node, len(node.FollowUpQuestions))
	cg, cctx := errgroup.WithContext(ctx)
	for i, q := range node.FollowUpQuestions {
		cg.Go(func() error {
			child, err := e.build(cctx, q, topic, cfg, depth+1, budget)
			if err != nil {
				return err
			}
			node.Children[i] = child
			return nil
		})
	}
	if err := cg.Wait(); err != nil {
		return nil, newNodeError(query, depth, "branch", err)
	}

	return node, nil
}

func (e *Engine) searchGated(ctx context.Context, budget *Budget, query string, count int) ([]RawResult, error) {
	if err := budget.Acquire(ctx); err != nil {
		return nil, err
	}
	defer budget.Release()
	return e.search.Search(ctx, query, count)
}

func (e *Engine) synthesizeGated(ctx context.Context, budget *Budget, results []RawResult, topic, query string) ([]string, error) {
	if err := budget.Acquire(ctx); err != nil {
		return nil, err
	}
	defer budget.Release()
	return e.synth.Synthesize(ctx, results, topic, query)
}

func (e *Engine) generateGated(ctx context.Context, budget *Budget, node *Node, topic string, count int) ([]string, error) {
	if err := budget.Acquire(ctx); err != nil {
		return nil, err
	}
	defer budget.Release()
	return e.qgen.Generate(ctx, node, topic, count)
}

// relevantRawResults filters the raw results with the same rule used for the
// node's RelevantResults, keeping the full text available for synthesis.
func relevantRawResults(raw []RawResult, scores []Relevance) []RawResult {
	var out []RawResult
	for i := range raw {
		if scores[i].IsRelevant && scores[i].RelevanceScore >= RelevanceThreshold {
			out = append(out, raw[i])
		}
	}
	return out
}
