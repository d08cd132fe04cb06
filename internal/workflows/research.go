package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/arbor-research/arbor/internal/activities"
	"github.com/arbor-research/arbor/internal/report"
	"github.com/arbor-research/arbor/internal/research"
)

// TaskQueue is the worker task queue for research workflows.
const TaskQueue = "arbor-research"

// ResearchInput starts one full research run: a topic, its initial queries,
// and the tree configuration shared by every query tree.
type ResearchInput struct {
	Topic   string          `json:"topic"`
	Queries []string        `json:"queries"`
	Config  research.Config `json:"config"`
}

// ResearchResult is the final citation-validated deliverable.
type ResearchResult struct {
	Report          string                `json:"report"`
	Insights        []string              `json:"insights"`
	Sources         []research.SourceInfo `json:"sources"`
	NodesExplored   int                   `json:"nodes_explored"`
	RelevantResults int                   `json:"relevant_results"`
}

// DeepResearchWorkflow fans one tree-building activity out per initial query,
// aggregates and deduplicates the flattened output, generates the report, and
// repairs its citations. Retry and backoff live here; the engine itself never
// retries.
func DeepResearchWorkflow(ctx workflow.Context, input ResearchInput) (ResearchResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.Topic == "" {
		return ResearchResult{}, errors.New("research topic is required")
	}
	if len(input.Queries) == 0 {
		return ResearchResult{}, errors.New("at least one initial query is required")
	}
	if err := input.Config.Validate(); err != nil {
		return ResearchResult{}, err
	}

	logger.Info("Deep research starting",
		"topic", input.Topic,
		"queries", len(input.Queries),
		"max_depth", input.Config.MaxDepth,
	)

	var acts *activities.Activities
	treeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	})

	// Launch every tree before collecting any; futures resolve out of order
	// but results are gathered in input-query order.
	futures := make([]workflow.Future, len(input.Queries))
	for i, query := range input.Queries {
		futures[i] = workflow.ExecuteActivity(treeCtx, acts.ExecuteResearchTree, activities.ResearchTreeInput{
			Query:  query,
			Topic:  input.Topic,
			Config: input.Config,
		})
	}

	summaries := make([]research.Summary, len(input.Queries))
	for i, f := range futures {
		if err := f.Get(ctx, &summaries[i]); err != nil {
			logger.Error("Query tree failed", "query", input.Queries[i], "error", err)
			return ResearchResult{}, err
		}
	}

	insights, sources := research.Aggregate(summaries)

	result := ResearchResult{
		Insights: insights,
		Sources:  sources,
	}
	for _, s := range summaries {
		result.NodesExplored += s.TotalNodesExplored
		result.RelevantResults += s.TotalRelevantResults
	}

	logger.Info("Research trees aggregated",
		"nodes_explored", result.NodesExplored,
		"unique_insights", len(insights),
		"unique_sources", len(sources),
	)

	reportCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	})

	var generated activities.ReportResult
	if err := workflow.ExecuteActivity(reportCtx, acts.GenerateReport, activities.ReportInput{
		Topic:    input.Topic,
		Insights: insights,
		Sources:  sources,
	}).Get(ctx, &generated); err != nil {
		return ResearchResult{}, err
	}

	// Citation repair and source listing are deterministic, so they run
	// inline rather than as activities.
	validated := report.ValidateCitations(generated.Report, len(sources))
	result.Report = report.FormatReport(validated, sources)

	logger.Info("Deep research completed",
		"topic", input.Topic,
		"report_chars", len(result.Report),
		"inline_citations", report.CountInlineCitations(result.Report),
	)
	return result, nil
}
