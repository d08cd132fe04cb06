package activities

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	ometrics "github.com/arbor-research/arbor/internal/metrics"
	"github.com/arbor-research/arbor/internal/report"
	"github.com/arbor-research/arbor/internal/research"
)

// Activities hosts the worker-side dependencies for the research workflow.
// The engine owns the recursive build; activities add durability boundaries,
// logging, and metrics around it.
type Activities struct {
	engine  *research.Engine
	reports *report.Generator
}

// NewActivities wires the engine and report generator.
func NewActivities(engine *research.Engine, reports *report.Generator) *Activities {
	return &Activities{engine: engine, reports: reports}
}

// ExecuteResearchTree builds one top-level query tree and flattens it. The
// whole tree is one activity: the engine manages its own concurrency budget
// internally, and a partial tree is useless for report synthesis, so retries
// restart the tree from its root.
func (a *Activities) ExecuteResearchTree(ctx context.Context, in ResearchTreeInput) (research.Summary, error) {
	logger := activity.GetLogger(ctx)
	runID := uuid.New().String()[:8]
	start := time.Now()

	logger.Info("Research tree starting",
		"run_id", runID,
		"query", in.Query,
		"max_depth", in.Config.MaxDepth,
		"concurrency_limit", in.Config.ConcurrencyLimit,
	)
	ometrics.TreesStarted.Inc()

	root, err := a.engine.BuildTree(ctx, in.Query, in.Topic, in.Config)
	if err != nil {
		ometrics.RecordTreeMetrics("error", time.Since(start).Seconds(), 0, 0)
		logger.Error("Research tree failed", "run_id", runID, "error", err)
		if errors.Is(err, research.ErrInvalidConfig) {
			// Bad configuration never heals on retry.
			return research.Summary{}, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidConfig", err)
		}
		return research.Summary{}, err
	}

	summary := research.Flatten(in.Topic, root)
	ometrics.RecordTreeMetrics("ok", time.Since(start).Seconds(),
		summary.TotalNodesExplored, summary.TotalRelevantResults)

	logger.Info("Research tree completed",
		"run_id", runID,
		"query", in.Query,
		"nodes_explored", summary.TotalNodesExplored,
		"relevant_results", summary.TotalRelevantResults,
		"insights", len(summary.AllInsights),
		"elapsed", time.Since(start).String(),
	)
	return summary, nil
}

// GenerateReport produces report prose from the aggregated research output.
// Citation validation runs in the workflow, not here, so a retried report
// never skips repair.
func (a *Activities) GenerateReport(ctx context.Context, in ReportInput) (ReportResult, error) {
	logger := activity.GetLogger(ctx)

	text, err := a.reports.Generate(ctx, in.Topic, in.Insights, in.Sources)
	if err != nil {
		logger.Error("Report generation failed", "topic", in.Topic, "error", err)
		return ReportResult{}, err
	}
	return ReportResult{Report: text}, nil
}
