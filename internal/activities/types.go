package activities

import "github.com/arbor-research/arbor/internal/research"

// ResearchTreeInput starts one top-level query tree.
type ResearchTreeInput struct {
	Query  string          `json:"query"`
	Topic  string          `json:"topic"`
	Config research.Config `json:"config"`
}

// ReportInput carries the aggregated, deduplicated research output into
// report generation.
type ReportInput struct {
	Topic    string                `json:"topic"`
	Insights []string              `json:"insights"`
	Sources  []research.SourceInfo `json:"sources"`
}

// ReportResult is the generated prose before citation validation.
type ReportResult struct {
	Report string `json:"report"`
}
