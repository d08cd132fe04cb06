package research

import "fmt"

// RelevanceThreshold is the fixed score cutoff separating kept vs. discarded
// search results. It is a design constant, not a configuration knob.
const RelevanceThreshold = 70.0

// snippetMaxChars bounds the stored snippet of a search result. Raw cut, no
// word-boundary adjustment.
const snippetMaxChars = 300

// Config parameterizes one top-level research run. It is immutable once a
// build starts.
type Config struct {
	// MaxDepth is the inclusive depth bound; depth 0 is the root level.
	MaxDepth int `json:"max_depth"`
	// ResultsPerQuery is how many results each search call requests.
	ResultsPerQuery int `json:"results_per_query"`
	// FollowUpQuestionsPerNode is the branching factor below the depth bound.
	FollowUpQuestionsPerNode int `json:"follow_up_questions_per_node"`
	// ConcurrencyLimit caps simultaneous external-capability calls across the
	// entire tree, not per node.
	ConcurrencyLimit int `json:"concurrency_limit"`
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max_depth must be >= 1, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.ResultsPerQuery < 1 {
		return fmt.Errorf("%w: results_per_query must be >= 1, got %d", ErrInvalidConfig, c.ResultsPerQuery)
	}
	if c.FollowUpQuestionsPerNode < 0 {
		return fmt.Errorf("%w: follow_up_questions_per_node must be >= 0, got %d", ErrInvalidConfig, c.FollowUpQuestionsPerNode)
	}
	if c.ConcurrencyLimit < 1 {
		return fmt.Errorf("%w: concurrency_limit must be >= 1, got %d", ErrInvalidConfig, c.ConcurrencyLimit)
	}
	return nil
}

// RawResult is one search hit as returned by the search provider, full text
// included. It is retained only transiently for capability calls; nodes store
// the lightweight form.
type RawResult struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// LightweightResult is the stored form of a search hit.
type LightweightResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	// Snippet is the result content truncated to at most 300 characters.
	Snippet string `json:"snippet"`
	// Score is the raw provider score, distinct from the AI relevance score.
	Score float64 `json:"score"`
}

// Lightweight converts a raw search hit for storage on a node. Missing titles
// become "Untitled"; snippets are a raw 300-character cut of the content.
func (r RawResult) Lightweight() LightweightResult {
	title := r.Title
	if title == "" {
		title = "Untitled"
	}
	return LightweightResult{
		Title:   title,
		URL:     r.URL,
		Snippet: truncateChars(r.Text, snippetMaxChars),
		Score:   r.Score,
	}
}

// truncateChars cuts s to at most n characters (runes), with no ellipsis and
// no word-boundary adjustment.
func truncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Relevance is the classifier judgment for one search result.
type Relevance struct {
	IsRelevant     bool    `json:"is_relevant"`
	Reasoning      string  `json:"reasoning"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Node is one unit of research at one query and one tree position. A node is
// populated stage by stage by its builder call and is immutable once returned;
// it is owned by its parent's Children list (or by the caller, for roots).
type Node struct {
	Query             string              `json:"query"`
	Depth             int                 `json:"depth"`
	SearchResults     []LightweightResult `json:"search_results"`
	RelevantResults   []LightweightResult `json:"relevant_results"`
	RelevanceScores   map[string]float64  `json:"relevance_scores"`
	Insights          []string            `json:"insights"`
	FollowUpQuestions []string            `json:"follow_up_questions"`
	Children          []*Node             `json:"children"`
}

// SourceInfo is one flattened source with its originating query and the
// AI-assigned relevance score.
type SourceInfo struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Snippet        string  `json:"snippet"`
	Query          string  `json:"query"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Summary is the flattened view of one top-level query tree. AllInsights and
// AllSources follow pre-order traversal order and are not yet deduplicated.
type Summary struct {
	OriginalTopic        string       `json:"original_topic"`
	TotalNodesExplored   int          `json:"total_nodes_explored"`
	TotalRelevantResults int          `json:"total_relevant_results"`
	AllInsights          []string     `json:"all_insights"`
	AllSources           []SourceInfo `json:"all_sources"`
	ResearchTree         *Node        `json:"research_tree"`
}
