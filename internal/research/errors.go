package research

import (
	"errors"
	"fmt"
)

// Base error types
var (
	ErrSearchUnavailable = errors.New("search provider unavailable")
	ErrClassification    = errors.New("structured output classification failed")
	ErrInvalidConfig     = errors.New("invalid research config")
)

// NodeError wraps a failure during one node's build with the query, depth,
// and stage at which it occurred. Failures are tree-fatal: the enclosing
// BuildTree call returns the NodeError of the deepest failing stage.
type NodeError struct {
	Query string
	Depth int
	Stage string
	Err   error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("research %s failed at depth %d for query %q: %v",
		e.Stage, e.Depth, e.Query, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func newNodeError(query string, depth int, stage string, err error) *NodeError {
	// Do not re-wrap: keep the innermost node context (query/depth of the
	// stage that actually failed) as recursion unwinds.
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne
	}
	return &NodeError{Query: query, Depth: depth, Stage: stage, Err: err}
}
