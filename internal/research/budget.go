package research

import (
	"context"
	"sync"

	ometrics "github.com/arbor-research/arbor/internal/metrics"
)

// Budget is the single tree-wide admission pool for external-capability
// calls. At most `limit` holders may be in flight at any instant, shared by
// relevance scoring, searches, synthesis, and question generation across the
// whole call tree. Waiters are admitted as slots free up; no ordering beyond
// eventual admission is guaranteed.
type Budget struct {
	limit     int
	current   int
	semaphore chan struct{}
	mu        sync.Mutex
}

// NewBudget creates an admission pool of the given size. Size must be >= 1;
// Config.Validate enforces that at the run boundary.
func NewBudget(limit int) *Budget {
	if limit < 1 {
		limit = 1
	}
	return &Budget{
		limit:     limit,
		semaphore: make(chan struct{}, limit),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (b *Budget) Acquire(ctx context.Context) error {
	select {
	case b.semaphore <- struct{}{}:
		b.mu.Lock()
		b.current++
		ometrics.BudgetInFlight.Set(float64(b.current))
		b.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (b *Budget) Release() {
	select {
	case <-b.semaphore:
		b.mu.Lock()
		b.current--
		ometrics.BudgetInFlight.Set(float64(b.current))
		b.mu.Unlock()
	default:
		// Release without matching Acquire; ignore rather than block.
	}
}

// InFlight returns the current number of admitted holders.
func (b *Budget) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Limit returns the pool size.
func (b *Budget) Limit() int {
	return b.limit
}
