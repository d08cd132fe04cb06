package research

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetAcquireRelease(t *testing.T) {
	b := NewBudget(2)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))
	assert.Equal(t, 2, b.InFlight())

	b.Release()
	assert.Equal(t, 1, b.InFlight())
	b.Release()
	assert.Equal(t, 0, b.InFlight())
}

func TestBudgetBlocksAtLimit(t *testing.T) {
	b := NewBudget(1)
	ctx := context.Background()
	require.NoError(t, b.Acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		b.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while the slot is held")
	case <-time.After(50 * time.Millisecond):
	}

	b.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never admitted after release")
	}
}

func TestBudgetAcquireCanceled(t *testing.T) {
	b := NewBudget(1)
	require.NoError(t, b.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, b.InFlight())
}

func TestBudgetConcurrencyNeverExceedsLimit(t *testing.T) {
	const limit = 3
	b := NewBudget(limit)

	var inFlight, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Acquire(context.Background()))
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			b.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(limit))
	assert.Equal(t, 0, b.InFlight())
}

func TestBudgetMinimumLimit(t *testing.T) {
	b := NewBudget(0)
	assert.Equal(t, 1, b.Limit())
}
