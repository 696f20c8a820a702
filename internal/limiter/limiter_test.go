package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAcquireRespectsRate verifies that draining the bucket forces the next
// caller to wait roughly one refill interval.
func TestAcquireRespectsRate(t *testing.T) {
	interval := 50 * time.Millisecond
	l := New(1, interval)
	ctx := context.Background()

	// First token comes from the full bucket.
	require.NoError(t, l.Acquire(ctx))

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, interval/2, "second acquire should wait for a refill")
}

func TestAcquireCancelled(t *testing.T) {
	l := New(1, time.Hour)
	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx))

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	err := l.Acquire(cancelCtx)
	assert.Error(t, err, "acquire on a cancelled context must not block")
}

func TestNewClampsInvalidArguments(t *testing.T) {
	l := New(0, 0)
	require.NotNil(t, l)
	assert.NoError(t, l.Acquire(context.Background()))
}
