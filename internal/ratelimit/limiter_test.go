package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledWhenIntervalZero(t *testing.T) {
	l := New("test", 0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(context.Background()), "call %d should pass through an unthrottled gate", i)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, time.Duration(0), l.Interval())
}

func TestSecondRequestIsHeldBack(t *testing.T) {
	l := New("test", time.Hour)
	assert.Equal(t, time.Hour, l.Interval())

	require.NoError(t, l.Wait(context.Background()), "the first request passes immediately")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx), "second request inside the interval must be held back")
}

func TestWaitSpacesRequests(t *testing.T) {
	interval := 40 * time.Millisecond
	l := New("test", interval)

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	// Three requests need two full intervals between them.
	assert.GreaterOrEqual(t, time.Since(start), 2*interval-5*time.Millisecond)
}

func TestWaitHonoursCancellation(t *testing.T) {
	l := New("rtings", time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait for rtings")
}

func TestNilLimiterIsOpen(t *testing.T) {
	var l *Limiter

	assert.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, time.Duration(0), l.Interval())
}
