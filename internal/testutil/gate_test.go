package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_ReleaseAfterArrival(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- g.Delay(ctx, "a") }()

	require.NoError(t, g.WaitArrived(ctx, "a", 1))
	assert.Equal(t, 1, g.Waiting("a"))

	g.Release("a")
	require.NoError(t, <-done)
	assert.Equal(t, 0, g.Waiting("a"))
}

func TestGate_ReleaseBeforeArrival(t *testing.T) {
	g := NewGate()
	g.Release("a")

	require.NoError(t, g.Delay(context.Background(), "a"))
	assert.Equal(t, 0, g.Waiting("a"))
}

func TestGate_ReleaseOrder(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order := make(chan string, 2)
	for _, src := range []string{"a", "b"} {
		src := src
		go func() {
			if g.Delay(ctx, src) == nil {
				order <- src
			}
		}()
	}
	require.NoError(t, g.WaitArrived(ctx, "a", 1))
	require.NoError(t, g.WaitArrived(ctx, "b", 1))

	g.Release("b")
	assert.Equal(t, "b", <-order)
	g.Release("a")
	assert.Equal(t, "a", <-order)
}

func TestGate_Cancelled(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- g.Delay(ctx, "a") }()
	require.NoError(t, g.WaitArrived(context.Background(), "a", 1))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, g.Waiting("a"))
}
