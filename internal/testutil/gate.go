package testutil

import (
	"context"
	"sync"
)

// Gate is a fetch delay that holds each fetch until the test releases its
// source, so tests decide the order in which concurrent fetches resolve.
//
// Pass Gate.Delay to fetch.WithDelay. Release may come before the fetch
// arrives; the fetch then passes straight through.
//
// Thread-safety: All methods are safe for concurrent use.
type Gate struct {
	mu       sync.Mutex
	waiting  map[string][]chan struct{}
	released map[string]int
	arrivals map[string]int
	changed  chan struct{}
}

// NewGate creates a gate with every source closed.
func NewGate() *Gate {
	return &Gate{
		waiting:  make(map[string][]chan struct{}),
		released: make(map[string]int),
		arrivals: make(map[string]int),
		changed:  make(chan struct{}),
	}
}

// Delay blocks until sourceID is released or ctx is done.
func (g *Gate) Delay(ctx context.Context, sourceID string) error {
	g.mu.Lock()
	g.arrivals[sourceID]++
	close(g.changed)
	g.changed = make(chan struct{})

	if g.released[sourceID] > 0 {
		g.released[sourceID]--
		g.mu.Unlock()
		return nil
	}

	ch := make(chan struct{})
	g.waiting[sourceID] = append(g.waiting[sourceID], ch)
	g.mu.Unlock()

	select {
	case <-ctx.Done():
		g.drop(sourceID, ch)
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// Release lets the oldest fetch waiting on sourceID through, or the next one
// to arrive if none is waiting.
func (g *Gate) Release(sourceID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if q := g.waiting[sourceID]; len(q) > 0 {
		close(q[0])
		g.waiting[sourceID] = q[1:]
		return
	}
	g.released[sourceID]++
}

// WaitArrived blocks until n fetches in total have reached the gate for
// sourceID, or ctx is done.
func (g *Gate) WaitArrived(ctx context.Context, sourceID string, n int) error {
	for {
		g.mu.Lock()
		if g.arrivals[sourceID] >= n {
			g.mu.Unlock()
			return nil
		}
		ch := g.changed
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Waiting returns how many fetches are held on sourceID.
func (g *Gate) Waiting(sourceID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiting[sourceID])
}

func (g *Gate) drop(sourceID string, ch chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()

	q := g.waiting[sourceID]
	for i, c := range q {
		if c == ch {
			g.waiting[sourceID] = append(q[:i:i], q[i+1:]...)
			return
		}
	}
}
