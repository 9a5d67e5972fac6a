package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// DefaultLatency is the simulated fetch latency when neither the catalog nor
// an option sets one.
const DefaultLatency = 1500 * time.Millisecond

// Batch is the result of one fetch.
type Batch struct {
	// Source is the identifier as requested.
	Source string `json:"source"`

	// Resolved is the catalog entry actually served.
	Resolved string `json:"resolved"`

	// Fallback is true when Source was unknown and the default was served.
	Fallback bool `json:"fallback"`

	Records []post.Record `json:"records"`
}

// Delay waits out the simulated latency for one fetch. It returns early with
// ctx.Err() if the context is cancelled.
type Delay func(ctx context.Context, sourceID string) error

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLatency sets a fixed simulated latency. Zero resolves immediately.
func WithLatency(d time.Duration) Option {
	return func(f *Fetcher) {
		f.latency = d
	}
}

// WithDelay replaces the latency timer, e.g. with a gate that tests release
// per source to control resolution order.
func WithDelay(d Delay) Option {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// Fetcher resolves source identifiers against a catalog after a simulated
// latency.
//
// Thread-safety: Fetch is safe for concurrent use.
type Fetcher struct {
	catalog *Catalog
	latency time.Duration
	delay   Delay
}

// New creates a Fetcher over c.
func New(c *Catalog, opts ...Option) *Fetcher {
	f := &Fetcher{
		catalog: c,
		latency: DefaultLatency,
	}
	if l, ok := c.Latency(); ok {
		f.latency = l
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Catalog returns the catalog the fetcher resolves against.
func (f *Fetcher) Catalog() *Catalog {
	return f.catalog
}

// Fetch waits the simulated latency and resolves sourceID. Unknown sources
// resolve to the default batch; the only error is context cancellation.
func (f *Fetcher) Fetch(ctx context.Context, sourceID string) (Batch, error) {
	delay := f.delay
	if delay == nil {
		delay = f.sleep
	}
	if err := delay(ctx, sourceID); err != nil {
		return Batch{}, err
	}

	b := f.catalog.Resolve(sourceID)
	if b.Fallback {
		slog.Debug("unknown source, serving default", "source", sourceID, "default", b.Resolved)
	}
	return b, nil
}

func (f *Fetcher) sleep(ctx context.Context, _ string) error {
	if f.latency <= 0 {
		return nil
	}

	t := time.NewTimer(f.latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
