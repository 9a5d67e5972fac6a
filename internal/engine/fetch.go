package engine

import (
	"context"
	"errors"
	"strconv"

	"github.com/1njure/mpit25-NetJaggers/internal/fetch"
	"github.com/1njure/mpit25-NetJaggers/internal/journal"
)

// FetchResult reports one Session.Fetch call.
type FetchResult struct {
	// Generation numbers the call; later calls get higher generations.
	Generation int64

	// Applied is false when a newer fetch started before this one resolved;
	// its batch was discarded.
	Applied bool

	Batch fetch.Batch
}

// Fetch resolves sourceID and, if no newer fetch has started meanwhile,
// installs the batch and rebuilds every view.
//
// IsLoading is true from the start of the newest fetch until it resolves,
// including on the fallback path. The session lock is not held while the
// fetcher waits, so edits and newer fetches proceed. The only error is the
// fetcher's, which for *fetch.Fetcher means ctx was cancelled; a cancelled
// newest fetch clears the loading state and leaves the current batch in
// place.
func (s *Session) Fetch(ctx context.Context, sourceID string) (FetchResult, error) {
	gen := s.generations.Next()
	s.logger.Debug("fetch started", "source", sourceID, "generation", gen)

	b, err := s.fetcher.Fetch(ctx, sourceID)

	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.generations.Latest(gen)
	detail := map[string]string{"source": sourceID}

	if err != nil {
		if latest {
			s.settle(gen)
		}
		detail["error"] = err.Error()
		outcome := journal.OutcomeFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = journal.OutcomeCancelled
		}
		s.record(journal.OpFetch, journal.NoRecord, outcome, gen, detail)
		return FetchResult{Generation: gen}, err
	}

	detail["resolved"] = b.Resolved
	detail["fallback"] = strconv.FormatBool(b.Fallback)
	detail["records"] = strconv.Itoa(len(b.Records))

	if !latest {
		s.logger.Debug("fetch superseded", "source", sourceID, "generation", gen, "latest", s.generations.Current())
		s.record(journal.OpFetch, journal.NoRecord, journal.OutcomeSuperseded, gen, detail)
		return FetchResult{Generation: gen, Batch: b}, nil
	}

	seq := s.projector.Materialize(b.Records)
	s.source = b.Resolved
	s.active = defaultActive(s.store.Records())
	clear(s.copied)
	s.settle(gen)

	s.logger.Info("batch applied",
		"source", sourceID,
		"resolved", b.Resolved,
		"fallback", b.Fallback,
		"records", len(b.Records),
		"generation", gen,
		"batch", seq)
	s.record(journal.OpFetch, journal.NoRecord, journal.OutcomeApplied, gen, detail)

	return FetchResult{Generation: gen, Applied: true, Batch: b}, nil
}

// settle marks gen as resolved. Caller must hold s.mu.
func (s *Session) settle(gen int64) {
	if gen > s.settled {
		s.settled = gen
	}
}
