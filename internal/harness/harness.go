package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/1njure/mpit25-NetJaggers/internal/clipboard"
	"github.com/1njure/mpit25-NetJaggers/internal/engine"
	"github.com/1njure/mpit25-NetJaggers/internal/fetch"
	"github.com/1njure/mpit25-NetJaggers/internal/journal"
	"github.com/1njure/mpit25-NetJaggers/internal/post"
	"github.com/1njure/mpit25-NetJaggers/internal/store"
	"github.com/1njure/mpit25-NetJaggers/internal/testutil"
)

// waitTimeout bounds every wait on a held fetch so a broken scenario fails
// instead of hanging.
const waitTimeout = 10 * time.Second

// heldKey marks the context of a start_fetch step; only those fetches wait
// at the gate.
type heldKey struct{}

// Harness executes one scenario against a real session.
// It runs with a manual wall clock, a fixed session ID and zero fetch latency
// except for held fetches.
type Harness struct {
	session   *engine.Session
	journal   *journal.Journal
	clipboard *clipboard.Memory
	clock     *testutil.ManualClock
	gate      *testutil.Gate

	arrivals map[string]int
	pending  map[string][]chan fetchOutcome
}

type fetchOutcome struct {
	res engine.FetchResult
	err error
}

// stepOutcome is what a step reports for its expectations.
type stepOutcome struct {
	err     error
	applied *bool
	record  *post.ID
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh session with an in-memory journal for
// isolation. Execution flow:
//  1. Load the catalog and open the journal
//  2. Execute steps, checking each step's expect clause
//  3. Cancel fetches still held at the gate
//  4. Collect the journal as the trace and evaluate assertions
//
// The returned error reports a scenario that could not be executed (bad
// catalog, release without a held fetch); failed expectations are recorded
// in the Result.
func Run(scenario *Scenario) (*Result, error) {
	catalog, err := loadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}

	j, err := journal.Open(journal.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	h := &Harness{
		journal:   j,
		clipboard: clipboard.NewMemory(),
		clock:     testutil.NewManualClock(time.Time{}),
		gate:      testutil.NewGate(),
		arrivals:  make(map[string]int),
		pending:   make(map[string][]chan fetchOutcome),
	}

	fetcher := fetch.New(catalog, fetch.WithDelay(h.delay))
	h.session = engine.NewSession(store.New(), fetcher,
		engine.WithClipboard(h.clipboard),
		engine.WithJournal(j),
		engine.WithNow(h.clock.Now),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.SessionID)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := NewResult()
	for i, step := range scenario.Steps {
		out, err := h.execute(ctx, step)
		if err != nil {
			h.drain(cancel)
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
		for _, msg := range h.checkExpect(step, out) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
		}
	}
	h.drain(cancel)

	entries, err := j.Entries(context.Background(), h.session.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	for _, e := range entries {
		result.Trace = append(result.Trace, newTraceEvent(e))
	}
	result.SessionID = h.session.ID()
	result.Final = h.session.View()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadCatalog(path string) (*fetch.Catalog, error) {
	if path == "" {
		return fetch.DefaultCatalog()
	}
	return fetch.LoadCatalog(path)
}

// delay holds fetches started by start_fetch at the gate; all others resolve
// immediately.
func (h *Harness) delay(ctx context.Context, sourceID string) error {
	if ctx.Value(heldKey{}) == nil {
		return nil
	}
	return h.gate.Delay(ctx, sourceID)
}

// drain cancels fetches still held at the gate and waits for them, so their
// cancellation is journaled before the trace is read.
func (h *Harness) drain(cancel context.CancelFunc) {
	cancel()
	for src, chans := range h.pending {
		for _, ch := range chans {
			<-ch
		}
		delete(h.pending, src)
	}
}

func (h *Harness) execute(ctx context.Context, st Step) (stepOutcome, error) {
	s := h.session

	switch st.Op {
	case OpFetch:
		res, err := s.Fetch(ctx, st.Source)
		return stepOutcome{err: err, applied: &res.Applied}, nil

	case OpStartFetch:
		return stepOutcome{}, h.startFetch(ctx, st.Source)

	case OpRelease:
		fo, err := h.release(st.Source)
		if err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{err: fo.err, applied: &fo.res.Applied}, nil

	case OpActivate:
		return stepOutcome{err: s.Activate(st.Target)}, nil

	case OpAdvance:
		d, err := time.ParseDuration(st.Duration)
		if err != nil {
			return stepOutcome{}, fmt.Errorf("invalid duration: %w", err)
		}
		h.clock.Advance(d)
		return stepOutcome{}, nil

	case OpCheck:
		return stepOutcome{}, nil

	case OpCopyAll:
		_, err := s.CopyAll(ctx)
		return stepOutcome{err: err}, nil
	}

	id := h.recordID(st)
	out := stepOutcome{record: &id}

	switch st.Op {
	case OpEditBody:
		out.err = s.EditBody(id, st.Text)
	case OpEditTags:
		out.err = s.EditTags(id, st.Text)
	case OpEditPreview:
		out.err = s.EditPreview(id, st.Text)
	case OpEditSerialized:
		eo, err := s.EditSerialized(id, st.Text)
		out.err = err
		if err == nil {
			out.applied = &eo.Applied
		}
	case OpReset:
		out.err = s.Reset(id)
	case OpCopy:
		out.err = s.Copy(ctx, id)
	case OpPublish:
		out.err = s.Publish(ctx, id)
	default:
		return stepOutcome{}, fmt.Errorf("unknown op %q", st.Op)
	}
	return out, nil
}

func (h *Harness) recordID(st Step) post.ID {
	if st.Record != nil {
		return post.ID(*st.Record)
	}
	return h.session.Active()
}

// startFetch launches a held fetch and waits until it reaches the gate, so
// fetch generations follow step order.
func (h *Harness) startFetch(ctx context.Context, src string) error {
	ch := make(chan fetchOutcome, 1)
	h.pending[src] = append(h.pending[src], ch)
	h.arrivals[src]++

	held := context.WithValue(ctx, heldKey{}, true)
	go func() {
		res, err := h.session.Fetch(held, src)
		ch <- fetchOutcome{res: res, err: err}
	}()

	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()
	if err := h.gate.WaitArrived(waitCtx, src, h.arrivals[src]); err != nil {
		return fmt.Errorf("fetch of %q never started: %w", src, err)
	}
	return nil
}

// release lets the oldest held fetch of src resolve and waits for it.
func (h *Harness) release(src string) (fetchOutcome, error) {
	q := h.pending[src]
	if len(q) == 0 {
		return fetchOutcome{}, fmt.Errorf("no held fetch for %q", src)
	}
	ch := q[0]
	h.pending[src] = q[1:]

	h.gate.Release(src)
	select {
	case fo := <-ch:
		return fo, nil
	case <-time.After(waitTimeout):
		return fetchOutcome{}, fmt.Errorf("fetch of %q did not resolve", src)
	}
}

// checkExpect compares a step's outcome and the session state after it with
// the step's expect clause. A step without expect must not fail.
func (h *Harness) checkExpect(st Step, out stepOutcome) []string {
	var errs []string

	ex := st.Expect
	if ex == nil {
		if out.err != nil {
			errs = append(errs, fmt.Sprintf("unexpected error: %v", out.err))
		}
		return errs
	}

	switch {
	case ex.Error == "" && out.err != nil:
		errs = append(errs, fmt.Sprintf("unexpected error: %v", out.err))
	case ex.Error != "" && out.err == nil:
		errs = append(errs, fmt.Sprintf("error: expected %s, got none", ex.Error))
	case ex.Error != "" && string(post.KindOf(out.err)) != ex.Error:
		errs = append(errs, fmt.Sprintf("error: expected %s, got %v", ex.Error, out.err))
	}

	if ex.Applied != nil {
		if out.applied == nil {
			errs = append(errs, "applied: step reports no outcome")
		} else {
			compare(&errs, "applied", ex.Applied, *out.applied)
		}
	}

	view := h.session.View()
	compare(&errs, "loading", ex.Loading, view.Loading)
	compare(&errs, "source", ex.Source, view.Source)
	compare(&errs, "active", ex.Active, int(view.Active))
	compare(&errs, "records", ex.Records, len(view.Records))

	if ex.hasRecordChecks() {
		id := h.session.Active()
		switch {
		case ex.Record != nil:
			id = post.ID(*ex.Record)
		case out.record != nil:
			id = *out.record
		}

		if id < 0 || int(id) >= len(view.Records) {
			errs = append(errs, fmt.Sprintf("record %d: not in batch", id))
		} else {
			p := view.Records[id]
			prefix := fmt.Sprintf("record %d ", id)
			compare(&errs, prefix+"body", ex.Body, p.Body)
			compare(&errs, prefix+"preview", ex.Preview, p.Preview)
			compare(&errs, prefix+"tags", ex.Tags, p.Tags)
			compare(&errs, prefix+"serialized", ex.Serialized, p.Serialized)
			compare(&errs, prefix+"dirty", ex.Dirty, p.Dirty)
			compare(&errs, prefix+"modified", ex.Modified, p.Modified)
			compare(&errs, prefix+"copied", ex.Copied, p.Copied)
		}
	}

	if ex.Clipboard != nil {
		text, err := h.clipboard.ReadAll()
		if err != nil {
			errs = append(errs, fmt.Sprintf("clipboard: %v", err))
		}
		compare(&errs, "clipboard", ex.Clipboard, text)
	}

	return errs
}

func (ex *Expect) hasRecordChecks() bool {
	return ex.Record != nil || ex.Body != nil || ex.Preview != nil || ex.Tags != nil ||
		ex.Serialized != nil || ex.Dirty != nil || ex.Modified != nil || ex.Copied != nil
}

func compare[T comparable](errs *[]string, field string, want *T, got T) {
	if want != nil && *want != got {
		*errs = append(*errs, fmt.Sprintf("%s: expected %#v, got %#v", field, *want, got))
	}
}
