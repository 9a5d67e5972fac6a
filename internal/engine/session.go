package engine

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/1njure/mpit25-NetJaggers/internal/fetch"
	"github.com/1njure/mpit25-NetJaggers/internal/journal"
	"github.com/1njure/mpit25-NetJaggers/internal/post"
	"github.com/1njure/mpit25-NetJaggers/internal/store"
)

// DefaultCopyFeedback is how long a record reports Copied after a copy.
const DefaultCopyFeedback = 2 * time.Second

// ErrNoClipboard is returned by Copy and CopyAll when the session has no
// clipboard.
var ErrNoClipboard = errors.New("no clipboard configured")

// Fetcher resolves a source identifier into a batch.
// Implemented by *fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, sourceID string) (fetch.Batch, error)
}

// Clipboard receives copied text.
// Implemented by clipboard.System and clipboard.Memory.
type Clipboard interface {
	WriteAll(text string) error
}

// Publisher hands a validated record to an external pipeline. Its error is
// logged and never changes the outcome of Publish.
type Publisher interface {
	Publish(ctx context.Context, r post.Record) error
}

// Recorder journals session operations.
// Implemented by *journal.Journal.
type Recorder interface {
	Append(ctx context.Context, e journal.Entry) error
}

// Session is the controller for one editing session: it owns the active
// record, orchestrates fetches and forwards edits to the projector.
//
// Thread-safety: all methods are safe for concurrent use. Edits are
// serialized by the session lock. Fetch waits for its result without holding
// the lock, so a newer Fetch can start while an older one is pending; only
// the newest generation's result is applied.
type Session struct {
	id        string
	store     *store.Store
	projector *Projector
	fetcher   Fetcher

	clipboard    Clipboard
	publisher    Publisher
	recorder     Recorder
	logger       *slog.Logger
	now          func() time.Time
	copyFeedback time.Duration
	idGen        IDGenerator

	generations *Clock // fetch generations
	seq         *Clock // journal entries

	mu      sync.Mutex
	settled int64 // newest generation that has resolved
	active  post.ID
	source  string
	copied  map[post.ID]time.Time // record -> feedback deadline
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClipboard sets the clipboard Copy and CopyAll write to.
func WithClipboard(c Clipboard) SessionOption {
	return func(s *Session) {
		s.clipboard = c
	}
}

// WithPublisher sets the collaborator Publish hands records to.
func WithPublisher(p Publisher) SessionOption {
	return func(s *Session) {
		s.publisher = p
	}
}

// WithJournal records every operation to r.
func WithJournal(r Recorder) SessionOption {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithLogger sets the session logger. Default: slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithCopyFeedback sets how long a record reports Copied.
//
// Default: 2s (DefaultCopyFeedback)
func WithCopyFeedback(d time.Duration) SessionOption {
	return func(s *Session) {
		s.copyFeedback = d
	}
}

// WithNow sets the wall clock used for copy feedback only.
func WithNow(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithIDGenerator sets the session ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) SessionOption {
	return func(s *Session) {
		s.idGen = g
	}
}

// NewSession creates a session over st that fetches through f.
// The store is shared, not copied; any batch already in it is projected.
func NewSession(st *store.Store, f Fetcher, opts ...SessionOption) *Session {
	s := &Session{
		store:        st,
		fetcher:      f,
		logger:       slog.Default(),
		now:          time.Now,
		copyFeedback: DefaultCopyFeedback,
		idGen:        UUIDv7Generator{},
		generations:  NewClock(),
		seq:          NewClock(),
		copied:       make(map[post.ID]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.id = s.idGen.Generate()
	s.projector = NewProjector(st)
	s.active = defaultActive(st.Records())
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session identifier stamped on journal entries.
func (s *Session) ID() string {
	return s.id
}

// Projector returns the session's projector.
func (s *Session) Projector() *Projector {
	return s.projector
}

// IsLoading reports whether the newest fetch has not resolved yet.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading()
}

// loading: caller must hold s.mu.
func (s *Session) loading() bool {
	return s.generations.Current() > s.settled
}

// Generation returns the newest fetch generation (0 before any fetch).
func (s *Session) Generation() int64 {
	return s.generations.Current()
}

// Active returns the active record ID.
func (s *Session) Active() post.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Source returns the catalog entry of the applied batch.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Record returns the current record.
func (s *Session) Record(id post.ID) (post.Record, error) {
	return s.store.Get(id)
}

// Snapshot returns the record's snapshot.
func (s *Session) Snapshot(id post.ID) (post.Snapshot, error) {
	return s.store.GetSnapshot(id)
}

// Activate makes a record active. target is a numeric record ID or a
// platform tag; a platform selects its first record in batch order.
// Fails with NotFound if nothing matches.
func (s *Session) Activate(target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.match(strings.TrimSpace(target))
	if err != nil {
		s.record(journal.OpActivate, journal.NoRecord, outcomeOf(err), 0, map[string]string{"target": target})
		return err
	}
	s.active = id
	s.record(journal.OpActivate, id, journal.OutcomeOK, 0, map[string]string{"target": target})
	return nil
}

// match resolves an Activate target. Caller must hold s.mu.
func (s *Session) match(target string) (post.ID, error) {
	if n, err := strconv.Atoi(target); err == nil {
		id := post.ID(n)
		if _, err := s.store.Get(id); err != nil {
			return 0, err
		}
		return id, nil
	}

	if p, ok := post.ParsePlatform(target); ok {
		for _, r := range s.store.Records() {
			if r.Platform == p {
				return r.ID, nil
			}
		}
	}
	return 0, post.NewTargetNotFound(target)
}

// defaultActive picks the first telegram record, else record 0.
func defaultActive(records []post.Record) post.ID {
	for _, r := range records {
		if r.Platform == post.PlatformTelegram {
			return r.ID
		}
	}
	return 0
}

// EditBody sets a record's body through the structured view.
func (s *Session) EditBody(id post.ID, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.projector.OnBodyEdit(id, body)
	s.record(journal.OpEditBody, id, outcomeOf(err), 0, nil)
	return err
}

// EditTags sets a record's hashtags from free text; tokens without the #
// marker are dropped.
func (s *Session) EditTags(id post.ID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.projector.OnTagsEdit(id, raw)
	s.record(journal.OpEditTags, id, outcomeOf(err), 0, map[string]string{"raw": raw})
	return err
}

// EditPreview sets a record's body through the preview.
func (s *Session) EditPreview(id post.ID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.projector.OnPreviewEdit(id, text)
	s.record(journal.OpEditPreview, id, outcomeOf(err), 0, nil)
	return err
}

// EditSerialized replaces a record from SerializedView text. Unparseable
// text leaves the record untouched and is reported in the outcome, not as an
// error; the error is only ever NotFound.
func (s *Session) EditSerialized(id post.ID, text string) (EditOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.projector.OnSerializedEdit(id, text)
	switch {
	case err != nil:
		s.record(journal.OpEditSerialized, id, outcomeOf(err), 0, nil)
	case out.Applied:
		s.record(journal.OpEditSerialized, id, journal.OutcomeApplied, 0, nil)
	default:
		s.logger.Debug("serialized view does not parse", "record", int(id), "error", out.Cause)
		s.record(journal.OpEditSerialized, id, journal.OutcomeDirty, 0, map[string]string{"cause": out.Cause.Error()})
	}
	return out, err
}

// Reset restores a record from its snapshot.
func (s *Session) Reset(id post.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.projector.ResetToOriginal(id)
	s.record(journal.OpReset, id, outcomeOf(err), 0, nil)
	return err
}

// Copy writes the record's current SerializedView to the clipboard and marks
// the record Copied for the feedback window. A clipboard failure is returned
// and changes no state.
func (s *Session) Copy(_ context.Context, id post.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.projector.Serialized(id)
	if err == nil {
		err = s.writeClipboard(text)
	}
	if err != nil {
		s.record(journal.OpCopy, id, outcomeOf(err), 0, nil)
		return err
	}

	s.copied[id] = s.now().Add(s.copyFeedback)
	s.record(journal.OpCopy, id, journal.OutcomeOK, 0, map[string]string{"bytes": strconv.Itoa(len(text))})
	return nil
}

// CopyAll writes every record to the clipboard as one JSON array, using the
// current SerializedView of synced records and the record itself where the
// view is dirty. Returns the copied text.
func (s *Session) CopyAll(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, views := s.projector.readAll()
	records := make([]post.Record, len(views))
	for i, rv := range views {
		records[i] = rv.record
		if rv.view.dirty() {
			continue
		}
		if r, err := post.Parse(rv.view.serialized); err == nil {
			records[i] = r
		}
	}

	text := post.SerializeList(records)
	if err := s.writeClipboard(text); err != nil {
		s.record(journal.OpCopyAll, journal.NoRecord, outcomeOf(err), 0, nil)
		return "", err
	}
	s.record(journal.OpCopyAll, journal.NoRecord, journal.OutcomeOK, 0, map[string]string{"records": strconv.Itoa(len(records))})
	return text, nil
}

func (s *Session) writeClipboard(text string) error {
	if s.clipboard == nil {
		return ErrNoClipboard
	}
	return s.clipboard.WriteAll(text)
}

// Projections returns the per-record projections of the current batch.
func (s *Session) Projections() []Projection {
	return s.View().Records
}

// View returns a consistent read of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, views := s.projector.readAll()
	now := s.now()

	out := View{
		Loading:    s.loading(),
		Generation: s.generations.Current(),
		Batch:      seq,
		Source:     s.source,
		Active:     s.active,
		Records:    make([]Projection, len(views)),
	}
	for i, rv := range views {
		p := project(rv)
		if deadline, ok := s.copied[p.ID]; ok && now.Before(deadline) {
			p.Copied = true
		}
		p.Active = p.ID == s.active
		out.Records[i] = p
	}
	return out
}

// record appends a journal entry. Journal failures are logged and never
// fail the operation. Caller must hold s.mu.
func (s *Session) record(op journal.Op, id post.ID, outcome string, generation int64, detail map[string]string) {
	if s.recorder == nil {
		return
	}
	e := journal.Entry{
		SessionID:  s.id,
		Seq:        s.seq.Next(),
		Op:         op,
		RecordID:   id,
		Outcome:    outcome,
		Generation: generation,
		Detail:     detail,
	}
	if err := s.recorder.Append(context.Background(), e); err != nil {
		s.logger.Warn("journal append failed", "op", op, "error", err)
	}
}

// outcomeOf maps an operation error to a journal outcome.
func outcomeOf(err error) string {
	if err == nil {
		return journal.OutcomeOK
	}
	if kind := post.KindOf(err); kind != "" {
		return string(kind)
	}
	return journal.OutcomeFailed
}
