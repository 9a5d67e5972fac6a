package engine

import (
	"sync"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
	"github.com/1njure/mpit25-NetJaggers/internal/store"
)

// EditOutcome reports how a serialized-view edit landed.
type EditOutcome struct {
	// Applied is true when the text parsed and replaced the record.
	Applied bool

	// Cause is the parse failure when Applied is false.
	Cause error
}

// Projector keeps the SerializedView and PreviewView of every record
// consistent with the store, except after an unparseable serialized edit.
//
// The store owns records and snapshots; the projector owns only the two view
// strings per record.
//
// Thread-safety: all methods are safe for concurrent use. Every call holds
// the projector lock across the store access and the view update, so readers
// never see a record paired with views from a different write. A batch
// installed on the store directly, bypassing Materialize, is picked up on the
// next call with freshly derived views.
type Projector struct {
	mu    sync.Mutex
	store *store.Store
	seq   int64 // batch the views were derived from
	views []viewState
}

// NewProjector creates a projector over s and derives views for its current
// batch.
func NewProjector(s *store.Store) *Projector {
	p := &Projector{store: s}
	p.rebuild(s.Batch())
	return p
}

// Materialize installs records as the store's new batch and rebuilds every
// view from it. Returns the batch sequence number.
func (p *Projector) Materialize(records []post.Record) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.ReplaceBatch(records)
	p.rebuild(p.store.Batch())
	return p.seq
}

// rebuild derives fresh views for every record of b.
// Caller must hold p.mu or own p exclusively.
func (p *Projector) rebuild(b store.Batch) {
	p.seq = b.Seq
	p.views = make([]viewState, len(b.Records))
	for i, r := range b.Records {
		p.views[i] = synced(r)
	}
}

// refresh rebuilds the views if the store moved to another batch.
// Caller must hold p.mu.
func (p *Projector) refresh() {
	if p.store.Seq() != p.seq {
		p.rebuild(p.store.Batch())
	}
}

// OnBodyEdit sets the record's body and re-derives both views. Invalid UTF-8
// in body is replaced as in ValidText.
func (p *Projector) OnBodyEdit(id post.ID, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()

	if err := p.store.UpdateField(id, post.FieldBody, post.ValidText(body)); err != nil {
		return err
	}
	r, err := p.store.Get(id)
	if err != nil {
		return err
	}
	p.set(id, synced(r))
	return nil
}

// OnTagsEdit filters raw into hashtags, stores them and re-derives the
// serialized view. Tokens without the marker are dropped without error.
// The preview does not show tags and is left alone.
func (p *Projector) OnTagsEdit(id post.ID, raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()

	if err := p.store.UpdateField(id, post.FieldTags, post.FilterTags(post.ValidText(raw))); err != nil {
		return err
	}
	r, err := p.store.Get(id)
	if err != nil {
		return err
	}
	p.set(id, p.at(id).withSerialized(r))
	return nil
}

// OnPreviewEdit is OnBodyEdit entered through the preview. The preview keeps
// text as given, apart from invalid UTF-8.
func (p *Projector) OnPreviewEdit(id post.ID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()

	text = post.ValidText(text)

	if err := p.store.UpdateField(id, post.FieldBody, text); err != nil {
		return err
	}
	r, err := p.store.Get(id)
	if err != nil {
		return err
	}
	v := synced(r)
	v.preview = text
	p.set(id, v)
	return nil
}

// OnSerializedEdit tries to parse text as a record.
//
// On success the record's fields are replaced wholesale (its ID is kept),
// the preview follows the new body and text is kept verbatim as the
// serialized view. On failure the record is untouched and the view enters the
// dirty-unparsed state holding text. A parse failure is reported in the
// outcome; the returned error is only ever NotFound.
func (p *Projector) OnSerializedEdit(id post.ID, text string) (EditOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()

	if _, err := p.store.Get(id); err != nil {
		return EditOutcome{}, err
	}

	parsed, err := post.Parse(text)
	if err != nil {
		p.set(id, dirtyUnparsed(p.at(id), text, err))
		return EditOutcome{Cause: err}, nil
	}

	if err := p.store.Replace(id, parsed); err != nil {
		return EditOutcome{}, err
	}
	p.set(id, syncedVerbatim(text, parsed.Body))
	return EditOutcome{Applied: true}, nil
}

// ResetToOriginal restores the record from its snapshot and re-derives both
// views, discarding any divergence. Calling it twice equals calling it once.
func (p *Projector) ResetToOriginal(id post.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()

	r, err := p.store.Restore(id)
	if err != nil {
		return err
	}
	p.set(id, synced(r))
	return nil
}

// set stores v for id. If the store moved to a larger batch since the last
// refresh, the views are rebuilt from it instead.
// Caller must hold p.mu.
func (p *Projector) set(id post.ID, v viewState) {
	if p.store.Seq() != p.seq || int(id) >= len(p.views) {
		p.rebuild(p.store.Batch())
		return
	}
	p.views[id] = v
}

// at returns the views for id, or the zero state if id is past the end.
// Caller must hold p.mu.
func (p *Projector) at(id post.ID) viewState {
	if id < 0 || int(id) >= len(p.views) {
		return viewState{}
	}
	return p.views[id]
}

// Serialized returns the record's current SerializedView text.
func (p *Projector) Serialized(id post.ID) (string, error) {
	v, err := p.view(id)
	return v.serialized, err
}

// Preview returns the record's current PreviewView text.
func (p *Projector) Preview(id post.ID) (string, error) {
	v, err := p.view(id)
	return v.preview, err
}

// Views is a read of one record's derived views.
type Views struct {
	Serialized string
	Preview    string

	// Dirty is true while Serialized holds text that failed to parse.
	Dirty bool

	// Cause is the parse failure behind Dirty.
	Cause error
}

// Views returns both views of a record and its dirty state.
func (p *Projector) Views(id post.ID) (Views, error) {
	v, err := p.view(id)
	if err != nil {
		return Views{}, err
	}
	return Views{
		Serialized: v.serialized,
		Preview:    v.preview,
		Dirty:      v.dirty(),
		Cause:      v.cause,
	}, nil
}

func (p *Projector) view(id post.ID) (viewState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()

	if id < 0 || int(id) >= len(p.views) {
		return viewState{}, post.NewNotFound(id)
	}
	return p.views[id], nil
}

// recordView is one record read together with its snapshot and views.
type recordView struct {
	record   post.Record
	snapshot post.Snapshot
	view     viewState
}

// readAll returns a consistent read of every record, snapshot and view.
func (p *Projector) readAll() (int64, []recordView) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b := p.store.Batch()
	if b.Seq != p.seq {
		p.rebuild(b)
	}
	out := make([]recordView, len(b.Records))
	for i := range b.Records {
		out[i] = recordView{
			record:   b.Records[i],
			snapshot: b.Snapshots[i],
			view:     p.views[i],
		}
	}
	return b.Seq, out
}
