package engine

import "github.com/1njure/mpit25-NetJaggers/internal/post"

// viewKind tags a record's view state.
type viewKind int

const (
	// viewSynced: the serialized view parses to the record.
	viewSynced viewKind = iota

	// viewDirtyUnparsed: the serialized view holds text that failed to parse;
	// the record kept its previous values.
	viewDirtyUnparsed
)

func (k viewKind) String() string {
	if k == viewDirtyUnparsed {
		return "dirty-unparsed"
	}
	return "synced"
}

// viewState is the per-record pair of derived views.
//
// Build values with synced, syncedVerbatim or dirtyUnparsed; cause is set
// only in the dirty state.
type viewState struct {
	kind       viewKind
	serialized string
	preview    string
	cause      error
}

// synced derives both views from r.
func synced(r post.Record) viewState {
	return viewState{
		kind:       viewSynced,
		serialized: post.Serialize(r),
		preview:    r.Body,
	}
}

// syncedVerbatim keeps text the user typed as the serialized view; text must
// already have parsed to a record whose body is preview.
func syncedVerbatim(text, preview string) viewState {
	return viewState{
		kind:       viewSynced,
		serialized: text,
		preview:    preview,
	}
}

// dirtyUnparsed keeps unparseable text as the serialized view and leaves the
// preview alone.
func dirtyUnparsed(prev viewState, text string, cause error) viewState {
	return viewState{
		kind:       viewDirtyUnparsed,
		serialized: text,
		preview:    prev.preview,
		cause:      cause,
	}
}

// withSerialized recomputes the serialized view from r and clears any
// divergence, keeping the preview as is.
func (v viewState) withSerialized(r post.Record) viewState {
	return viewState{
		kind:       viewSynced,
		serialized: post.Serialize(r),
		preview:    v.preview,
	}
}

func (v viewState) dirty() bool {
	return v.kind == viewDirtyUnparsed
}
