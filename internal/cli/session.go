package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1njure/mpit25-NetJaggers/internal/clipboard"
	"github.com/1njure/mpit25-NetJaggers/internal/engine"
	"github.com/1njure/mpit25-NetJaggers/internal/fetch"
	"github.com/1njure/mpit25-NetJaggers/internal/journal"
	"github.com/1njure/mpit25-NetJaggers/internal/post"
	"github.com/1njure/mpit25-NetJaggers/internal/store"
)

// activeRecord is the --record value that selects the session's active
// record.
const activeRecord = -1

// cliSession is a session opened for one command, with the journal it
// writes to.
type cliSession struct {
	*engine.Session
	journal *journal.Journal
}

func (s *cliSession) Close() {
	if err := s.journal.Close(); err != nil {
		slog.Error("error closing journal", "error", err)
	}
}

// loadCatalog loads the --catalog file, or the built-in catalog.
func (o *RootOptions) loadCatalog() (*fetch.Catalog, error) {
	if o.Catalog == "" {
		return fetch.DefaultCatalog()
	}
	return fetch.LoadCatalog(o.Catalog)
}

// openSession loads the catalog and opens a session with an in-memory
// journal and the configured clipboard.
func (o *RootOptions) openSession() (*cliSession, error) {
	catalog, err := o.loadCatalog()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	var fopts []fetch.Option
	if o.LatencySet {
		fopts = append(fopts, fetch.WithLatency(o.Latency))
	}

	j, err := journal.Open(journal.MemoryPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}

	cb := o.Clipboard
	if cb == nil {
		cb = clipboard.System{}
	}

	s := engine.NewSession(store.New(), fetch.New(catalog, fopts...),
		engine.WithClipboard(cb),
		engine.WithJournal(j),
		engine.WithLogger(slog.Default()),
	)
	return &cliSession{Session: s, journal: j}, nil
}

// fetchSource opens a session and fetches source into it.
func (o *RootOptions) fetchSource(cmd *cobra.Command, f *OutputFormatter, source string) (*cliSession, error) {
	s, err := o.openSession()
	if err != nil {
		_ = f.Error(ErrCodeCatalog, err.Error(), nil)
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f.VerboseLog("Fetching %s", source)
	res, err := s.Fetch(ctx, source)
	if err != nil {
		s.Close()
		return nil, f.Fail(ExitCommandError, ErrCodeFetch, "fetch failed", err)
	}
	if res.Batch.Fallback {
		f.VerboseLog("Unknown source %q, using %s", source, res.Batch.Resolved)
	}
	return s, nil
}

// recordID resolves a --record value: activeRecord selects the active
// record.
func recordID(s *cliSession, n int) post.ID {
	if n == activeRecord {
		return s.Active()
	}
	return post.ID(n)
}

// printProjection writes one record in text form.
func printProjection(w interface{ Write([]byte) (int, error) }, p engine.Projection) {
	marker := " "
	if p.Active {
		marker = "*"
	}
	title := p.Title
	if p.Emoji != "" {
		title = p.Emoji + " " + title
	}
	fmt.Fprintf(w, "%s[%d] %s: %s\n", marker, p.ID, p.Platform, title)
	fmt.Fprintf(w, "    body:    %s\n", p.Body)
	fmt.Fprintf(w, "    tags:    %s\n", previewTags(p))
	fmt.Fprintf(w, "    link:    %s\n", p.Link)
	fmt.Fprintf(w, "    preview: %d chars\n", p.PreviewChars)

	var flags []string
	if p.Modified {
		flags = append(flags, "modified")
	}
	if p.Dirty {
		flags = append(flags, "dirty: "+p.ParseError)
	}
	if p.Copied {
		flags = append(flags, "copied")
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "    state:   %s\n", strings.Join(flags, ", "))
	}
}

// previewTags renders the card tag line, e.g. "#a #b #c +2".
func previewTags(p engine.Projection) string {
	line := strings.Join(p.PreviewTags, " ")
	if p.HiddenTags > 0 {
		line += fmt.Sprintf(" +%d", p.HiddenTags)
	}
	return line
}
