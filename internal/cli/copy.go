package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1njure/mpit25-NetJaggers/internal/clipboard"
	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// CopyOptions holds flags for the copy command.
type CopyOptions struct {
	*RootOptions
	Record int
	All    bool
}

// CopyResult reports what was copied.
type CopyResult struct {
	Record  *int   `json:"record,omitempty"`
	Records int    `json:"records"`
	Bytes   int    `json:"bytes"`
	Text    string `json:"text"`
}

// NewCopyCommand creates the copy command.
func NewCopyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CopyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "copy <source>",
		Short: "Copy serialized records to the clipboard",
		Long: `Fetch a source and copy a record's serialized view to the system
clipboard, or every record as one JSON array with --all.

Exit codes:
  0 - Copied
  1 - No such record
  2 - Command error (no clipboard available, bad catalog, etc.)

Examples:
  postsync copy https://example.com/news
  postsync copy https://example.com/news --record 2
  postsync copy https://example.com/news --all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Record, "record", activeRecord, "record ID (default: the active record)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "copy every record as a JSON array")
	cmd.MarkFlagsMutuallyExclusive("record", "all")

	return cmd
}

func runCopy(opts *CopyOptions, source string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := opts.fetchSource(cmd, f, source)
	if err != nil {
		return err
	}
	defer s.Close()

	var result CopyResult
	if opts.All {
		text, err := s.CopyAll(cmd.Context())
		if err != nil {
			return copyFailed(f, err)
		}
		result = CopyResult{Records: len(s.Projections()), Bytes: len(text), Text: text}
	} else {
		id := recordID(s, opts.Record)
		if err := s.Copy(cmd.Context(), id); err != nil {
			return copyFailed(f, err)
		}
		text, err := s.Projector().Serialized(id)
		if err != nil {
			return copyFailed(f, err)
		}
		n := int(id)
		result = CopyResult{Record: &n, Records: 1, Bytes: len(text), Text: text}
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	if result.Record != nil {
		fmt.Fprintf(f.Writer, "Copied record %d to clipboard (%d bytes)\n", *result.Record, result.Bytes)
	} else {
		fmt.Fprintf(f.Writer, "Copied %d record(s) to clipboard (%d bytes)\n", result.Records, result.Bytes)
	}
	f.VerboseLog("%s", result.Text)
	return nil
}

func copyFailed(f *OutputFormatter, err error) error {
	if post.IsNotFound(err) {
		return f.Fail(ExitFailure, ErrCodeNotFound, "copy failed", err)
	}
	if errors.Is(err, clipboard.ErrUnsupported) {
		return f.Fail(ExitCommandError, ErrCodeClipboard, "no clipboard available", err)
	}
	return f.Fail(ExitCommandError, ErrCodeClipboard, "copy failed", err)
}
