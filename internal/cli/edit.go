package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/1njure/mpit25-NetJaggers/internal/engine"
	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Record         int
	Body           string
	Tags           string
	Preview        string
	SerializedFile string // "-" reads standard input
	Reset          bool
}

// EditStep is one applied edit and how it ended.
type EditStep struct {
	Op      string `json:"op"`
	Outcome string `json:"outcome"`
	Cause   string `json:"cause,omitempty"`
}

// EditResult is the edited record after every step.
type EditResult struct {
	Steps  []EditStep        `json:"steps"`
	Record engine.Projection `json:"record"`
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <source>",
		Short: "Fetch a source and edit one record",
		Long: `Fetch a source, apply edits to one record and print the result.

Edits run in a fixed order: --body, --tags, --preview, --serialized-file,
then --reset. A serialized text that does not parse leaves the record
untouched and the record is reported dirty.

Examples:
  postsync edit https://example.com/news --record 1 --body "New text"
  postsync edit https://example.com/news --tags "#a not-a-tag #b"
  postsync edit https://example.com/news --record 2 --serialized-file post.json
  cat post.json | postsync edit https://example.com/news --serialized-file -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Record, "record", activeRecord, "record ID (default: the active record)")
	cmd.Flags().StringVar(&opts.Body, "body", "", "new body text")
	cmd.Flags().StringVar(&opts.Tags, "tags", "", "new hashtags, space separated")
	cmd.Flags().StringVar(&opts.Preview, "preview", "", "new preview text")
	cmd.Flags().StringVar(&opts.SerializedFile, "serialized-file", "", "file with new serialized text (- for stdin)")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "restore the record from its snapshot")

	return cmd
}

// editAction applies one edit to the session.
type editAction struct {
	op    string
	apply func(s *cliSession, id post.ID) (EditStep, error)
}

func runEdit(opts *EditOptions, source string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	actions, err := opts.actions(cmd)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeReadFile, "failed to read serialized text", err)
	}
	if len(actions) == 0 {
		_ = f.Error(ErrCodeGeneric, "nothing to edit", nil)
		return NewExitError(ExitCommandError, "nothing to edit: pass --body, --tags, --preview, --serialized-file or --reset")
	}

	s, err := opts.fetchSource(cmd, f, source)
	if err != nil {
		return err
	}
	defer s.Close()

	id := recordID(s, opts.Record)
	result := EditResult{Steps: make([]EditStep, 0, len(actions))}
	for _, a := range actions {
		step, err := a.apply(s, id)
		if err != nil {
			return f.Fail(ExitFailure, errorCode(err), a.op+" failed", err)
		}
		step.Op = a.op
		result.Steps = append(result.Steps, step)
		f.VerboseLog("%s on record %d: %s", a.op, id, step.Outcome)
	}

	view := s.View()
	result.Record = view.Records[id]

	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	for _, step := range result.Steps {
		fmt.Fprintf(w, "%s: %s\n", step.Op, step.Outcome)
	}
	fmt.Fprintln(w)
	printProjection(w, result.Record)
	return nil
}

// actions collects the requested edits in application order. Flags are
// detected with Changed so an empty --body is a real edit.
func (o *EditOptions) actions(cmd *cobra.Command) ([]editAction, error) {
	var out []editAction
	flags := cmd.Flags()

	if flags.Changed("body") {
		body := o.Body
		out = append(out, editAction{op: "edit_body", apply: func(s *cliSession, id post.ID) (EditStep, error) {
			return stepOf(s.EditBody(id, body))
		}})
	}
	if flags.Changed("tags") {
		tags := o.Tags
		out = append(out, editAction{op: "edit_tags", apply: func(s *cliSession, id post.ID) (EditStep, error) {
			return stepOf(s.EditTags(id, tags))
		}})
	}
	if flags.Changed("preview") {
		preview := o.Preview
		out = append(out, editAction{op: "edit_preview", apply: func(s *cliSession, id post.ID) (EditStep, error) {
			return stepOf(s.EditPreview(id, preview))
		}})
	}
	if o.SerializedFile != "" {
		text, err := readText(cmd, o.SerializedFile)
		if err != nil {
			return nil, err
		}
		out = append(out, editAction{op: "edit_serialized", apply: func(s *cliSession, id post.ID) (EditStep, error) {
			eo, err := s.EditSerialized(id, text)
			if err != nil || eo.Applied {
				return stepOf(err)
			}
			return EditStep{Outcome: "dirty", Cause: eo.Cause.Error()}, nil
		}})
	}
	if o.Reset {
		out = append(out, editAction{op: "reset", apply: func(s *cliSession, id post.ID) (EditStep, error) {
			return stepOf(s.Reset(id))
		}})
	}
	return out, nil
}

func stepOf(err error) (EditStep, error) {
	if err != nil {
		return EditStep{}, err
	}
	return EditStep{Outcome: "ok"}, nil
}

// readText reads path, or standard input for "-".
func readText(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
