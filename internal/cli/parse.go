package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <source>",
		Short: "Fetch a source and show its records",
		Long: `Fetch a source through the simulated parser and print every record with
its views. Unknown sources resolve to the catalog's default batch.

Examples:
  postsync parse https://example.com/news
  postsync parse https://example.com/tech --latency 0 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
}

func runParse(opts *RootOptions, source string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := opts.fetchSource(cmd, f, source)
	if err != nil {
		return err
	}
	defer s.Close()

	view := s.View()
	if f.Format == "json" {
		return f.Success(view)
	}

	w := f.Writer
	fmt.Fprintf(w, "Source: %s (%d records)\n\n", view.Source, len(view.Records))
	for _, p := range view.Records {
		printProjection(w, p)
	}
	return nil
}
