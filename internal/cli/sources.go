package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SourcesResult lists the catalog's sources.
type SourcesResult struct {
	Default   string   `json:"default"`
	Sources   []string `json:"sources"`
	LatencyMS int64    `json:"latency_ms"`
}

// NewSourcesCommand creates the sources command.
func NewSourcesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the sources in the catalog",
		Long: `List every source the catalog knows and mark the default one.
Unknown sources passed to other commands fall back to the default.

Examples:
  postsync sources
  postsync sources --catalog ./catalog.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(rootOpts, cmd)
		},
	}
}

func runSources(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	catalog, err := opts.loadCatalog()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeCatalog, "failed to load catalog", err)
	}

	result := SourcesResult{
		Default: catalog.Default(),
		Sources: catalog.Sources(),
	}
	if l, ok := catalog.Latency(); ok {
		result.LatencyMS = l.Milliseconds()
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	for _, src := range result.Sources {
		marker := " "
		if src == result.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, src)
	}
	fmt.Fprintf(w, "\n%d source(s), default marked with *\n", len(result.Sources))
	return nil
}
