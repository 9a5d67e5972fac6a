package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	*RootOptions
	Record int
}

// PublishResult acknowledges a published record.
type PublishResult struct {
	Record   int           `json:"record"`
	Platform post.Platform `json:"platform"`
	Status   string        `json:"status"`
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish <source>",
		Short: "Validate and acknowledge a record for publishing",
		Long: `Fetch a source and publish one record. Publishing checks that the
record's body is not blank and acknowledges it; nothing is sent anywhere.

Exit codes:
  0 - Published
  1 - Validation failed or no such record
  2 - Command error

Examples:
  postsync publish https://example.com/news --record 0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Record, "record", 0, "record ID (required)")
	_ = cmd.MarkFlagRequired("record")

	return cmd
}

func runPublish(opts *PublishOptions, source string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := opts.fetchSource(cmd, f, source)
	if err != nil {
		return err
	}
	defer s.Close()

	id := post.ID(opts.Record)
	if err := s.Publish(cmd.Context(), id); err != nil {
		return f.Fail(ExitFailure, errorCode(err), "publish failed", err)
	}

	r, err := s.Record(id)
	if err != nil {
		return f.Fail(ExitFailure, errorCode(err), "publish failed", err)
	}

	result := PublishResult{Record: opts.Record, Platform: r.Platform, Status: "published"}
	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ Published record %d (%s)\n", result.Record, result.Platform)
	return nil
}
