package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/gridkit/internal/search"
)

func newQueryCmd(debug *bool) *cobra.Command {
	var opts search.Options

	cmd := &cobra.Command{
		Use:   "query ARTIFACT QUERY...",
		Short: "Run a query against an artifact and print the results as JSON",
		Example: `  gridkit-indexer query search.json resize
  gridkit-indexer query search.json.zst "filter builder" --limit 3`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := search.NewService(args[0], opts, newLogger(cmd, *debug))
			results, err := svc.Query(cmd.Context(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"results": results})
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", search.DefaultLimit, "maximum number of results")
	cmd.Flags().IntVar(&opts.SnippetSize, "snippet-size", search.DefaultSnippetSize, "snippet window in characters")
	cmd.Flags().IntVar(&opts.SnippetMargin, "snippet-margin", search.DefaultSnippetMargin, "how far snippet edges may move to a word boundary")
	return cmd
}
