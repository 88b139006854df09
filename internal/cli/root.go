// Package cli implements the gridkit-indexer command line.
package cli

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with the crawl, index-dir and query
// subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "gridkit-indexer",
		Short:        "Build and query site search artifacts",
		Long:         "gridkit-indexer crawls a documentation site into a search artifact and queries existing artifacts.",
		Version:      ver,
		SilenceUsage: true,
		Example: `  # Start the docs site, crawl it and write the artifact
  gridkit-indexer crawl --config site.yaml

  # Index a directory of built pages
  gridkit-indexer index-dir ./public --output search.json.zst

  # Query an artifact
  gridkit-indexer query search.json "column resize"`,
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.AddCommand(newCrawlCmd(&debug), newIndexDirCmd(&debug), newQueryCmd(&debug))
	return cmd
}

// newLogger writes JSON logs to the command's stderr.
func newLogger(cmd *cobra.Command, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
