package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/gridkit/internal/config"
	"github.com/dgallion1/gridkit/internal/pipeline"
)

func newCrawlCmd(debug *bool) *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Start the site, crawl it and write the search artifact",
		Long: `Runs siteStartCmd, waits for siteReadyProbe to answer, crawls every
same-origin page from the root, indexes the extracted records and writes
the artifact to outputPath. Pages that fail are reported but do not stop
the crawl.`,
		Example: `  gridkit-indexer crawl --config site.yaml
  gridkit-indexer crawl --config site.toml --output search.json.zst`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd, *debug)

			site, err := config.LoadSite(configPath)
			if err != nil {
				return err
			}
			if output != "" {
				site.OutputPath = output
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := pipeline.NewWorker(site, nil, log)
			w.SiteOutput = cmd.ErrOrStderr()
			job := pipeline.NewJob(site.Origin, site.OutputPath)
			return runCrawl(ctx, cmd, w, job)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "crawl config file (.yaml, .toml, .json, .jsonc)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "override outputPath from the config")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runCrawl(ctx context.Context, cmd *cobra.Command, w *pipeline.Worker, job *pipeline.Job) error {
	w.Process(ctx, job)
	snap := job.Snapshot()
	if err := printJSON(cmd.OutOrStdout(), snap); err != nil {
		return err
	}
	if snap.Status == pipeline.StatusFailed {
		return fmt.Errorf("crawl failed during %s", snap.Phase)
	}
	return nil
}
