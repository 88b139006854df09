package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/gridkit/internal/config"
	"github.com/dgallion1/gridkit/internal/crawl"
	"github.com/dgallion1/gridkit/internal/extract"
	"github.com/dgallion1/gridkit/internal/search"
)

// Swapper receives each newly written artifact.
type Swapper interface {
	Swap(a *search.Artifact)
}

// Worker runs reindex jobs against one site.
type Worker struct {
	site    *config.Site
	swapper Swapper
	log     *slog.Logger

	// SiteOutput receives the site process's stdout and stderr.
	SiteOutput io.Writer
	// ProbeClient is used for readiness polling.
	ProbeClient *http.Client
}

func NewWorker(site *config.Site, swapper Swapper, log *slog.Logger) *Worker {
	return &Worker{
		site:        site,
		swapper:     swapper,
		log:         log,
		SiteOutput:  io.Discard,
		ProbeClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Process runs the job and records its final status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "origin", job.Origin)

	res, err := w.Run(ctx, job)
	if err != nil {
		log.Error("reindex failed", "phase", job.Snapshot().Phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Snapshot().Phase)
		return
	}

	if len(res.Failures) > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("reindex finished", "status", job.Snapshot().Status)
}

// Run starts the site, waits for it, crawls, builds the index and writes
// the artifact. On success the artifact is handed to the swapper. Per-page
// crawl failures are recorded on the job but do not fail the run.
func (w *Worker) Run(ctx context.Context, job *Job) (*crawl.Result, error) {
	log := w.log.With("job_id", job.ID)

	// Phase 1: Start the site
	job.SetStatus(StatusStarting, "starting")
	var site *crawl.Site
	if w.site.StartCmd != "" {
		var err error
		site, err = crawl.StartSite(ctx, w.site.StartCmd, w.SiteOutput, log)
		if err != nil {
			return nil, err
		}
		defer site.Stop()
	}

	// Phase 2: Wait for readiness
	job.SetStatus(StatusWaiting, "waiting")
	if err := w.waitReady(ctx, site); err != nil {
		return nil, err
	}

	// Phase 3: Crawl
	job.SetStatus(StatusCrawling, "crawling")
	fetcher, closeFetcher, err := NewFetcher(ctx, w.site, log)
	if err != nil {
		return nil, err
	}
	defer closeFetcher()

	extractor, err := extract.New(w.site.Selectors)
	if err != nil {
		return nil, fmt.Errorf("compiling selectors: %w", err)
	}
	res, err := crawl.New(fetcher, extractor, log, w.site.CrawlOptions()).Run(ctx, w.site.StartURL())
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	job.SetCrawl(res)
	for _, f := range res.Failures {
		job.AddError(fmt.Sprintf("%s: %s", f.URL, f.Error))
	}
	if len(res.Pages) == 0 {
		return nil, errors.New("crawl produced no pages")
	}

	// Phase 4: Build the index
	job.SetStatus(StatusIndexing, "indexing")
	artifact := search.NewArtifact(res.Corpus())
	job.SetIndex(len(artifact.Corpus), artifact.Index.TermCount())
	log.Info("index built", "records", len(artifact.Corpus), "terms", artifact.Index.TermCount())

	// Phase 5: Write and publish
	job.SetStatus(StatusWriting, "writing")
	if err := search.WriteArtifact(job.Output, artifact); err != nil {
		return nil, err
	}
	log.Info("artifact written", "path", job.Output)
	if w.swapper != nil {
		w.swapper.Swap(artifact)
	}
	return res, nil
}

// waitReady polls the probe, giving up early if the site process exits.
func (w *Worker) waitReady(ctx context.Context, site *crawl.Site) error {
	readyCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if site != nil {
		go func() {
			select {
			case <-site.Done():
				cancel()
			case <-readyCtx.Done():
			}
		}()
	}

	err := crawl.WaitReady(readyCtx, w.ProbeClient, w.site.ProbeURL(),
		time.Duration(w.site.ReadyTimeout), time.Duration(w.site.ReadyInterval))
	if err == nil {
		return nil
	}
	if site != nil {
		select {
		case <-site.Done():
			return fmt.Errorf("site exited before becoming ready: %v", site.Err())
		default:
		}
	}
	return err
}

// NewFetcher builds the fetcher selected by the site's renderer. The
// returned func releases it.
func NewFetcher(ctx context.Context, site *config.Site, log *slog.Logger) (crawl.Fetcher, func(), error) {
	timeout := time.Duration(site.JobTimeout)
	if site.Renderer == config.RendererBrowser {
		f, err := crawl.NewBrowserFetcher(ctx, crawl.BrowserOptions{
			ExecPath:  site.BrowserPath,
			UserAgent: site.UserAgent,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
	return crawl.NewHTTPFetcher(site.UserAgent, timeout, log), func() {}, nil
}
