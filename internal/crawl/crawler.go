package crawl

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/net/html"

	"github.com/dgallion1/gridkit/internal/extract"
	"github.com/dgallion1/gridkit/internal/record"
)

// Options configures a crawl.
type Options struct {
	Concurrency int
	JobTimeout  time.Duration
	MaxPages    int      // 0 = unlimited
	Exclude     []string // path prefixes to skip
}

// Page is one successfully crawled page.
type Page struct {
	URL     string          `json:"url"`
	Title   string          `json:"title"`
	Digest  string          `json:"digest"`
	Records []record.Record `json:"records"`
}

// Failure records a page that could not be fetched or parsed.
type Failure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Result is the outcome of a crawl. Pages are in discovery order.
type Result struct {
	Pages      []Page        `json:"pages"`
	Failures   []Failure     `json:"failures"`
	Duplicates int           `json:"duplicates"`
	Duration   time.Duration `json:"duration"`
}

// Corpus flattens the records of every page in order.
func (r *Result) Corpus() []record.Record {
	var out []record.Record
	for _, p := range r.Pages {
		out = append(out, p.Records...)
	}
	return out
}

// Crawler walks a site from a start URL, following same-origin links.
type Crawler struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	log       *slog.Logger
	opts      Options

	mu      sync.Mutex
	scope   Scope
	seen    map[string]bool
	digests map[string]string
	queued  []queuedPage
}

type queuedPage struct {
	url string
	fut *Future[*Page]
}

// New creates a crawler.
func New(f Fetcher, e *extract.Extractor, log *slog.Logger, opts Options) *Crawler {
	return &Crawler{
		fetcher:   f,
		extractor: e,
		log:       log,
		opts:      opts,
	}
}

// Run crawls the site reachable from start. Pages that fail are logged and
// listed in Result.Failures; the crawl carries on without them. Run only
// returns an error when the start URL is unusable or ctx ends.
func (c *Crawler) Run(ctx context.Context, start string) (*Result, error) {
	began := time.Now()

	origin, err := url.Parse(start)
	if err != nil || !origin.IsAbs() {
		return nil, fmt.Errorf("invalid start url %q", start)
	}

	c.mu.Lock()
	c.scope = Scope{Origin: origin, Exclude: c.opts.Exclude}
	c.seen = make(map[string]bool)
	c.digests = make(map[string]string)
	c.queued = nil
	c.mu.Unlock()

	q := NewQueue[*Page](c.opts.Concurrency, c.opts.JobTimeout)
	defer q.Close()

	if !c.visit(ctx, q, start) {
		return nil, fmt.Errorf("start url %q is out of scope", start)
	}
	q.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	c.mu.Lock()
	queued := c.queued
	c.mu.Unlock()
	for _, qp := range queued {
		page, err := qp.fut.Wait(ctx)
		switch {
		case err != nil:
			res.Failures = append(res.Failures, Failure{URL: qp.url, Error: err.Error()})
		case page == nil:
			res.Duplicates++
		default:
			res.Pages = append(res.Pages, *page)
		}
	}
	res.Duration = time.Since(began)

	c.log.Info("crawl finished",
		"pages", len(res.Pages),
		"failures", len(res.Failures),
		"duplicates", res.Duplicates,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// visit enqueues raw unless it is out of scope or already seen.
func (c *Crawler) visit(ctx context.Context, q *Queue[*Page], raw string) bool {
	u, ok := c.scope.Normalize(raw)
	if !ok {
		return false
	}

	c.mu.Lock()
	if c.seen[u] {
		c.mu.Unlock()
		return false
	}
	if c.opts.MaxPages > 0 && len(c.seen) >= c.opts.MaxPages {
		c.mu.Unlock()
		return false
	}
	c.seen[u] = true
	fut := q.Enqueue(ctx, func(ctx context.Context) (*Page, error) {
		return c.crawlPage(ctx, q, u)
	})
	c.queued = append(c.queued, queuedPage{url: u, fut: fut})
	c.mu.Unlock()
	return true
}

func (c *Crawler) crawlPage(ctx context.Context, q *Queue[*Page], u string) (*Page, error) {
	log := c.log.With("url", u)

	doc, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		log.Error("fetch failed", "error", err)
		return nil, err
	}

	// After an in-scope redirect the page lives at its final URL: relative
	// links resolve against it and records point at it. The target counts
	// as seen so it is not fetched twice.
	pageURL := u
	if doc.FinalURL != "" && doc.FinalURL != u {
		if final, ok := c.scope.Normalize(doc.FinalURL); ok {
			pageURL = final
			c.mu.Lock()
			c.seen[final] = true
			c.mu.Unlock()
			log = log.With("final_url", final)
		}
	}

	sum := blake3.Sum256(doc.Body)
	digest := hex.EncodeToString(sum[:])
	c.mu.Lock()
	if first, dup := c.digests[digest]; dup {
		c.mu.Unlock()
		log.Debug("duplicate page body", "same_as", first)
		return nil, nil
	}
	c.digests[digest] = u
	c.mu.Unlock()

	body := doc.Body
	if extract.IsMarkdown(doc.ContentType, pageURL) {
		body, err = extract.RenderMarkdown(body)
		if err != nil {
			log.Error("markdown render failed", "error", err)
			return nil, err
		}
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		log.Error("parse failed", "error", err)
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	base, _ := url.Parse(pageURL)
	for _, link := range Links(root, base) {
		c.visit(ctx, q, link)
	}

	pagePath := PagePath(pageURL)
	page := &Page{
		URL:     pagePath,
		Title:   extract.Title(root),
		Digest:  digest,
		Records: c.extractor.ExtractNode(root, pagePath),
	}
	log.Info("page extracted", "records", len(page.Records), "rendered", doc.Rendered, "fetch_ms", doc.FetchTime.Milliseconds())
	return page, nil
}
