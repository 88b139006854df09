package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/gridkit/internal/crawl"
	"github.com/dgallion1/gridkit/internal/extract"
)

// ErrInvalidSite is wrapped by every crawl config validation failure.
var ErrInvalidSite = errors.New("invalid site config")

const (
	RendererHTTP    = "http"
	RendererBrowser = "browser"
)

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Site is the crawl configuration used by the indexer and by reindex jobs.
type Site struct {
	StartCmd   string            `json:"siteStartCmd" yaml:"siteStartCmd" toml:"siteStartCmd"`
	Origin     string            `json:"siteOrigin" yaml:"siteOrigin" toml:"siteOrigin"`
	ReadyProbe string            `json:"siteReadyProbe" yaml:"siteReadyProbe" toml:"siteReadyProbe"`
	Selectors  extract.Selectors `json:"selectors" yaml:"selectors" toml:"selectors"`
	OutputPath string            `json:"outputPath" yaml:"outputPath" toml:"outputPath"`

	// Root is the path the crawl starts from, relative to Origin.
	Root          string   `json:"root" yaml:"root" toml:"root"`
	Concurrency   int      `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	JobTimeout    Duration `json:"jobTimeout" yaml:"jobTimeout" toml:"jobTimeout"`
	ReadyTimeout  Duration `json:"readyTimeout" yaml:"readyTimeout" toml:"readyTimeout"`
	ReadyInterval Duration `json:"readyInterval" yaml:"readyInterval" toml:"readyInterval"`
	Renderer      string   `json:"renderer" yaml:"renderer" toml:"renderer"`
	BrowserPath   string   `json:"browserPath" yaml:"browserPath" toml:"browserPath"`
	UserAgent     string   `json:"userAgent" yaml:"userAgent" toml:"userAgent"`
	MaxPages      int      `json:"maxPages" yaml:"maxPages" toml:"maxPages"`
	Exclude       []string `json:"exclude" yaml:"exclude" toml:"exclude"`
}

// LoadSite reads a crawl config, choosing the decoder by file extension:
// .yaml/.yml, .toml, or .json/.jsonc (comments and trailing commas allowed).
// Defaults are applied before validation.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site config: %w", err)
	}
	site, err := ParseSite(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return site, nil
}

// ParseSite decodes data in the format named by ext.
func ParseSite(data []byte, ext string) (*Site, error) {
	var s Site
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidSite, ext)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Site) applyDefaults() {
	if s.Root == "" {
		s.Root = "/"
	}
	if s.Concurrency <= 0 {
		s.Concurrency = crawl.DefaultConcurrency
	}
	if s.ReadyTimeout <= 0 {
		s.ReadyTimeout = Duration(crawl.DefaultReadyTimeout)
	}
	if s.ReadyInterval <= 0 {
		s.ReadyInterval = Duration(crawl.DefaultReadyInterval)
	}
	if s.Renderer == "" {
		s.Renderer = RendererHTTP
	}
	s.Selectors = s.Selectors.WithDefaults()
}

// Validate checks the config; every failure wraps ErrInvalidSite.
func (s *Site) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSite, fmt.Sprintf(format, args...))
	}

	origin, err := url.Parse(s.Origin)
	if s.Origin == "" || err != nil || !origin.IsAbs() || (origin.Scheme != "http" && origin.Scheme != "https") {
		return invalid("siteOrigin must be an absolute http(s) URL, got %q", s.Origin)
	}
	if s.ReadyProbe != "" {
		if u, err := url.Parse(s.ReadyProbe); err != nil || !u.IsAbs() {
			return invalid("siteReadyProbe must be an absolute URL, got %q", s.ReadyProbe)
		}
	}
	if s.OutputPath == "" {
		return invalid("outputPath is required")
	}
	if s.Renderer != RendererHTTP && s.Renderer != RendererBrowser {
		return invalid("renderer must be %q or %q, got %q", RendererHTTP, RendererBrowser, s.Renderer)
	}
	if s.MaxPages < 0 {
		return invalid("maxPages must not be negative")
	}
	if _, err := extract.New(s.Selectors); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// StartURL is the absolute URL the crawl begins at.
func (s *Site) StartURL() string {
	origin, err := url.Parse(s.Origin)
	if err != nil {
		return s.Origin
	}
	root, err := url.Parse(s.Root)
	if err != nil {
		return s.Origin
	}
	return origin.ResolveReference(root).String()
}

// ProbeURL is the readiness probe, defaulting to the origin.
func (s *Site) ProbeURL() string {
	if s.ReadyProbe != "" {
		return s.ReadyProbe
	}
	return s.Origin
}

// CrawlOptions converts the config into crawler options.
func (s *Site) CrawlOptions() crawl.Options {
	return crawl.Options{
		Concurrency: s.Concurrency,
		JobTimeout:  time.Duration(s.JobTimeout),
		MaxPages:    s.MaxPages,
		Exclude:     s.Exclude,
	}
}
