package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/gridkit/internal/config"
	"github.com/dgallion1/gridkit/internal/extract"
	"github.com/dgallion1/gridkit/internal/record"
	"github.com/dgallion1/gridkit/internal/search"
)

func newIndexDirCmd(debug *bool) *cobra.Command {
	var (
		output     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "index-dir DIR",
		Short: "Index a directory of built .html and .md pages",
		Long: `Extracts records from every .html, .htm and .md file below DIR, in
lexical order, and writes the artifact. Record URLs are the file paths
relative to DIR with index.html collapsed to its directory.`,
		Example: `  gridkit-indexer index-dir ./public --output search.json
  gridkit-indexer index-dir ./docs --config site.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd, *debug)

			selectors := extract.DefaultSelectors()
			if configPath != "" {
				site, err := config.LoadSite(configPath)
				if err != nil {
					return err
				}
				selectors = site.Selectors
				if output == "" {
					output = site.OutputPath
				}
			}
			if output == "" {
				output = "search.json"
			}

			e, err := extract.New(selectors)
			if err != nil {
				return fmt.Errorf("compiling selectors: %w", err)
			}
			corpus, files, err := indexDir(e, args[0])
			if err != nil {
				return err
			}

			artifact := search.NewArtifact(corpus)
			if err := search.WriteArtifact(output, artifact); err != nil {
				return err
			}
			log.Info("artifact written", "path", output, "files", files, "records", len(corpus), "terms", artifact.Index.TermCount())
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"output":  output,
				"files":   files,
				"records": len(corpus),
				"terms":   artifact.Index.TermCount(),
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "artifact path; .zst enables compression (default search.json)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "crawl config supplying selectors and outputPath")
	return cmd
}

func indexDir(e *extract.Extractor, dir string) ([]record.Record, int, error) {
	var corpus []record.Record
	files := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".html" && ext != ".htm" && ext != ".md" {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		pageURL := pagePath(rel)
		var recs []record.Record
		if ext == ".md" {
			recs, err = e.ExtractMarkdown(f, pageURL)
		} else {
			recs, err = e.Extract(f, pageURL)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		corpus = append(corpus, recs...)
		files++
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("indexing %s: %w", dir, err)
	}
	return corpus, files, nil
}

// pagePath maps a relative file path to the URL path it is served at.
func pagePath(rel string) string {
	p := "/" + filepath.ToSlash(rel)
	if path.Base(p) == "index.html" {
		p = strings.TrimSuffix(p, "index.html")
	}
	return p
}
