package extract

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/dgallion1/gridkit/internal/record"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// RenderMarkdown converts markdown source to HTML. Headings receive
// generated ids so records extracted from the result carry anchors.
func RenderMarkdown(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<html><body>")
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	buf.WriteString("</body></html>")
	return buf.Bytes(), nil
}

// IsMarkdown reports whether a page should be rendered as markdown, judged
// by its content type or, failing that, its path extension.
func IsMarkdown(contentType, pagePath string) bool {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/markdown") || strings.HasPrefix(ct, "text/x-markdown") {
		return true
	}
	switch strings.ToLower(path.Ext(pagePath)) {
	case ".md", ".markdown":
		return ct == "" || strings.HasPrefix(ct, "text/plain") || strings.HasPrefix(ct, "application/octet-stream")
	}
	return false
}

// ExtractMarkdown renders markdown from r and extracts its records.
func (e *Extractor) ExtractMarkdown(r io.Reader, pageURL string) ([]record.Record, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out, err := RenderMarkdown(src)
	if err != nil {
		return nil, err
	}
	return e.Extract(bytes.NewReader(out), pageURL)
}
