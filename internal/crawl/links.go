package crawl

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skippedExtensions are asset types never worth fetching as pages.
var skippedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".css": true, ".js": true, ".mjs": true,
	".map": true, ".json": true, ".xml": true, ".txt": true, ".pdf": true,
	".zip": true, ".gz": true, ".woff": true, ".woff2": true, ".ttf": true,
	".mp4": true, ".webm": true,
}

// Links returns the absolute targets of every <a href> in doc, resolved
// against base (or the document's <base href> when present).
func Links(doc *html.Node, base *url.URL) []string {
	sel := goquery.NewDocumentFromNode(doc)
	if href, ok := sel.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(href); err == nil {
			base = b
		}
	}

	var out []string
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "tel:") {
			return
		}
		u, err := base.Parse(href)
		if err != nil {
			return
		}
		out = append(out, u.String())
	})
	return out
}

// Scope decides which URLs belong to the crawl.
type Scope struct {
	Origin  *url.URL
	Exclude []string // path prefixes
}

// Normalize returns the canonical form of raw if it is an in-scope page:
// same scheme and host as the origin, fragment removed, not an asset and not
// under an excluded prefix.
func (s Scope) Normalize(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		u = s.Origin.ResolveReference(u)
	}
	if u.Scheme != s.Origin.Scheme || !strings.EqualFold(u.Host, s.Origin.Host) {
		return "", false
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
	}
	if skippedExtensions[strings.ToLower(path.Ext(u.Path))] {
		return "", false
	}
	for _, prefix := range s.Exclude {
		if prefix != "" && strings.HasPrefix(u.Path, prefix) {
			return "", false
		}
	}
	return u.String(), true
}

// PagePath is the origin-independent part of an in-scope URL, used as the
// record URL so an artifact built against a local server links correctly
// on the published site.
func PagePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.RequestURI()
}
