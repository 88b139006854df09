package search

import "unicode"

const (
	// DefaultSnippetSize is the snippet window in runes.
	DefaultSnippetSize = 100
	// DefaultSnippetMargin is how far a window edge may move to land on a
	// word boundary.
	DefaultSnippetMargin = 10

	// Ellipsis marks a truncated side of a snippet.
	Ellipsis = "…"
)

// Snippet is a window of field text. Odd-indexed parts are matches.
type Snippet struct {
	Parts []string `json:"parts"`
}

// BuildSnippet cuts a window of about size runes around the first position
// and splits it into alternating plain and matched parts. positions must be
// sorted by start; spans overlapping an earlier one or falling outside the
// window are not highlighted.
func BuildSnippet(text string, positions []Position, size, margin int) Snippet {
	if size <= 0 {
		size = DefaultSnippetSize
	}
	margin = max(margin, 0)

	src := []rune(text)
	n := len(src)

	first := Position{0, 0}
	for _, p := range positions {
		if p.Start() >= 0 && p.Length() > 0 && p.End() <= n {
			first = p
			break
		}
	}
	start, end := snippetWindow(src, first, size, margin)

	var parts []string
	cursor := start
	for _, p := range positions {
		s, e := p.Start(), p.End()
		if p.Length() <= 0 || s < cursor || e > end {
			continue
		}
		parts = append(parts, string(src[cursor:s]), string(src[s:e]))
		cursor = e
	}
	parts = append(parts, string(src[cursor:end]))

	if start > 0 {
		parts[0] = Ellipsis + parts[0]
	}
	if end < n {
		parts[len(parts)-1] += Ellipsis
	}
	return Snippet{Parts: parts}
}

// snippetWindow centres a size-rune window on first, clamps it to the text
// and moves each truncated edge to the nearest word boundary within margin,
// never past the first match.
func snippetWindow(src []rune, first Position, size, margin int) (int, int) {
	n := len(src)
	if n <= size {
		return 0, n
	}

	start := max(first.Start()+first.Length()/2-size/2, 0)
	end := start + size
	if end > n {
		end = n
		start = max(n-size, 0)
	}

	if start > 0 {
		start = nudgeStart(src, start, first.Start(), margin)
	}
	if end < n {
		end = nudgeEnd(src, end, first.End(), margin)
	}
	return start, end
}

// nudgeStart prefers widening the window: at each distance it tries the
// earlier boundary first.
func nudgeStart(src []rune, start, limit, margin int) int {
	boundary := func(b int) bool { return b == 0 || unicode.IsSpace(src[b-1]) }
	for d := 0; d <= margin; d++ {
		if b := start - d; b >= 0 && boundary(b) {
			return b
		}
		if b := start + d; d > 0 && b <= limit && b < len(src) && boundary(b) {
			return b
		}
	}
	return start
}

func nudgeEnd(src []rune, end, limit, margin int) int {
	n := len(src)
	boundary := func(b int) bool { return b == n || unicode.IsSpace(src[b]) }
	for d := 0; d <= margin; d++ {
		if b := end + d; b <= n && boundary(b) {
			return b
		}
		if b := end - d; d > 0 && b >= limit && b > 0 && boundary(b) {
			return b
		}
	}
	return end
}
