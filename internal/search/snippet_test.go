package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSnippet_ShortTextNotTruncated(t *testing.T) {
	got := BuildSnippet("alpha beta gamma", []Position{{6, 4}}, 100, 10)
	assert.Equal(t, []string{"alpha ", "beta", " gamma"}, got.Parts)
}

func TestBuildSnippet_TruncatedBothSides(t *testing.T) {
	text := strings.Repeat("lorem ", 30) + "needle" + strings.Repeat(" ipsum", 30)
	got := BuildSnippet(text, []Position{{180, 6}}, 100, 10)
	assert.Equal(t, []string{
		"…" + strings.Repeat("lorem ", 8),
		"needle",
		strings.Repeat(" ipsum", 8) + "…",
	}, got.Parts)
}

func TestBuildSnippet_TruncatedEndOnly(t *testing.T) {
	got := BuildSnippet("one two three four five", []Position{{0, 3}}, 10, 3)
	assert.Equal(t, []string{"", "one", " two three…"}, got.Parts)
}

func TestBuildSnippet_TruncatedStartOnly(t *testing.T) {
	got := BuildSnippet("one two three four five", []Position{{19, 4}}, 10, 3)
	assert.Equal(t, []string{"…four ", "five", ""}, got.Parts)
}

func TestBuildSnippet_SkipsOverlappingPositions(t *testing.T) {
	got := BuildSnippet("alpha beta gamma", []Position{{0, 5}, {2, 3}, {6, 4}}, 100, 10)
	assert.Equal(t, []string{"", "alpha", " ", "beta", " gamma"}, got.Parts)
}

func TestBuildSnippet_NoPositions(t *testing.T) {
	got := BuildSnippet("one two three four five", nil, 10, 0)
	assert.Equal(t, []string{"one two th…"}, got.Parts)
}

func TestBuildSnippet_MultibyteText(t *testing.T) {
	got := BuildSnippet("größe der zeile", []Position{{10, 5}}, 100, 10)
	assert.Equal(t, []string{"größe der ", "zeile", ""}, got.Parts)
}

func TestBuildSnippet_Pure(t *testing.T) {
	text := strings.Repeat("word ", 50)
	pos := []Position{{100, 4}}
	assert.Equal(t, BuildSnippet(text, pos, 40, 5), BuildSnippet(text, pos, 40, 5))
}
