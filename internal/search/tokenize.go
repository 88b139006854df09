// Package search builds and queries the inverted index over extracted
// records and cuts highlighted snippets from matched fields.
package search

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Token is a normalized term and where it sits in the source text.
// Start and Length count runes of the original text.
type Token struct {
	Term   string
	Start  int
	Length int
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"this": true, "to": true, "with": true,
}

// IsStopword reports whether term is too common to index.
func IsStopword(term string) bool { return stopwords[term] }

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits text on anything that is not a letter, digit or combining
// mark and normalizes each word. Stopwords are kept; callers filter them.
func Tokenize(text string) []Token {
	var out []Token
	src := []rune(text)
	for i := 0; i < len(src); {
		if !isWordRune(src[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(src) && (isWordRune(src[j]) || unicode.Is(unicode.Mn, src[j])) {
			j++
		}
		if term := Normalize(string(src[i:j])); term != "" {
			out = append(out, Token{Term: term, Start: i, Length: j - i})
		}
		i = j
	}
	return out
}

// Normalize case-folds s and strips diacritics.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// queryTerms returns the indexable terms of a query in order.
func queryTerms(q string) []string {
	var out []string
	for _, tok := range Tokenize(q) {
		if !IsStopword(tok.Term) {
			out = append(out, tok.Term)
		}
	}
	return out
}
