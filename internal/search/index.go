package search

import (
	"encoding/json"
	"sort"

	"github.com/dgallion1/gridkit/internal/record"
)

// Position is a [start, length] rune span inside a field.
type Position [2]int

func (p Position) Start() int  { return p[0] }
func (p Position) Length() int { return p[1] }
func (p Position) End() int    { return p[0] + p[1] }

// Posting lists where a term occurs in one document.
type Posting struct {
	Doc    int                   `json:"doc"`
	Fields map[string][]Position `json:"fields"`
}

// Index is an inverted index over a corpus of records. It is immutable once
// built or loaded and safe for concurrent queries.
type Index struct {
	Fields   []string             `json:"fields"`
	DocCount int                  `json:"docCount"`
	Postings map[string][]Posting `json:"postings"`
	// Lengths holds the indexed token count per document and field, in
	// Fields order.
	Lengths [][]int `json:"lengths"`

	terms      []string
	avgLengths []float64
}

// Build indexes corpus. Document references are corpus positions.
func Build(corpus []record.Record) *Index {
	idx := &Index{
		Fields:   append([]string(nil), record.Fields...),
		DocCount: len(corpus),
		Postings: make(map[string][]Posting),
		Lengths:  make([][]int, len(corpus)),
	}

	for doc, rec := range corpus {
		lengths := make([]int, len(idx.Fields))
		byTerm := make(map[string]*Posting)
		var order []string

		for fi, field := range idx.Fields {
			for _, tok := range Tokenize(rec.Field(field)) {
				if IsStopword(tok.Term) {
					continue
				}
				lengths[fi]++
				p, ok := byTerm[tok.Term]
				if !ok {
					p = &Posting{Doc: doc, Fields: make(map[string][]Position)}
					byTerm[tok.Term] = p
					order = append(order, tok.Term)
				}
				p.Fields[field] = append(p.Fields[field], Position{tok.Start, tok.Length})
			}
		}

		for _, term := range order {
			idx.Postings[term] = append(idx.Postings[term], *byTerm[term])
		}
		idx.Lengths[doc] = lengths
	}

	idx.prepare()
	return idx
}

// prepare derives the lookup tables that are not serialized.
func (idx *Index) prepare() {
	idx.terms = make([]string, 0, len(idx.Postings))
	for term := range idx.Postings {
		idx.terms = append(idx.terms, term)
	}
	sort.Strings(idx.terms)

	idx.avgLengths = make([]float64, len(idx.Fields))
	if idx.DocCount == 0 {
		return
	}
	for _, lengths := range idx.Lengths {
		for fi := range idx.avgLengths {
			if fi < len(lengths) {
				idx.avgLengths[fi] += float64(lengths[fi])
			}
		}
	}
	for fi := range idx.avgLengths {
		idx.avgLengths[fi] /= float64(idx.DocCount)
	}
}

// TermCount returns the number of distinct indexed terms.
func (idx *Index) TermCount() int { return len(idx.terms) }

// expand returns the indexed terms matching term, exactly or, when prefix
// is set, as a prefix. The exact term comes first when present.
func (idx *Index) expand(term string, prefix bool) []string {
	i := sort.SearchStrings(idx.terms, term)
	if !prefix {
		if i < len(idx.terms) && idx.terms[i] == term {
			return []string{term}
		}
		return nil
	}
	var out []string
	for ; i < len(idx.terms); i++ {
		t := idx.terms[i]
		if len(t) < len(term) || t[:len(term)] != term {
			break
		}
		out = append(out, t)
	}
	return out
}

func (idx *Index) fieldLength(doc, fi int) int {
	if doc < 0 || doc >= len(idx.Lengths) || fi >= len(idx.Lengths[doc]) {
		return 0
	}
	return idx.Lengths[doc][fi]
}

// UnmarshalJSON decodes a serialized index and rebuilds its lookup tables.
func (idx *Index) UnmarshalJSON(data []byte) error {
	type plain Index
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*idx = Index(p)
	if idx.Postings == nil {
		idx.Postings = make(map[string][]Posting)
	}
	idx.prepare()
	return nil
}
