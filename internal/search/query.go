package search

import (
	"math"
	"sort"
)

const (
	// DefaultLimit is the number of hits returned when no limit is given.
	DefaultLimit = 10

	bm25K1 = 1.2
	bm25B  = 0.75

	// prefixWeight scales matches that only share a prefix with the last
	// query term.
	prefixWeight = 0.5
)

// fieldBoosts weights headings above body text, shallower levels highest.
var fieldBoosts = map[string]float64{
	"lvl0": 3.0,
	"lvl1": 2.5,
	"lvl2": 2.0,
	"lvl3": 1.75,
	"lvl4": 1.5,
	"lvl5": 1.25,
	"text": 1.0,
}

// Hit is one scored document with the merged match positions per field.
type Hit struct {
	Doc     int
	Score   float64
	Matches map[string][]Position
}

// Search returns up to limit documents ranked by BM25 summed over fields.
// The last query term also matches as a prefix so partially typed words
// find results. A query with no indexable terms returns an empty slice.
func (idx *Index) Search(query string, limit int) []Hit {
	if limit <= 0 {
		limit = DefaultLimit
	}
	terms := queryTerms(query)
	if len(terms) == 0 || idx.DocCount == 0 {
		return []Hit{}
	}

	hits := make(map[int]*Hit)
	for i, term := range terms {
		last := i == len(terms)-1
		for _, t := range idx.expand(term, last) {
			weight := 1.0
			if t != term {
				weight = prefixWeight
			}
			idx.score(t, weight, hits)
		}
	}

	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		for field, positions := range h.Matches {
			h.Matches[field] = mergePositions(positions)
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Doc < out[j].Doc
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (idx *Index) score(term string, weight float64, hits map[int]*Hit) {
	postings := idx.Postings[term]
	df := float64(len(postings))
	n := float64(idx.DocCount)
	idf := math.Log(1 + (n-df+0.5)/(df+0.5))

	for _, p := range postings {
		h, ok := hits[p.Doc]
		if !ok {
			h = &Hit{Doc: p.Doc, Matches: make(map[string][]Position)}
			hits[p.Doc] = h
		}
		for fi, field := range idx.Fields {
			positions := p.Fields[field]
			if len(positions) == 0 {
				continue
			}
			tf := float64(len(positions))
			norm := 1.0
			if avg := idx.avgLengths[fi]; avg > 0 {
				norm = 1 - bm25B + bm25B*float64(idx.fieldLength(p.Doc, fi))/avg
			}
			boost := fieldBoosts[field]
			if boost == 0 {
				boost = 1
			}
			h.Score += weight * boost * idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
			h.Matches[field] = append(h.Matches[field], positions...)
		}
	}
}

// mergePositions orders the positions of every matched term in a field by
// start, longer spans first on ties, dropping exact repeats.
func mergePositions(positions []Position) []Position {
	out := append([]Position(nil), positions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start() != out[j].Start() {
			return out[i].Start() < out[j].Start()
		}
		return out[i].Length() > out[j].Length()
	})
	w := 0
	for i, p := range out {
		if i > 0 && p == out[w-1] {
			continue
		}
		out[w] = p
		w++
	}
	return out[:w]
}
