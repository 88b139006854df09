package virtual

import (
	"math"

	"github.com/dgallion1/gridkit/internal/geom"
)

// Fixed virtualizes an axis of Count items that all share the same Size.
type Fixed struct {
	Count int
	Size  float64
}

// IndexAt returns the index of the item under offset, clamped to the axis.
// It returns -1 when the axis is empty.
func (f Fixed) IndexAt(offset float64) int {
	if f.Count <= 0 || f.Size <= 0 {
		return -1
	}
	if offset <= 0 {
		return 0
	}
	idx := math.Floor(offset / f.Size)
	if idx >= float64(f.Count) {
		return f.Count - 1
	}
	return geom.Clamp(int(idx), 0, f.Count-1)
}

// Range maps the window [start, end) to an inclusive index range. The end
// offset is exclusive as an input but the item it lands on is included.
func (f Fixed) Range(start, end float64) Range {
	if f.Count <= 0 || f.Size <= 0 {
		return EmptyRange
	}
	return Range{Start: f.IndexAt(start), End: f.IndexAt(end)}
}

// Offset returns the start offset of item i.
func (f Fixed) Offset(i int) float64 {
	return float64(i) * f.Size
}

// Total returns the extent of the whole axis.
func (f Fixed) Total() float64 {
	if f.Count <= 0 {
		return 0
	}
	return float64(f.Count) * f.Size
}
