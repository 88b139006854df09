package virtual

// Variable virtualizes an axis whose items have different sizes. Offset
// returns the cumulative start offset of item i and must be non-decreasing
// in i; results are undefined otherwise.
type Variable struct {
	Count  int
	Offset func(i int) float64
}

// Search bisects [0, Count) for the first item whose start offset is at or
// beyond offset. When offset falls exactly on a boundary the item starting
// there is returned, not the one before it. Offsets past the last item
// clamp to Count-1. It returns -1 when the axis is empty.
func (v Variable) Search(offset float64) int {
	if v.Count <= 0 || v.Offset == nil {
		return -1
	}
	lo, hi := 0, v.Count-1
	for lo < hi {
		pivot := lo + (hi-lo)/2
		if offset <= v.Offset(pivot) {
			hi = pivot
		} else {
			lo = pivot + 1
		}
	}
	return lo
}

// IndexAt returns the item containing offset: the last item whose start
// offset is at or before it. Use it for hit testing; Search is the edge
// lookup used by Range.
func (v Variable) IndexAt(offset float64) int {
	i := v.Search(offset)
	if i <= 0 {
		return i
	}
	if v.Offset(i) > offset {
		return i - 1
	}
	return i
}

// Range maps the window [start, end) to an inclusive index range.
func (v Variable) Range(start, end float64) Range {
	if v.Count <= 0 || v.Offset == nil {
		return EmptyRange
	}
	return Range{Start: v.Search(start), End: v.Search(end)}
}

// Uniform builds a Variable axis whose items all have the given size.
func Uniform(count int, size float64) Variable {
	return Variable{
		Count:  count,
		Offset: func(i int) float64 { return float64(i) * size },
	}
}

// Cumulative builds a Variable axis from per-item sizes.
func Cumulative(sizes []float64) Variable {
	offsets := make([]float64, len(sizes))
	var sum float64
	for i, s := range sizes {
		offsets[i] = sum
		sum += s
	}
	return Variable{
		Count:  len(offsets),
		Offset: func(i int) float64 { return offsets[i] },
	}
}
