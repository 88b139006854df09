// Package virtual maps scroll positions onto the rows and columns that have
// to be materialized. All computations are pure: callers pass the viewport
// snapshot in and receive index ranges back.
package virtual

// Range is an inclusive index range into one axis. An empty axis is
// represented by EmptyRange.
type Range struct {
	Start int
	End   int
}

// EmptyRange signals that nothing on the axis needs rendering.
var EmptyRange = Range{Start: -1, End: -1}

// Empty reports whether the range addresses no items.
func (r Range) Empty() bool {
	return r.Start < 0 || r.End < r.Start
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether index i lies inside the range.
func (r Range) Contains(i int) bool {
	return !r.Empty() && i >= r.Start && i <= r.End
}

// Expand widens the range by overscan items on both sides, clamped to
// [0, count-1].
func (r Range) Expand(overscan, count int) Range {
	if r.Empty() || count <= 0 {
		return EmptyRange
	}
	if overscan < 0 {
		overscan = 0
	}
	return Range{
		Start: max(0, r.Start-overscan),
		End:   min(count-1, r.End+overscan),
	}
}
