// Package geom holds the small numeric helpers shared by the layout and
// virtualization code.
package geom

import "cmp"

// Clamp bounds v to [lo, hi]. When lo > hi the lower bound wins: lo is a
// floor that is always honored.
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
