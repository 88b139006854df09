package layout

import (
	"errors"
	"fmt"

	"github.com/dgallion1/gridkit/internal/geom"
	"github.com/dgallion1/gridkit/internal/virtual"
)

// ErrDuplicateKey is returned when two columns share a key.
var ErrDuplicateKey = errors.New("duplicate column key")

// Dimensions is a column's position inside its pin group.
type Dimensions struct {
	Group  Group   `json:"group"`
	Index  int     `json:"index"`
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

// End returns the offset just past the column.
func (d Dimensions) End() float64 { return d.Offset + d.Width }

// Layout is the derived placement of a column set. It is rebuilt whenever
// the column definitions or the live resize width change.
type Layout[T any] struct {
	groups [3][]Column[T]
	totals [3]float64
	dims   map[string]Dimensions
	cols   map[string]Column[T]
}

// Compute partitions the visible columns into pin groups, keeping their
// relative order, and lays each group out from offset 0. overrides maps a
// column key to a requested width that replaces the configured one (the
// live width during a resize gesture).
func Compute[T any](cols []Column[T], overrides map[string]float64) (*Layout[T], error) {
	l := &Layout[T]{
		dims: make(map[string]Dimensions, len(cols)),
		cols: make(map[string]Column[T], len(cols)),
	}
	for _, c := range cols {
		if _, dup := l.cols[c.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, c.Key)
		}
		l.cols[c.Key] = c
		if c.Hidden {
			continue
		}

		requested := c.RequestedWidth()
		if w, ok := overrides[c.Key]; ok {
			requested = w
		}
		lo, hi := c.Bounds()
		width := geom.Clamp(requested, lo, hi)

		g := c.Group()
		l.dims[c.Key] = Dimensions{
			Group:  g,
			Index:  len(l.groups[g]),
			Offset: l.totals[g],
			Width:  width,
		}
		l.groups[g] = append(l.groups[g], c)
		l.totals[g] += width
	}
	return l, nil
}

// Group returns the visible columns of g in display order.
func (l *Layout[T]) Group(g Group) []Column[T] { return l.groups[g] }

// Total returns the summed width of group g.
func (l *Layout[T]) Total(g Group) float64 { return l.totals[g] }

// TotalWidth returns the width of all three groups together.
func (l *Layout[T]) TotalWidth() float64 {
	return l.totals[GroupStart] + l.totals[GroupCenter] + l.totals[GroupEnd]
}

// Dimensions looks up a visible column's placement.
func (l *Layout[T]) Dimensions(key string) (Dimensions, bool) {
	d, ok := l.dims[key]
	return d, ok
}

// Column looks up a column definition by key, including hidden columns.
func (l *Layout[T]) Column(key string) (Column[T], bool) {
	c, ok := l.cols[key]
	return c, ok
}

// Axis returns the variable-size virtualization axis of group g. Only the
// center group scrolls horizontally; pinned groups are usually rendered in
// full but can be virtualized the same way.
func (l *Layout[T]) Axis(g Group) virtual.Variable {
	group := l.groups[g]
	return virtual.Variable{
		Count:  len(group),
		Offset: func(i int) float64 { return l.dims[group[i].Key].Offset },
	}
}

// CenterAxis is shorthand for Axis(GroupCenter).
func (l *Layout[T]) CenterAxis() virtual.Variable { return l.Axis(GroupCenter) }
