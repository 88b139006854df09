package layout

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dgallion1/gridkit/internal/geom"
)

var (
	// ErrResizeActive is returned when a gesture starts while another one
	// is still in progress on the same grid.
	ErrResizeActive = errors.New("column resize already in progress")
	// ErrUnknownColumn is returned when a gesture targets a column that is
	// not visible in the layout.
	ErrUnknownColumn = errors.New("unknown column")
)

// Direction is the writing direction of the grid.
type Direction int

const (
	LTR Direction = iota
	RTL
)

// Axis is a pin group's coordinate system. Positions are measured from the
// edge the group is anchored to and grow in the direction the group
// extends, so dragging "outward" always widens a column.
type Axis struct {
	Leftward bool
}

// Local converts a pointer x coordinate into the axis.
func (a Axis) Local(x float64) float64 {
	if a.Leftward {
		return -x
	}
	return x
}

// AxisFor returns the coordinate system of group g. Start and center
// groups grow away from the leading edge; the end group grows away from the
// trailing edge. RTL mirrors both.
func AxisFor(g Group, dir Direction) Axis {
	return Axis{Leftward: (g == GroupEnd) != (dir == RTL)}
}

// ResizeState is the transient state of a column resize gesture. The zero
// value is idle.
type ResizeState struct {
	Active     bool
	Key        string
	Axis       Axis
	Origin     float64 // pointer position at gesture start, in Axis units
	StartWidth float64
	Width      float64 // live, clamped width
}

// Overrides returns the live width to feed into Compute while a gesture is
// active.
func (s ResizeState) Overrides() map[string]float64 {
	if !s.Active {
		return nil
	}
	return map[string]float64{s.Key: s.Width}
}

// Begin starts a gesture on the resize handle of key at pointer x.
func Begin[T any](s ResizeState, l *Layout[T], key string, pointerX float64, dir Direction) (ResizeState, error) {
	if s.Active {
		return s, fmt.Errorf("%w: %q", ErrResizeActive, s.Key)
	}
	d, ok := l.Dimensions(key)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	axis := AxisFor(d.Group, dir)
	return ResizeState{
		Active:     true,
		Key:        key,
		Axis:       axis,
		Origin:     axis.Local(pointerX),
		StartWidth: d.Width,
		Width:      d.Width,
	}, nil
}

// Move updates the live width for a pointer at x. Widths are clamped to the
// column's bounds on every move. If the column has vanished the gesture is
// abandoned.
func Move[T any](s ResizeState, l *Layout[T], pointerX float64) ResizeState {
	if !s.Active {
		return s
	}
	c, ok := l.Column(s.Key)
	if !ok || c.Hidden {
		return Cancel(s)
	}
	lo, hi := c.Bounds()
	s.Width = geom.Clamp(s.StartWidth+s.Axis.Local(pointerX)-s.Origin, lo, hi)
	return s
}

// End commits the live width into a copy of cols and returns to idle. ok is
// false when there was nothing to commit (idle, or the column is gone), in
// which case cols is returned unchanged.
func End[T any](s ResizeState, cols []Column[T]) (ResizeState, []Column[T], bool) {
	if !s.Active {
		return s, cols, false
	}
	i := slices.IndexFunc(cols, func(c Column[T]) bool { return c.Key == s.Key })
	if i < 0 {
		return ResizeState{}, cols, false
	}
	out := slices.Clone(cols)
	lo, hi := out[i].Bounds()
	out[i].Width = geom.Clamp(s.Width, lo, hi)
	return ResizeState{}, out, true
}

// Cancel abandons any gesture without committing.
func Cancel(ResizeState) ResizeState { return ResizeState{} }
