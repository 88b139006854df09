package virtual

// Viewport is the measured scroll position and size of the scroll
// container. It is supplied by the caller on every event.
type Viewport struct {
	ScrollLeft float64
	ScrollTop  float64
	Width      float64
	Height     float64
}

// Grid combines a fixed-height row axis and a variable-width column axis.
type Grid struct {
	Rows     Fixed
	Columns  Variable
	Overscan int
}

// Visible returns the rows and columns intersecting the viewport, without
// overscan.
func (g Grid) Visible(vp Viewport) Slice {
	rows := g.Rows.Range(vp.ScrollTop, vp.ScrollTop+vp.Height)
	cols := g.Columns.Range(vp.ScrollLeft, vp.ScrollLeft+vp.Width)
	return Compose(rows, cols, g.Rows.Count, g.Columns.Count, 0)
}

// Rendered returns the visible slice widened by the grid's overscan.
func (g Grid) Rendered(vp Viewport) Slice {
	rows := g.Rows.Range(vp.ScrollTop, vp.ScrollTop+vp.Height)
	cols := g.Columns.Range(vp.ScrollLeft, vp.ScrollLeft+vp.Width)
	return Compose(rows, cols, g.Rows.Count, g.Columns.Count, g.Overscan)
}

// State is the virtualization state carried between scroll events.
type State struct {
	Grid     Grid
	Viewport Viewport
	Slice    *Slice
}

// Update recomputes the rendered slice for vp. When the result equals the
// current slice the existing *Slice is kept and changed is false, so
// consumers can skip work by comparing pointers.
func (s State) Update(vp Viewport) (State, bool) {
	next := s.Grid.Rendered(vp)
	s.Viewport = vp
	if s.Slice != nil && *s.Slice == next {
		return s, false
	}
	s.Slice = &next
	return s, true
}

// WithGrid replaces the grid (row count, column widths, overscan) and
// recomputes the slice for the current viewport.
func (s State) WithGrid(g Grid) (State, bool) {
	s.Grid = g
	return s.Update(s.Viewport)
}
