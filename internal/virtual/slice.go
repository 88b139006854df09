package virtual

// DefaultGridOverscan is the overscan data grids configure; the composer
// itself defaults to none.
const DefaultGridOverscan = 3

// Slice is the rectangle of rows and columns a renderer has to mount.
// Bounds are inclusive; an empty dimension carries -1 on both ends.
type Slice struct {
	StartRow    int `json:"startRow"`
	EndRow      int `json:"endRow"`
	StartColumn int `json:"startColumn"`
	EndColumn   int `json:"endColumn"`
}

// Rows returns the row bounds as a Range.
func (s Slice) Rows() Range { return Range{Start: s.StartRow, End: s.EndRow} }

// Columns returns the column bounds as a Range.
func (s Slice) Columns() Range { return Range{Start: s.StartColumn, End: s.EndColumn} }

// Empty reports whether the slice addresses no cells.
func (s Slice) Empty() bool { return s.Rows().Empty() || s.Columns().Empty() }

// Compose applies overscan to the visible row and column ranges and clamps
// the result to the logical row/column space.
func Compose(rows, cols Range, rowCount, colCount, overscan int) Slice {
	r := rows.Expand(overscan, rowCount)
	c := cols.Expand(overscan, colCount)
	return Slice{
		StartRow:    r.Start,
		EndRow:      r.End,
		StartColumn: c.Start,
		EndColumn:   c.End,
	}
}
