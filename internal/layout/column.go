// Package layout assigns offsets and widths to grid columns and tracks the
// interactive resize gesture that edits them.
package layout

import "math"

const (
	// DefaultWidth applies when a column does not configure a width.
	DefaultWidth = 100.0
	// DefaultMinWidth applies when a column does not configure a minimum.
	DefaultMinWidth = 50.0
)

// Pin places a column in one of the three independently laid out groups.
type Pin string

const (
	PinNone  Pin = ""
	PinStart Pin = "start"
	PinEnd   Pin = "end"
)

// Group identifies a pin group.
type Group int

const (
	GroupStart Group = iota
	GroupCenter
	GroupEnd
)

func (g Group) String() string {
	switch g {
	case GroupStart:
		return "start"
	case GroupCenter:
		return "center"
	case GroupEnd:
		return "end"
	}
	return "unknown"
}

// Column describes one grid column. Zero widths mean "unset".
type Column[T any] struct {
	Key      string
	Pin      Pin
	Width    float64
	MinWidth float64
	MaxWidth float64
	Hidden   bool
	Value    func(row T) any
}

// Group returns the pin group the column belongs to.
func (c Column[T]) Group() Group {
	switch c.Pin {
	case PinStart:
		return GroupStart
	case PinEnd:
		return GroupEnd
	}
	return GroupCenter
}

// Bounds returns the effective [min, max] width bounds.
func (c Column[T]) Bounds() (lo, hi float64) {
	lo, hi = c.MinWidth, c.MaxWidth
	if lo <= 0 {
		lo = DefaultMinWidth
	}
	if hi <= 0 {
		hi = math.Inf(1)
	}
	return lo, hi
}

// RequestedWidth is the configured width before clamping.
func (c Column[T]) RequestedWidth() float64 {
	if c.Width > 0 {
		return c.Width
	}
	return DefaultWidth
}
