package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name  string
	Price float64
}

func testColumns() []Column[row] {
	return []Column[row]{
		{Key: "select", Pin: PinStart, Width: 40, MinWidth: 40},
		{Key: "name", Value: func(r row) any { return r.Name }},
		{Key: "actions", Pin: PinEnd, Width: 80},
		{Key: "price", Width: 120, MaxWidth: 150, Value: func(r row) any { return r.Price }},
		{Key: "id", Pin: PinStart, Width: 60},
		{Key: "notes", Hidden: true},
		{Key: "tiny", Width: 10},
	}
}

func TestCompute_PartitionsPreservingOrder(t *testing.T) {
	l, err := Compute(testColumns(), nil)
	require.NoError(t, err)

	keys := func(g Group) []string {
		var out []string
		for _, c := range l.Group(g) {
			out = append(out, c.Key)
		}
		return out
	}
	assert.Equal(t, []string{"select", "id"}, keys(GroupStart))
	assert.Equal(t, []string{"name", "price", "tiny"}, keys(GroupCenter))
	assert.Equal(t, []string{"actions"}, keys(GroupEnd))
}

func TestCompute_WidthsAndOffsets(t *testing.T) {
	l, err := Compute(testColumns(), nil)
	require.NoError(t, err)

	cases := map[string]Dimensions{
		"select":  {Group: GroupStart, Index: 0, Offset: 0, Width: 40},
		"id":      {Group: GroupStart, Index: 1, Offset: 40, Width: 60},
		"name":    {Group: GroupCenter, Index: 0, Offset: 0, Width: 100},
		"price":   {Group: GroupCenter, Index: 1, Offset: 100, Width: 120},
		"tiny":    {Group: GroupCenter, Index: 2, Offset: 220, Width: 50},
		"actions": {Group: GroupEnd, Index: 0, Offset: 0, Width: 80},
	}
	for key, want := range cases {
		got, ok := l.Dimensions(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	_, ok := l.Dimensions("notes")
	assert.False(t, ok, "hidden columns have no dimensions")
	_, ok = l.Column("notes")
	assert.True(t, ok, "hidden columns stay addressable by key")

	assert.Equal(t, 100.0, l.Total(GroupStart))
	assert.Equal(t, 270.0, l.Total(GroupCenter))
	assert.Equal(t, 80.0, l.Total(GroupEnd))
	assert.Equal(t, 450.0, l.TotalWidth())
}

func TestCompute_GroupInvariants(t *testing.T) {
	l, err := Compute(testColumns(), map[string]float64{"name": 333})
	require.NoError(t, err)

	for _, g := range []Group{GroupStart, GroupCenter, GroupEnd} {
		var sum float64
		var prev *Dimensions
		for _, c := range l.Group(g) {
			d, _ := l.Dimensions(c.Key)
			sum += d.Width
			if prev != nil {
				assert.GreaterOrEqual(t, d.Offset, prev.End(), "%s overlaps its predecessor", c.Key)
			}
			prev = &d
		}
		assert.Equal(t, l.Total(g), sum, g.String())
	}
}

func TestCompute_OverrideIsClamped(t *testing.T) {
	l, err := Compute(testColumns(), map[string]float64{"price": 900, "name": 5})
	require.NoError(t, err)

	price, _ := l.Dimensions("price")
	name, _ := l.Dimensions("name")
	assert.Equal(t, 150.0, price.Width)
	assert.Equal(t, 50.0, name.Width)
}

func TestCompute_MinWinsOverMax(t *testing.T) {
	cols := []Column[row]{{Key: "odd", Width: 10, MinWidth: 90, MaxWidth: 60}}
	l, err := Compute(cols, nil)
	require.NoError(t, err)

	d, _ := l.Dimensions("odd")
	assert.Equal(t, 90.0, d.Width)
}

func TestCompute_DuplicateKey(t *testing.T) {
	cols := []Column[row]{{Key: "a"}, {Key: "a"}}
	_, err := Compute(cols, nil)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestLayout_CenterAxis(t *testing.T) {
	l, err := Compute(testColumns(), nil)
	require.NoError(t, err)

	axis := l.CenterAxis()
	assert.Equal(t, 3, axis.Count)
	assert.Equal(t, 0, axis.Search(0))
	assert.Equal(t, 1, axis.Search(100))
	assert.Equal(t, 2, axis.Search(150))
	assert.Equal(t, 1, axis.IndexAt(150))
}

func TestColumn_Value(t *testing.T) {
	l, err := Compute(testColumns(), nil)
	require.NoError(t, err)

	c, ok := l.Column("price")
	require.True(t, ok)
	assert.Equal(t, 9.5, c.Value(row{Price: 9.5}))
}
