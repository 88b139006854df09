package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Levels(t *testing.T) {
	var r Record
	r.SetLevel(0, "Guide")
	r.SetLevel(2, "Sorting")
	r.SetLevel(9, "ignored")

	assert.Equal(t, "Guide", r.Lvl0)
	assert.Equal(t, "Sorting", r.Level(2))
	assert.Equal(t, "", r.Level(-1))
	assert.Equal(t, []string{"Guide", "Sorting"}, r.Breadcrumb())

	r.ClearFrom(1)
	assert.Equal(t, "Guide", r.Lvl0)
	assert.Empty(t, r.Lvl2)
}

func TestRecord_Field(t *testing.T) {
	r := Record{Lvl1: "Columns", Text: "Pinned columns stay put."}
	assert.Equal(t, "Columns", r.Field("lvl1"))
	assert.Equal(t, "Pinned columns stay put.", r.Field(FieldText))
	assert.Equal(t, "", r.Field("nope"))
}

func TestRecord_Link(t *testing.T) {
	assert.Equal(t, "/docs/grid", Record{URL: "/docs/grid"}.Link())
	assert.Equal(t, "/docs/grid#resizing", Record{URL: "/docs/grid", Anchor: "resizing"}.Link())
}

func TestRecord_JSONKeys(t *testing.T) {
	data, err := json.Marshal(Record{Lvl0: "A", Text: "t", Anchor: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"lvl0":"A","text":"t","anchor":"x"}`, string(data))
}
