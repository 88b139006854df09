// Package record defines the hierarchical search records extracted from a
// page.
package record

// LevelCount is the number of heading levels (lvl0..lvl5).
const LevelCount = 6

// FieldText is the field name of the leaf text level.
const FieldText = "text"

// Fields lists every indexed field, most significant first.
var Fields = []string{"lvl0", "lvl1", "lvl2", "lvl3", "lvl4", "lvl5", FieldText}

// Record is one searchable section of a page: the headings active above it,
// the text collected under the deepest one, and the anchor to link to.
type Record struct {
	URL    string `json:"url,omitempty"`
	Anchor string `json:"anchor,omitempty"`
	Lvl0   string `json:"lvl0,omitempty"`
	Lvl1   string `json:"lvl1,omitempty"`
	Lvl2   string `json:"lvl2,omitempty"`
	Lvl3   string `json:"lvl3,omitempty"`
	Lvl4   string `json:"lvl4,omitempty"`
	Lvl5   string `json:"lvl5,omitempty"`
	Text   string `json:"text,omitempty"`
}

func (r *Record) levels() [LevelCount]*string {
	return [LevelCount]*string{&r.Lvl0, &r.Lvl1, &r.Lvl2, &r.Lvl3, &r.Lvl4, &r.Lvl5}
}

// Level returns the heading text at level i, or "" when out of range.
func (r Record) Level(i int) string {
	if i < 0 || i >= LevelCount {
		return ""
	}
	return *r.levels()[i]
}

// SetLevel sets the heading text at level i.
func (r *Record) SetLevel(i int, v string) {
	if i < 0 || i >= LevelCount {
		return
	}
	*r.levels()[i] = v
}

// ClearFrom clears level i and every deeper level.
func (r *Record) ClearFrom(i int) {
	for j := max(i, 0); j < LevelCount; j++ {
		*r.levels()[j] = ""
	}
}

// Field returns the value of a named field from Fields.
func (r Record) Field(name string) string {
	if name == FieldText {
		return r.Text
	}
	for i, f := range Fields[:LevelCount] {
		if f == name {
			return r.Level(i)
		}
	}
	return ""
}

// Link returns the record's URL with its anchor as fragment.
func (r Record) Link() string {
	if r.Anchor == "" {
		return r.URL
	}
	return r.URL + "#" + r.Anchor
}

// Breadcrumb returns the non-empty heading levels in order.
func (r Record) Breadcrumb() []string {
	var out []string
	for i := range LevelCount {
		if v := r.Level(i); v != "" {
			out = append(out, v)
		}
	}
	return out
}
