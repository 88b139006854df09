package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixed_IndexAt(t *testing.T) {
	f := Fixed{Count: 100, Size: 50}

	assert.Equal(t, 0, f.IndexAt(0))
	assert.Equal(t, 0, f.IndexAt(49.9))
	assert.Equal(t, 1, f.IndexAt(50))
	assert.Equal(t, 5, f.IndexAt(273))
	assert.Equal(t, 99, f.IndexAt(4999))
	assert.Equal(t, 99, f.IndexAt(1e9))
}

func TestFixed_NegativeOffsetClampsToZero(t *testing.T) {
	f := Fixed{Count: 10, Size: 20}
	assert.Equal(t, 0, f.IndexAt(-300))
}

func TestFixed_EmptyAxis(t *testing.T) {
	f := Fixed{Count: 0, Size: 50}
	assert.Equal(t, -1, f.IndexAt(10))

	r := f.Range(0, 600)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, EmptyRange, r)
}

func TestFixed_RangeIncludesEndItem(t *testing.T) {
	f := Fixed{Count: 100, Size: 50}
	r := f.Range(0, 600)
	assert.Equal(t, Range{Start: 0, End: 12}, r)
	assert.Equal(t, 13, r.Len())
}

func TestFixed_Monotonic(t *testing.T) {
	f := Fixed{Count: 37, Size: 13.5}
	prev := f.IndexAt(-100)
	for o := -100.0; o < 700; o += 0.75 {
		cur := f.IndexAt(o)
		if cur < prev {
			t.Fatalf("IndexAt(%v)=%d is below previous %d", o, cur, prev)
		}
		prev = cur
	}
}

func TestFixed_Total(t *testing.T) {
	assert.Equal(t, 5000.0, Fixed{Count: 100, Size: 50}.Total())
	assert.Equal(t, 0.0, Fixed{}.Total())
}
