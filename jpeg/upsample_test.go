package jpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// resampleRowHV2 folds the vertical and horizontal 3:1 blends into one
// running sum, rounding to a byte only once (spec.md §4.7's joint
// formula, matching stb's stbi__resample_row_hv_2). Hand-computed
// against near=[10,50], far=[30,70].
func TestResampleRowHV2Joint(t *testing.T) {
	c := qt.New(t)
	out := make([]byte, 4)
	resampleRowHV2(out, []byte{10, 50}, []byte{30, 70}, 2)
	c.Assert(out, qt.DeepEquals, []byte{15, 25, 45, 55})
}

func TestResampleRowHV2SingleSample(t *testing.T) {
	c := qt.New(t)
	out := make([]byte, 2)
	resampleRowHV2(out, []byte{40}, []byte{80}, 1)
	want := div4(3*40 + 80 + 2)
	c.Assert(out[0], qt.Equals, want)
	c.Assert(out[1], qt.Equals, want)
}

// upsampleHV2 uses low-res row t as "near" for both of its output
// sub-rows, blending it with row t-1 for the upper one and row t+1 for
// the lower one, clamped at the first and last rows so the edge output
// rows replicate.
func TestUpsampleHV2TwoRows(t *testing.T) {
	c := qt.New(t)
	comp := &component{x: 2, y: 2, w2: 2, h2: 2, samples: []byte{10, 50, 30, 70}}
	d := &Decoder{}
	out := d.upsampleHV2(comp, 4, 4)

	// First low-res row has no row before it: the upper sub-row pairs
	// row 0 with itself.
	row0 := make([]byte, 4)
	resampleRowHV2(row0, comp.samples[0:2], comp.samples[0:2], 2)
	c.Assert(out[0:4], qt.DeepEquals, row0)

	row1 := make([]byte, 4)
	resampleRowHV2(row1, comp.samples[0:2], comp.samples[2:4], 2)
	c.Assert(out[4:8], qt.DeepEquals, row1)

	row2 := make([]byte, 4)
	resampleRowHV2(row2, comp.samples[2:4], comp.samples[0:2], 2)
	c.Assert(out[8:12], qt.DeepEquals, row2)

	// Last low-res row has no row beyond it: the lower sub-row pairs
	// row 1 with itself.
	row3 := make([]byte, 4)
	resampleRowHV2(row3, comp.samples[2:4], comp.samples[2:4], 2)
	c.Assert(out[12:16], qt.DeepEquals, row3)
}
