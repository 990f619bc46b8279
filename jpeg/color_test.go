package jpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// A requested channel count of 1 collapses a raw-RGB 3-component image
// to luma via computeY (a YCbCr image uses its Y plane directly).
func TestColorConvertRequestedGrayFromRGB(t *testing.T) {
	c := qt.New(t)
	d := &Decoder{W: 1, H: 1, app14: -1, rgbCount: 3}
	planes := [][]byte{{10}, {20}, {30}}
	pix, ch := d.colorConvert(planes, 1)
	c.Assert(ch, qt.Equals, 1)
	c.Assert(pix, qt.DeepEquals, []byte{computeY(10, 20, 30)})
}

// Three components whose ids spell "RGB" pass through untouched
// rather than being treated as YCbCr (spec.md's is_rgb condition).
func TestColorConvertRGBPassthrough(t *testing.T) {
	c := qt.New(t)
	d := &Decoder{W: 1, H: 1, app14: -1, rgbCount: 3}
	planes := [][]byte{{10}, {20}, {30}}
	pix, ch := d.colorConvert(planes, 0)
	c.Assert(ch, qt.Equals, 3)
	c.Assert(pix, qt.DeepEquals, []byte{10, 20, 30})
}

// Without the RGB id marker, no Adobe APP14 segment (app14 -1) and no
// JFIF marker either is still YCbCr: original_source's
// "app14_color_transform==0 && !jfif" raw-RGB case needs an Adobe
// segment declaring transform 0. Centered chroma (Cb=Cr=128) must
// produce a gray pixel equal to Y.
func TestColorConvertYCbCrNoMarkers(t *testing.T) {
	c := qt.New(t)
	d := &Decoder{W: 1, H: 1, app14: -1, jfif: false, rgbCount: 0}
	planes := [][]byte{{200}, {128}, {128}}
	pix, ch := d.colorConvert(planes, 0)
	c.Assert(ch, qt.Equals, 3)
	c.Assert(pix, qt.DeepEquals, []byte{200, 200, 200})
}

// A plain JFIF JPEG (no APP14, JFIF present) is always YCbCr even
// with app14 absent (-1), never RGB passthrough.
func TestColorConvertYCbCrJFIF(t *testing.T) {
	c := qt.New(t)
	d := &Decoder{W: 1, H: 1, app14: -1, jfif: true, rgbCount: 0}
	planes := [][]byte{{200}, {128}, {128}}
	pix, ch := d.colorConvert(planes, 0)
	c.Assert(ch, qt.Equals, 3)
	c.Assert(pix, qt.DeepEquals, []byte{200, 200, 200})
}

// CMYK (APP14 transform 0) applies the black channel as a raw,
// un-inverted multiplicative matte: blinn8x8(channel, K).
func TestColorConvertCMYKRawK(t *testing.T) {
	c := qt.New(t)
	d := &Decoder{W: 1, H: 1, app14: 0}
	planes := [][]byte{{100}, {150}, {200}, {64}}
	pix, ch := d.colorConvert(planes, 0)
	c.Assert(ch, qt.Equals, 3)
	want := []byte{blinn8x8(100, 64), blinn8x8(150, 64), blinn8x8(200, 64)}
	c.Assert(pix, qt.DeepEquals, want)
}

// YCCK (APP14 transform 2) converts Y/Cb/Cr to RGB first, then
// applies the black channel against the inverted RGB.
func TestColorConvertYCCK(t *testing.T) {
	c := qt.New(t)
	d := &Decoder{W: 1, H: 1, app14: 2}
	planes := [][]byte{{200}, {128}, {128}, {64}}
	pix, ch := d.colorConvert(planes, 0)
	c.Assert(ch, qt.Equals, 3)
	want := byte(blinn8x8(255-200, 64))
	c.Assert(pix, qt.DeepEquals, []byte{want, want, want})
}

// A 4-component frame with no Adobe APP14 segment at all (app14
// absent) is YCbCr plus an alpha channel that gets dropped, not CMYK.
func TestColorConvertFourComponentNoAdobeIsYCbCr(t *testing.T) {
	c := qt.New(t)
	d := &Decoder{W: 1, H: 1, app14: -1}
	planes := [][]byte{{200}, {128}, {128}, {77}}
	pix, ch := d.colorConvert(planes, 0)
	c.Assert(ch, qt.Equals, 3)
	c.Assert(pix, qt.DeepEquals, []byte{200, 200, 200})
}
