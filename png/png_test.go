package png

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-raster/raster/errs"
	"github.com/go-raster/raster/source"
)

// a hand-assembled 2x2 truecolor PNG: IHDR, a stored (uncompressed)
// zlib-wrapped IDAT, IEND. Pixels, row-major: (255,0,0) (0,255,0) /
// (0,0,255) (255,255,0).
var tiny2x2RGB = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x02,
	0x08, 0x02, 0x00, 0x00, 0x00, 0xFD, 0xD4, 0x9A, 0x73,
	0x00, 0x00, 0x00, 0x19, 0x49, 0x44, 0x41, 0x54,
	0x78, 0x01, 0x01, 0x0E, 0x00, 0xF1, 0xFF,
	0x00, 0xFF, 0x00, 0x00, 0x00, 0xFF, 0x00,
	0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x00,
	0x1E, 0xEF, 0x04, 0xFC,
	0x2A, 0xB8, 0x82, 0x17,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
}

func TestDecodeTiny2x2RGB(t *testing.T) {
	c := qt.New(t)
	img, err := Decode(source.NewMem(tiny2x2RGB))
	c.Assert(err, qt.IsNil)
	c.Assert(img.Width, qt.Equals, 2)
	c.Assert(img.Height, qt.Equals, 2)
	c.Assert(img.Channels, qt.Equals, 3)
	want := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 0,
	}
	c.Assert(img.Pix, qt.DeepEquals, want)
}

func TestDecodeInfoTiny2x2RGB(t *testing.T) {
	c := qt.New(t)
	w, h, ch, depth, err := DecodeInfo(source.NewMem(tiny2x2RGB))
	c.Assert(err, qt.IsNil)
	c.Assert(w, qt.Equals, 2)
	c.Assert(h, qt.Equals, 2)
	c.Assert(ch, qt.Equals, 3)
	c.Assert(depth, qt.Equals, 8)
}

// A single corrupted byte inside the IDAT chunk flips its CRC32 and
// must fail Malformed rather than silently decoding garbage.
func TestDecodeCRCMismatch(t *testing.T) {
	c := qt.New(t)
	buf := append([]byte(nil), tiny2x2RGB...)
	// Invert one byte inside the IDAT chunk's compressed payload (chunk data
	// starts at byte 41: 8-byte signature + 25-byte IHDR chunk + 8-byte
	// IDAT length/type prefix).
	buf[45] ^= 0xFF
	_, err := Decode(source.NewMem(buf))
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Malformed)
}

func TestBadSignature(t *testing.T) {
	c := qt.New(t)
	buf := append([]byte(nil), tiny2x2RGB...)
	buf[1] = 0x00
	_, err := Decode(source.NewMem(buf))
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Malformed)
}

func TestInterlacedRejected(t *testing.T) {
	c := qt.New(t)
	buf := append([]byte(nil), tiny2x2RGB...)
	buf[28] = 1 // IHDR interlace method byte (data starts at offset 16: width/height/depth/colortype/compression/filter/interlace)
	// Re-seal the IHDR CRC so decoding reaches the interlace check.
	buf[29], buf[30], buf[31], buf[32] = 0x8A, 0xD3, 0xAA, 0xE5
	_, err := Decode(source.NewMem(buf))
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Unsupported)
}

// a 1x1 indexed PNG whose single PLTE entry (index 0) doesn't cover
// the pixel's actual index (5): PLTE may legally carry fewer entries
// than the bit depth allows, so this must fail Malformed, not panic.
var indexOutOfRangePNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x03, 0x00, 0x00, 0x00, 0x28, 0xCB, 0x34, 0xBB,
	0x00, 0x00, 0x00, 0x03, 0x50, 0x4C, 0x54, 0x45,
	0x0A, 0x14, 0x1E, 0x7E, 0x4C, 0x52, 0x3A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x44, 0x41, 0x54,
	0x78, 0x01, 0x01, 0x02, 0x00, 0xFD, 0xFF, 0x00, 0x05, 0x00, 0x07, 0x00, 0x06, 0x2E, 0x4A, 0xD5, 0xEA,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
}

func TestDecodeIndexOutOfRange(t *testing.T) {
	c := qt.New(t)
	_, err := Decode(source.NewMem(indexOutOfRangePNG))
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Malformed)
}

func TestPaethPredictor(t *testing.T) {
	c := qt.New(t)
	// a == b == c: predictor returns a (per the PNG spec's worked
	// example: ties resolve to a).
	c.Assert(paeth(10, 10, 10), qt.Equals, byte(10))
	// pure left gradient: c == b, predictor returns a.
	c.Assert(paeth(5, 0, 0), qt.Equals, byte(5))
}

func TestUnfilterSub(t *testing.T) {
	c := qt.New(t)
	// One row, stride 3, bpp 1: filter Sub, raw deltas 10,5,5 decode
	// to a running sum 10,15,20.
	raw := []byte{1, 10, 5, 5}
	out, err := unfilterAll(raw, 1, 3, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.DeepEquals, []byte{10, 15, 20})
}
