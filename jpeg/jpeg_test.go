package jpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-raster/raster/errs"
	"github.com/go-raster/raster/source"
)

// S3: SOI immediately followed by EOI, with no SOF in between, fails
// Malformed "no SOF".
func TestHeaderNoSOF(t *testing.T) {
	c := qt.New(t)
	buf := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	d := NewDecoder(source.NewMem(buf))
	err := d.header()
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Malformed)
}

func TestHeaderNoSOI(t *testing.T) {
	c := qt.New(t)
	buf := []byte{0x00, 0x01, 0xFF, 0xD9}
	d := NewDecoder(source.NewMem(buf))
	err := d.header()
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Malformed)
}

// builds a minimal single-component (grayscale) baseline JPEG: an
// all-ones quantization table, one DC code and one AC code (both
// single-bit, representing "DC diff 0" and "EOB"), and an
// entropy-coded segment that decodes every coefficient in the only
// block to zero.
func minimalGrayJPEG() []byte {
	var b []byte
	put := func(v ...byte) { b = append(b, v...) }

	put(0xFF, 0xD8) // SOI

	// DQT: one table, identity (all 1s), zigzag order doesn't matter
	// here since every coefficient decodes to zero anyway.
	put(0xFF, 0xDB, 0x00, 0x43, 0x00)
	for i := 0; i < 64; i++ {
		put(1)
	}

	// SOF0: 1x1, one component, 1:1 sampling.
	put(0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01, 0x11, 0x00)

	// DHT DC table 0: single 1-bit code, symbol 0x00 (category 0).
	put(0xFF, 0xC4, 0x00, 0x14, 0x00)
	put(1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	put(0x00)

	// DHT AC table 0: single 1-bit code, symbol 0x00 (EOB).
	put(0xFF, 0xC4, 0x00, 0x14, 0x10)
	put(1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	put(0x00)

	// SOS: one component, DC/AC table 0, full spectral range.
	put(0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3F, 0x00)

	// Entropy data: bit "0" (DC code) then bit "0" (AC code, EOB),
	// padded with 1 bits per the JPEG stuffing convention.
	put(0x3F)

	put(0xFF, 0xD9) // EOI
	return b
}

// S4: a 1x1 grayscale image whose only block decodes to all-zero
// coefficients produces a single sample of 128 (the IDCT's level
// shift with no energy).
func TestDecode1x1GrayAllZero(t *testing.T) {
	c := qt.New(t)
	img, err := Decode(source.NewMem(minimalGrayJPEG()), 0)
	c.Assert(err, qt.IsNil)
	c.Assert(img.Width, qt.Equals, 1)
	c.Assert(img.Height, qt.Equals, 1)
	c.Assert(img.Channels, qt.Equals, 1)
	c.Assert(img.Pix, qt.DeepEquals, []byte{128})
}

func TestDecodeInfoStopsBeforeEntropyData(t *testing.T) {
	c := qt.New(t)
	// Truncate right after SOF0: DecodeInfo must not need the DHT/SOS
	// segments that follow.
	full := minimalGrayJPEG()
	sofEnd := len([]byte{0xFF, 0xD8}) + len([]byte{0xFF, 0xDB, 0x00, 0x43, 0x00}) + 64 +
		len([]byte{0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01, 0x11, 0x00})
	w, h, ch, err := DecodeInfo(source.NewMem(full[:sofEnd]))
	c.Assert(err, qt.IsNil)
	c.Assert(w, qt.Equals, 1)
	c.Assert(h, qt.Equals, 1)
	c.Assert(ch, qt.Equals, 1)
}

// IDCT of an all-zero coefficient block is a flat 128 plane (spec.md
// §4.5's DC-only shortcut with no DC energy).
func TestIDCTBlockAllZero(t *testing.T) {
	c := qt.New(t)
	var data [64]int16
	out := make([]byte, 64)
	idctBlock(out, 0, 8, &data)
	for _, v := range out {
		c.Assert(v, qt.Equals, byte(128))
	}
}

// Frame header component sizing: a 5x5 image with Y sampled at 2x2 and
// Cb at 1x1 (spec.md §3's "effective vs allocated plane dimensions"
// invariant) rounds each plane up to its own MCU grid independently.
func TestFrameHeaderChromaSubsamplingSizing(t *testing.T) {
	c := qt.New(t)
	var b []byte
	put := func(v ...byte) { b = append(b, v...) }
	put(0xFF, 0xD8)
	// SOF0, 5x5, two components: Y h2v2 tq0, Cb h1v1 tq0.
	put(0xFF, 0xC0, 0x00, 0x0E, 0x08, 0x00, 0x05, 0x00, 0x05, 0x02,
		0x01, 0x22, 0x00,
		0x02, 0x11, 0x00)
	put(0xFF, 0xD9)

	d := NewDecoder(source.NewMem(b))
	err := d.header()
	c.Assert(err, qt.IsNil)
	c.Assert(d.hMax, qt.Equals, 2)
	c.Assert(d.vMax, qt.Equals, 2)
	c.Assert(d.mcuX, qt.Equals, 1)
	c.Assert(d.mcuY, qt.Equals, 1)

	y := d.comps[0]
	c.Assert(y.x, qt.Equals, 5)
	c.Assert(y.y, qt.Equals, 5)
	c.Assert(y.w2, qt.Equals, 16)
	c.Assert(y.h2, qt.Equals, 16)
	c.Assert(y.blocksWide, qt.Equals, 2)
	c.Assert(y.blocksHigh, qt.Equals, 2)

	cb := d.comps[1]
	c.Assert(cb.x, qt.Equals, 3)
	c.Assert(cb.y, qt.Equals, 3)
	c.Assert(cb.w2, qt.Equals, 8)
	c.Assert(cb.h2, qt.Equals, 8)
	c.Assert(cb.blocksWide, qt.Equals, 1)
	c.Assert(cb.blocksHigh, qt.Equals, 1)
}

// A single symbol at length 1 is stored as the table's first value
// with a 1-bit code length.
func TestBuildHuffmanSingleSymbol(t *testing.T) {
	c := qt.New(t)
	var counts [16]int
	counts[0] = 1
	h, err := buildHuffman(counts, []byte{0x07})
	c.Assert(err, qt.IsNil)
	c.Assert(h.values[0], qt.Equals, byte(0x07))
	c.Assert(h.size[0], qt.Equals, byte(1))
}

func TestBuildHuffmanOverflow(t *testing.T) {
	c := qt.New(t)
	var counts [16]int
	counts[0] = 3 // three codes can't fit in a 1-bit code space
	_, err := buildHuffman(counts, []byte{0, 1, 2})
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Malformed)
}
