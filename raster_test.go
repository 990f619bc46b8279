package raster

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-raster/raster/errs"
	"github.com/go-raster/raster/source"
)

// minimalGrayJPEG builds the same 1x1 all-zero-coefficient grayscale
// JPEG used by the jpeg package's own tests, to exercise dispatch
// through the root package without reaching into an internal package.
func minimalGrayJPEG() []byte {
	var b []byte
	put := func(v ...byte) { b = append(b, v...) }
	put(0xFF, 0xD8)
	put(0xFF, 0xDB, 0x00, 0x43, 0x00)
	for i := 0; i < 64; i++ {
		put(1)
	}
	put(0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01, 0x11, 0x00)
	put(0xFF, 0xC4, 0x00, 0x14, 0x00)
	put(1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	put(0x00)
	put(0xFF, 0xC4, 0x00, 0x14, 0x10)
	put(1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	put(0x00)
	put(0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3F, 0x00)
	put(0x3F)
	put(0xFF, 0xD9)
	return b
}

var tiny2x2RGBPNG = []byte{
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

func TestDecodeDispatchesJPEG(t *testing.T) {
	c := qt.New(t)
	img, err := DecodeBytes(minimalGrayJPEG(), Options{})
	c.Assert(err, qt.IsNil)
	c.Assert(img.Width, qt.Equals, 1)
	c.Assert(img.Height, qt.Equals, 1)
	c.Assert(img.Channels, qt.Equals, 1)
	c.Assert(img.BitsPerChannel, qt.Equals, 8)
}

// Options.Channels lets a caller request a specific output shape even
// from a native 1-component JPEG: requesting 3 replicates gray into
// R=G=B.
func TestDecodeRequestedChannels(t *testing.T) {
	c := qt.New(t)
	img, err := DecodeBytes(minimalGrayJPEG(), Options{Channels: 3})
	c.Assert(err, qt.IsNil)
	c.Assert(img.Channels, qt.Equals, 3)
	c.Assert(img.Pix, qt.DeepEquals, []byte{128, 128, 128})
}

func TestDecodeDispatchesPNG(t *testing.T) {
	c := qt.New(t)
	img, err := DecodeBytes(tiny2x2RGBPNG, Options{})
	c.Assert(err, qt.IsNil)
	c.Assert(img.Width, qt.Equals, 2)
	c.Assert(img.Height, qt.Equals, 2)
	c.Assert(img.Channels, qt.Equals, 3)
}

// A recognized-but-unsupported container (GIF) fails with an
// Unsupported error naming the detected format, not a generic
// "unrecognized" one.
func TestDecodeRecognizesUnsupportedFormat(t *testing.T) {
	c := qt.New(t)
	_, err := DecodeBytes([]byte("GIF89a\x00\x00\x00\x00\x00\x00"), Options{})
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Unsupported)
}

func TestDecodeUnrecognizedFormat(t *testing.T) {
	c := qt.New(t)
	_, err := DecodeBytes([]byte("not an image at all, just text"), Options{})
	var e *errs.Error
	c.Assert(err, qt.ErrorAs, &e)
	c.Assert(e.Kind, qt.Equals, errs.Malformed)
}

func TestDecodeInfoDispatchesPNG(t *testing.T) {
	c := qt.New(t)
	w, h, ch, err := DecodeInfo(source.NewMem(tiny2x2RGBPNG))
	c.Assert(err, qt.IsNil)
	c.Assert(w, qt.Equals, 2)
	c.Assert(h, qt.Equals, 2)
	c.Assert(ch, qt.Equals, 3)
}
