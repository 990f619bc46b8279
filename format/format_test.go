package format

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-raster/raster/source"
)

func TestSniffBMP(t *testing.T) {
	c := qt.New(t)
	c.Assert(Sniff(source.NewMem([]byte("BM\x00\x00\x00\x00"))), qt.Equals, "bmp")
}

func TestSniffGIF(t *testing.T) {
	c := qt.New(t)
	c.Assert(Sniff(source.NewMem([]byte("GIF89a"))), qt.Equals, "gif")
	c.Assert(Sniff(source.NewMem([]byte("GIF87a"))), qt.Equals, "gif")
}

func TestSniffPSD(t *testing.T) {
	c := qt.New(t)
	c.Assert(Sniff(source.NewMem([]byte("8BPS\x00\x01"))), qt.Equals, "psd")
}

func TestSniffPIC(t *testing.T) {
	c := qt.New(t)
	buf := append([]byte("\x53\x80\xF6\x34"), make([]byte, 84)...)
	buf = append(buf, []byte("PICT")...)
	c.Assert(Sniff(source.NewMem(buf)), qt.Equals, "pic")
}

func TestSniffPNM(t *testing.T) {
	c := qt.New(t)
	c.Assert(Sniff(source.NewMem([]byte("P5\n2 2\n255\n"))), qt.Equals, "pnm")
	c.Assert(Sniff(source.NewMem([]byte("P6\n2 2\n255\n"))), qt.Equals, "pnm")
	// ASCII PGM (P2) is not recognized: only binary P5/P6 are.
	c.Assert(Sniff(source.NewMem([]byte("P2\n2 2\n255\n"))), qt.Equals, "")
}

func TestSniffHDR(t *testing.T) {
	c := qt.New(t)
	c.Assert(Sniff(source.NewMem([]byte("#?RADIANCE\n"))), qt.Equals, "hdr")
	c.Assert(Sniff(source.NewMem([]byte("#?RGBE\n"))), qt.Equals, "hdr")
}

func TestSniffTGA(t *testing.T) {
	c := qt.New(t)
	// Uncompressed truecolor TGA header: id length 0, color type 0,
	// image type 2, 9 skipped bytes, width 4, height 4, bpp 24.
	buf := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 0, 4, 0, 24}
	c.Assert(Sniff(source.NewMem(buf)), qt.Equals, "tga")
}

func TestSniffNone(t *testing.T) {
	c := qt.New(t)
	c.Assert(Sniff(source.NewMem([]byte("not an image"))), qt.Equals, "")
}

// Sniff restores the source position after every attempt, successful
// or not, so a caller can retry with a different decoder.
func TestSniffRestoresPosition(t *testing.T) {
	c := qt.New(t)
	src := source.NewMem([]byte("GIF89a and then more data"))
	anchor := src.Tell()
	Sniff(src)
	c.Assert(src.Tell(), qt.Equals, anchor)
}
