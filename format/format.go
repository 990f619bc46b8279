// Package format recognizes container formats this module does not
// decode (spec.md §1's explicit Non-goals: BMP, GIF, PSD, TGA, HDR,
// PIC, PNM), so the root dispatcher can fail with a precise
// Unsupported error naming the detected format instead of a generic
// "unknown format". Detection only; no pixel data is ever produced
// here.
package format

import "github.com/go-raster/raster/source"

// detector pairs a format name with a magic-byte test. Tests may
// consume and rewind the source freely; Sniff restores the caller's
// original position regardless of outcome.
type detector struct {
	name string
	test func(src source.Source) bool
}

// detectors is tried in the order original_source/image_api.c's
// stbi__load_main uses, after JPEG and PNG have already been ruled
// out: BMP, GIF, PSD, PIC, PNM, HDR, and TGA last, because its test is
// the weakest (a handful of plausible-byte-range checks, not a magic
// string).
var detectors = []detector{
	{"bmp", testBMP},
	{"gif", testGIF},
	{"psd", testPSD},
	{"pic", testPIC},
	{"pnm", testPNM},
	{"hdr", testHDR},
	{"tga", testTGA},
}

// Sniff returns the name of the first recognized format, or "" if none
// match.
func Sniff(src source.Source) string {
	anchor := src.Tell()
	for _, d := range detectors {
		matched := d.test(src)
		src.RewindTo(anchor)
		if matched {
			return d.name
		}
	}
	return ""
}

func matchLiteral(src source.Source, lit string) bool {
	buf := make([]byte, len(lit))
	if src.ReadFull(buf) != nil {
		return false
	}
	return string(buf) == lit
}

func testBMP(src source.Source) bool {
	return matchLiteral(src, "BM")
}

func testGIF(src source.Source) bool {
	anchor := src.Tell()
	if matchLiteral(src, "GIF87a") {
		return true
	}
	src.RewindTo(anchor)
	return matchLiteral(src, "GIF89a")
}

// testPSD mirrors codec/psd.c's stbi__psd_test: the four-byte magic
// "8BPS" read as a big-endian word.
func testPSD(src source.Source) bool {
	v, err := src.ReadU32BE()
	return err == nil && v == 0x38425053
}

// testPIC mirrors codec/pic.c's stbi__pic_test_core: a four-byte magic,
// an 84-byte reserved block, then the literal "PICT".
func testPIC(src source.Source) bool {
	if !matchLiteral(src, "\x53\x80\xF6\x34") {
		return false
	}
	if src.Skip(84) != nil {
		return false
	}
	return matchLiteral(src, "PICT")
}

// testPNM mirrors codec/pgm.c's stbi__pnm_test: "P5" (PGM) or "P6"
// (PPM) only; ASCII-encoded P1-P3 are not recognized.
func testPNM(src source.Source) bool {
	var b [2]byte
	if src.ReadFull(b[:]) != nil {
		return false
	}
	return b[0] == 'P' && (b[1] == '5' || b[1] == '6')
}

// testHDR mirrors codec/rgbe_hdr.c's stbi__hdr_test: either Radiance
// signature line.
func testHDR(src source.Source) bool {
	anchor := src.Tell()
	if matchLiteral(src, "#?RADIANCE\n") {
		return true
	}
	src.RewindTo(anchor)
	return matchLiteral(src, "#?RGBE\n")
}

// testTGA mirrors codec/tga.c's stbi__tga_test: there is no magic
// number, just a chain of plausible-range checks against the fixed
// 18-byte header.
func testTGA(src source.Source) bool {
	if _, err := src.ReadByte(); err != nil { // id length, unused
		return false
	}
	colorType, err := src.ReadByte()
	if err != nil || colorType > 1 {
		return false
	}
	imageType, err := src.ReadByte()
	if err != nil {
		return false
	}
	if colorType == 1 {
		if imageType != 1 && imageType != 9 {
			return false
		}
		if src.Skip(4) != nil {
			return false
		}
		sz, err := src.ReadByte()
		if err != nil {
			return false
		}
		switch sz {
		case 8, 15, 16, 24, 32:
		default:
			return false
		}
		if src.Skip(4) != nil {
			return false
		}
	} else {
		switch imageType {
		case 2, 3, 10, 11:
		default:
			return false
		}
		if src.Skip(9) != nil {
			return false
		}
	}
	w, err := src.ReadU16LE()
	if err != nil || w < 1 {
		return false
	}
	h, err := src.ReadU16LE()
	if err != nil || h < 1 {
		return false
	}
	sz, err := src.ReadByte()
	if err != nil {
		return false
	}
	if colorType == 1 {
		return sz == 8 || sz == 16
	}
	switch sz {
	case 8, 16, 24, 32:
		return true
	default:
		return false
	}
}
