// Package jpeg implements a baseline- and progressive-JPEG decoder:
// marker parsing, Huffman table construction and bitstream decoding,
// dequantization and inverse DCT, chroma upsampling across block
// boundaries, and YCbCr/CMYK/YCCK/grayscale to RGB conversion. It is
// the core described by spec.md §2 item 1.
//
// Arithmetic-coded, 12-bit, hierarchical and lossless JPEG are not
// supported; encountering one of their SOF markers fails Unsupported.
package jpeg

import (
	"github.com/go-raster/raster/errs"
	"github.com/go-raster/raster/source"
)

// component is one of up to four JPEG components (spec.md §3).
type component struct {
	id        byte
	h, v      byte
	tq        byte
	dcPred    int32

	x, y   int // effective sample dimensions
	w2, h2 int // allocated plane dimensions (rounded up to the MCU grid)

	samples []byte  // w2*h2 decoded/IDCT'd samples
	coeffs  []int16 // progressive only: blocksWide*blocksHigh*64 coefficients
	lineBuf []byte  // scratch line for upsampling guard, len W+3

	blocksWide, blocksHigh int
}

func (c *component) block(bx, by int) []int16 {
	idx := (by*c.blocksWide + bx) * 64
	return c.coeffs[idx : idx+64]
}

// Decoder owns one JPEG decode's mutable state: Huffman/quant tables,
// per-component buffers, and the current scan/bit-buffer state. One
// Decoder decodes one image; it is not safe for concurrent reuse
// (spec.md §5).
type Decoder struct {
	src source.Source

	W, H        int
	numComp     int
	progressive bool
	jfif        bool
	app14       int // -1 absent, 0 unknown, 1 YCbCr, 2 YCCK
	rgbCount    int // components whose id matched 'R','G','B' in order

	comps [4]component

	huffDC  [4]*huffTable
	huffAC  [4]*huffTable
	fastAC  [4][1 << fastBits]fastACEntry
	quant   [4][64]uint16
	quantSeen [4]bool

	restartInterval int
	mcuX, mcuY      int
	hMax, vMax      int

	// current scan
	scanN     int
	order     [4]int // component index, in scan order
	scanDC    [4]byte
	scanAC    [4]byte
	ss, se    int
	ah, al    int
	eobRun    int

	br *bitReader

	sawEOI bool
}

// NewDecoder wraps a byte source for decoding a single JPEG image.
func NewDecoder(src source.Source) *Decoder {
	d := &Decoder{src: src, app14: -1}
	d.br = newBitReader(d)
	return d
}

func (d *Decoder) readMarker() (byte, error) {
	var prev byte
	for i := 0; ; i++ {
		b, err := d.src.ReadByte()
		if err != nil {
			return 0, errs.ErrUnexpectedEnd
		}
		if prev == 0xFF && b != 0 && b != 0xFF {
			return b, nil
		}
		prev = b
		if i > 1<<20 {
			return 0, errs.Malformedf("no marker found")
		}
	}
}

// skipSegment reads a 2-byte big-endian length (including itself) and
// skips the remainder: the shared treatment for unknown/uninteresting
// markers (APPn/COM) per spec.md §6.
func (d *Decoder) skipSegment() error {
	l, err := d.src.ReadU16BE()
	if err != nil {
		return errs.ErrUnexpectedEnd
	}
	if l < 2 {
		return errs.Malformedf("bad segment length")
	}
	return d.src.Skip(int(l) - 2)
}

// header parses SOI through (and including) the frame header (SOF),
// skipping tables and APPn/COM along the way. It returns at SOF, so no
// scan or Huffman table is required, which DecodeInfo relies on.
func (d *Decoder) header() error {
	m, err := d.readMarker()
	if err != nil {
		return err
	}
	if m != markerSOI {
		return errs.Malformedf("no SOI")
	}
	for {
		m, err = d.readMarker()
		if err != nil {
			return err
		}
		if m == markerSOF0 || m == markerSOF1 || m == markerSOF2 {
			d.progressive = (m == markerSOF2)
			return d.processFrameHeader()
		}
		if isUnsupportedSOF(m) {
			return errs.Unsupportedf("unsupported SOF marker 0x%02X", m)
		}
		if m == markerEOI {
			return errs.Malformedf("no SOF")
		}
		if err := d.processMarker(m); err != nil {
			return err
		}
	}
}

// processMarker dispatches a single table/APPn/COM marker encountered
// between SOI and SOF, or between scans.
func (d *Decoder) processMarker(m byte) error {
	switch {
	case m == markerDQT:
		return d.processDQT()
	case m == markerDHT:
		return d.processDHT()
	case m == markerDRI:
		return d.processDRI()
	case m == markerAPP0:
		return d.processAPP0()
	case m == markerAPP14:
		return d.processAPP14()
	case m >= markerAPP0 && m <= markerAPP15:
		return d.skipSegment()
	case m == markerCOM:
		return d.skipSegment()
	case m == markerDNL:
		return d.processDNL()
	default:
		return d.skipSegment()
	}
}
