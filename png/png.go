// Package png decodes the PNG container (spec.md's "used by the PNG
// path" contract for raster/deflate, expanded to a full reader by
// SPEC_FULL.md §4): chunk walk, CRC32 verification, the zlib-wrapped
// IDAT stream handed to raster/deflate, and the five PNG scanline
// filters. Interlaced images and ancillary chunks beyond tRNS are
// explicitly unsupported.
package png

import (
	"hash/crc32"

	"github.com/go-raster/raster/deflate"
	"github.com/go-raster/raster/errs"
	"github.com/go-raster/raster/source"
)

var signature = [8]byte{137, 80, 78, 71, 13, 10, 26, 10}

// Image is a fully decoded PNG raster: Channels bytes per pixel,
// row-major, no row padding. Samples wider than 8 bits are truncated
// to their most significant byte.
type Image struct {
	Width, Height int
	Channels      int
	Pix           []byte
}

type decoder struct {
	src source.Source

	width, height int
	bitDepth      int
	colorType     int

	palette [][3]byte

	haveTRNS    bool
	trnsIdx     []byte
	trnsGrayRaw byte
	trnsGray16  uint16
	trnsRGBRaw  [3]byte
	trnsRGB16   [3]uint16

	haveIHDR bool
	idat     []byte
}

func channelsForColorType(ct int) int {
	switch ct {
	case 0:
		return 1
	case 2:
		return 3
	case 3:
		return 1
	case 4:
		return 2
	case 6:
		return 4
	default:
		return 0
	}
}

func validBitDepth(colorType, depth int) bool {
	switch colorType {
	case 0:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case 2, 4, 6:
		return depth == 8 || depth == 16
	case 3:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	}
	return false
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (d *decoder) readSignature() error {
	var sig [8]byte
	if err := d.src.ReadFull(sig[:]); err != nil {
		return err
	}
	if sig != signature {
		return errs.Malformedf("bad PNG signature")
	}
	return nil
}

// readChunk reads one length-prefixed, CRC-checked chunk (spec.md
// GLOSSARY "Chunk").
func (d *decoder) readChunk() (ctype string, data []byte, done bool, err error) {
	length, err := d.src.ReadU32BE()
	if err != nil {
		return "", nil, false, err
	}
	if length > 1<<28 {
		return "", nil, false, errs.Resourcef("PNG chunk too large")
	}
	var typeBuf [4]byte
	if err := d.src.ReadFull(typeBuf[:]); err != nil {
		return "", nil, false, err
	}
	data = make([]byte, length)
	if err := d.src.ReadFull(data); err != nil {
		return "", nil, false, err
	}
	var crcBuf [4]byte
	if err := d.src.ReadFull(crcBuf[:]); err != nil {
		return "", nil, false, err
	}

	h := crc32.NewIEEE()
	h.Write(typeBuf[:])
	h.Write(data)
	if h.Sum32() != be32(crcBuf[:]) {
		return "", nil, false, errs.Malformedf("chunk %q CRC mismatch", typeBuf[:])
	}

	ctype = string(typeBuf[:])
	return ctype, data, ctype == "IEND", nil
}

func (d *decoder) processIHDR(data []byte) error {
	if len(data) != 13 {
		return errs.Malformedf("bad IHDR length")
	}
	w := int(be32(data[0:4]))
	h := int(be32(data[4:8]))
	if w <= 0 || h <= 0 {
		return errs.Malformedf("zero PNG dimension")
	}
	d.width, d.height = w, h
	d.bitDepth = int(data[8])
	d.colorType = int(data[9])
	if data[10] != 0 {
		return errs.Unsupportedf("PNG compression method %d", data[10])
	}
	if data[11] != 0 {
		return errs.Malformedf("bad PNG filter method %d", data[11])
	}
	if data[12] != 0 {
		return errs.Unsupportedf("interlaced PNG")
	}
	if channelsForColorType(d.colorType) == 0 {
		return errs.Malformedf("bad PNG color type %d", d.colorType)
	}
	if !validBitDepth(d.colorType, d.bitDepth) {
		return errs.Malformedf("bad bit depth %d for color type %d", d.bitDepth, d.colorType)
	}
	d.haveIHDR = true
	return nil
}

func (d *decoder) processPLTE(data []byte) error {
	if len(data)%3 != 0 || len(data) == 0 {
		return errs.Malformedf("bad PLTE length")
	}
	n := len(data) / 3
	d.palette = make([][3]byte, n)
	for i := 0; i < n; i++ {
		d.palette[i] = [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return nil
}

func (d *decoder) processTRNS(data []byte) error {
	switch d.colorType {
	case 3:
		d.trnsIdx = append([]byte(nil), data...)
	case 0:
		if len(data) < 2 {
			return errs.Malformedf("bad tRNS length")
		}
		d.trnsGray16 = uint16(data[0])<<8 | uint16(data[1])
		if d.bitDepth == 16 {
			d.trnsGrayRaw = data[0]
		} else {
			d.trnsGrayRaw = data[1]
		}
	case 2:
		if len(data) < 6 {
			return errs.Malformedf("bad tRNS length")
		}
		for i := 0; i < 3; i++ {
			d.trnsRGB16[i] = uint16(data[i*2])<<8 | uint16(data[i*2+1])
			if d.bitDepth == 16 {
				d.trnsRGBRaw[i] = data[i*2]
			} else {
				d.trnsRGBRaw[i] = data[i*2+1]
			}
		}
	default:
		return errs.Malformedf("tRNS not allowed for color type %d", d.colorType)
	}
	d.haveTRNS = true
	return nil
}

// Decode reads one complete PNG image from src.
func Decode(src source.Source) (*Image, error) {
	d := &decoder{src: src}
	if err := d.readSignature(); err != nil {
		return nil, err
	}
	for {
		ctype, data, done, err := d.readChunk()
		if err != nil {
			return nil, err
		}
		switch ctype {
		case "IHDR":
			if err := d.processIHDR(data); err != nil {
				return nil, err
			}
		case "PLTE":
			if err := d.processPLTE(data); err != nil {
				return nil, err
			}
		case "tRNS":
			if !d.haveIHDR {
				return nil, errs.Malformedf("tRNS before IHDR")
			}
			if err := d.processTRNS(data); err != nil {
				return nil, err
			}
		case "IDAT":
			if !d.haveIHDR {
				return nil, errs.Malformedf("IDAT before IHDR")
			}
			d.idat = append(d.idat, data...)
		}
		if done {
			break
		}
	}
	if !d.haveIHDR {
		return nil, errs.Malformedf("missing IHDR")
	}
	if d.colorType == 3 && len(d.palette) == 0 {
		return nil, errs.Malformedf("indexed PNG missing PLTE")
	}

	srcChannels := channelsForColorType(d.colorType)
	bitsPerPixel := srcChannels * d.bitDepth
	stride := (d.width*bitsPerPixel + 7) / 8
	bpp := (bitsPerPixel + 7) / 8
	if bpp < 1 {
		bpp = 1
	}

	outCap := d.width*d.height*4 + 1<<20
	raw, err := deflate.Zlib(d.idat, deflate.Options{MaxSize: outCap})
	if err != nil {
		return nil, err
	}
	unfiltered, err := unfilterAll(raw, d.height, stride, bpp)
	if err != nil {
		return nil, err
	}

	outChannels := srcChannels
	switch d.colorType {
	case 0, 2:
		if d.haveTRNS {
			outChannels++
		}
	case 3:
		outChannels = 3
		if len(d.trnsIdx) > 0 {
			outChannels = 4
		}
	}

	pix := make([]byte, d.width*d.height*outChannels)
	for y := 0; y < d.height; y++ {
		row := unfiltered[y*stride : (y+1)*stride]
		samples := expandSamples(row, d.width, srcChannels, d.bitDepth)
		out := pix[y*d.width*outChannels : (y+1)*d.width*outChannels]
		if err := d.writeRow(samples, out, outChannels); err != nil {
			return nil, err
		}
	}
	return &Image{Width: d.width, Height: d.height, Channels: outChannels, Pix: pix}, nil
}

// writeRow expands one scanline of raw (possibly sub-byte, possibly
// palette-indexed) samples into outChannels bytes per pixel. PLTE may
// legally carry fewer than 2^bitDepth entries, so an indexed sample
// out of range is a Malformed stream, not a programming error.
func (d *decoder) writeRow(samples, out []byte, outChannels int) error {
	switch d.colorType {
	case 0: // grayscale
		for x := 0; x < d.width; x++ {
			raw := samples[x]
			out[x*outChannels] = scaleSample(raw, d.bitDepth)
			if outChannels == 2 {
				if raw == d.trnsGrayRaw {
					out[x*outChannels+1] = 0
				} else {
					out[x*outChannels+1] = 255
				}
			}
		}
	case 2: // truecolor
		for x := 0; x < d.width; x++ {
			r, g, b := samples[x*3], samples[x*3+1], samples[x*3+2]
			out[x*outChannels+0] = r
			out[x*outChannels+1] = g
			out[x*outChannels+2] = b
			if outChannels == 4 {
				if r == d.trnsRGBRaw[0] && g == d.trnsRGBRaw[1] && b == d.trnsRGBRaw[2] {
					out[x*outChannels+3] = 0
				} else {
					out[x*outChannels+3] = 255
				}
			}
		}
	case 3: // indexed
		for x := 0; x < d.width; x++ {
			idx := samples[x]
			if int(idx) >= len(d.palette) {
				return errs.Malformedf("palette index %d out of range (PLTE has %d entries)", idx, len(d.palette))
			}
			rgb := d.palette[idx]
			out[x*outChannels+0] = rgb[0]
			out[x*outChannels+1] = rgb[1]
			out[x*outChannels+2] = rgb[2]
			if outChannels == 4 {
				a := byte(255)
				if int(idx) < len(d.trnsIdx) {
					a = d.trnsIdx[idx]
				}
				out[x*outChannels+3] = a
			}
		}
	case 4: // gray+alpha
		copy(out, samples[:d.width*2])
	case 6: // truecolor+alpha
		copy(out, samples[:d.width*4])
	}
	return nil
}

// DecodeInfo reads only the IHDR chunk, per spec.md's "info" probe
// contract.
func DecodeInfo(src source.Source) (width, height, channels, bitDepth int, err error) {
	d := &decoder{src: src}
	if err := d.readSignature(); err != nil {
		return 0, 0, 0, 0, err
	}
	ctype, data, _, err := d.readChunk()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if ctype != "IHDR" {
		return 0, 0, 0, 0, errs.Malformedf("PNG does not start with IHDR")
	}
	if err := d.processIHDR(data); err != nil {
		return 0, 0, 0, 0, err
	}
	return d.width, d.height, channelsForColorType(d.colorType), d.bitDepth, nil
}
