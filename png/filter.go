package png

import "github.com/go-raster/raster/errs"

// paeth is the PNG Paeth predictor (spec.md GLOSSARY "Filter (PNG)"):
// pick whichever of the left, above, and upper-left neighbors is
// closest to a simple linear gradient of the other two.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// unfilterAll reverses the per-scanline filter byte prefixed to every
// row of the inflated IDAT stream, producing height*stride bytes of
// raw (still possibly sub-byte-packed) sample data.
func unfilterAll(raw []byte, height, stride, bpp int) ([]byte, error) {
	out := make([]byte, height*stride)
	prev := make([]byte, stride)
	off := 0
	for y := 0; y < height; y++ {
		if off >= len(raw) {
			return nil, errs.ErrUnexpectedEnd
		}
		ftype := raw[off]
		off++
		if off+stride > len(raw) {
			return nil, errs.ErrUnexpectedEnd
		}
		row := raw[off : off+stride]
		off += stride
		cur := out[y*stride : y*stride+stride]

		switch ftype {
		case 0: // None
			copy(cur, row)
		case 1: // Sub
			for i := 0; i < stride; i++ {
				var a byte
				if i >= bpp {
					a = cur[i-bpp]
				}
				cur[i] = row[i] + a
			}
		case 2: // Up
			for i := 0; i < stride; i++ {
				cur[i] = row[i] + prev[i]
			}
		case 3: // Average
			for i := 0; i < stride; i++ {
				var a int
				if i >= bpp {
					a = int(cur[i-bpp])
				}
				cur[i] = row[i] + byte((a+int(prev[i]))/2)
			}
		case 4: // Paeth
			for i := 0; i < stride; i++ {
				var a, c byte
				if i >= bpp {
					a = cur[i-bpp]
					c = prev[i-bpp]
				}
				cur[i] = row[i] + paeth(a, prev[i], c)
			}
		default:
			return nil, errs.Malformedf("bad PNG filter type %d", ftype)
		}
		copy(prev, cur)
	}
	return out, nil
}

// expandSamples unpacks one already-unfiltered scanline into one byte
// per sample: a straight copy at 8 bits, the high byte only at 16
// bits (spec.md's 8-bit output contract), or bit-unpacked at 1/2/4
// bits (grayscale or palette indices only).
func expandSamples(row []byte, width, channels, bitDepth int) []byte {
	switch bitDepth {
	case 8:
		return row[:width*channels]
	case 16:
		out := make([]byte, width*channels)
		for i := range out {
			out[i] = row[i*2]
		}
		return out
	default:
		out := make([]byte, width)
		mask := byte(1<<uint(bitDepth) - 1)
		perByte := 8 / bitDepth
		for x := 0; x < width; x++ {
			byteIdx := x / perByte
			shift := uint(8 - bitDepth*((x%perByte)+1))
			out[x] = (row[byteIdx] >> shift) & mask
		}
		return out
	}
}

// scaleSample stretches a sub-8-bit grayscale sample to the full
// 0-255 range; palette indices are looked up directly and never
// passed through this.
func scaleSample(v byte, bitDepth int) byte {
	switch bitDepth {
	case 1:
		if v != 0 {
			return 255
		}
		return 0
	case 2:
		return v * 85
	case 4:
		return v * 17
	default:
		return v
	}
}
