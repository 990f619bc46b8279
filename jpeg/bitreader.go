package jpeg

import "github.com/go-raster/raster/errs"

// bmask[n] = (1<<n) - 1, used throughout bit extraction.
var bmask = [17]uint32{0, 1, 3, 7, 15, 31, 63, 127, 255, 511, 1023, 2047, 4095, 8191, 16383, 32767, 65535}

// jbias[n] = (-1<<n) + 1, the sign-extension bias for receiveExtend.
var jbias = [16]int32{0, -1, -3, -7, -15, -31, -63, -127, -255, -511, -1023, -2047, -4095, -8191, -16383, -32767}

const markerNone = 0xFF

// bitReader is the JPEG entropy bit buffer of spec.md §4.3: a 32-bit
// MSB-aligned value, a valid-bit count, a latched marker byte, and a
// "no more data" flag once a real marker has been seen mid-stream.
type bitReader struct {
	d         *Decoder
	buffer    uint32
	bits      int
	marker    byte
	noMore    bool
}

func newBitReader(d *Decoder) *bitReader {
	return &bitReader{d: d, marker: markerNone}
}

// fill refills until more than 24 bits are valid, transparently
// consuming 0xFF 0x00 byte stuffing and latching the first non-stuffed
// marker byte it finds (stopping refill at that point).
func (r *bitReader) fill() {
	for {
		var b byte
		if !r.noMore {
			nb, err := r.d.src.ReadByte()
			if err != nil {
				// treat exhaustion as if a marker had been seen: stop
				// refilling rather than blocking forever.
				r.noMore = true
				b = 0
			} else {
				b = nb
			}
		}
		if b == 0xFF {
			c, err := r.d.src.ReadByte()
			for err == nil && c == 0xFF {
				c, err = r.d.src.ReadByte()
			}
			if err != nil {
				r.marker = markerNone
				r.noMore = true
				return
			}
			if c != 0 {
				r.marker = c
				r.noMore = true
				return
			}
			// else: 0xFF 0x00 is a stuffed data byte 0xFF
		}
		r.buffer |= uint32(b) << uint(24-r.bits)
		r.bits += 8
		if r.bits > 24 {
			return
		}
	}
}

// huffDecode implements the decode primitive of spec.md §4.3: a 9-bit
// fast-path probe, falling back to the maxcode/delta scan.
func (r *bitReader) huffDecode(h *huffTable) (int, error) {
	if r.bits < 16 {
		r.fill()
	}
	c := int(r.buffer>>(32-fastBits)) & ((1 << fastBits) - 1)
	k := h.fast[c]
	if k < 255 {
		s := int(h.size[k])
		if s > r.bits {
			return 0, errs.Malformedf("invalid code")
		}
		r.buffer <<= uint(s)
		r.bits -= s
		return int(h.values[k]), nil
	}

	temp := r.buffer >> 16
	var s int
	for s = fastBits + 1; ; s++ {
		if temp < h.maxcode[s] {
			break
		}
		if s == 17 {
			break
		}
	}
	if s == 17 {
		r.bits -= 16
		return 0, errs.Malformedf("invalid code")
	}
	if s > r.bits {
		return 0, errs.Malformedf("invalid code")
	}
	c = int((r.buffer>>uint(32-s))&bmask[s]) + int(h.delta[s])
	r.bits -= s
	r.buffer <<= uint(s)
	return int(h.values[c]), nil
}

// receiveExtend reads n bits MSB-first and sign-extends per JPEG:
// undefined (and never called) for n==0.
func (r *bitReader) receiveExtend(n int) int {
	if r.bits < n {
		r.fill()
	}
	sign := int32(r.buffer) >> 31
	k := (r.buffer << uint(n)) | (r.buffer >> uint(32-n))
	r.buffer = k &^ bmask[n]
	k &= bmask[n]
	r.bits -= n
	neg := int32(sign)
	return int(k) + int(jbias[n]&^neg)
}

// getBits reads n unsigned bits.
func (r *bitReader) getBits(n int) int {
	if r.bits < n {
		r.fill()
	}
	k := (r.buffer << uint(n)) | (r.buffer >> uint(32-n))
	r.buffer = k &^ bmask[n]
	k &= bmask[n]
	r.bits -= n
	return int(k)
}

// getBit reads a single bit as 0/1.
func (r *bitReader) getBit() int {
	if r.bits < 1 {
		r.fill()
	}
	k := r.buffer
	r.buffer <<= 1
	r.bits--
	if k&0x80000000 != 0 {
		return 1
	}
	return 0
}

// reset clears the buffer after a restart marker: spec.md §4.6.
func (r *bitReader) reset() {
	r.buffer = 0
	r.bits = 0
	r.marker = markerNone
	r.noMore = false
}
