package deflate

import "github.com/go-raster/raster/errs"

// fastBits is the width of the fast lookup window (§4.8): codes of
// length <= fastBits decode in one step from the next fastBits bits of
// the (already bit-reversed, LSB-first) stream.
const fastBits = 9
const fastMask = (1 << fastBits) - 1

// huffTable is a DEFLATE-form Huffman decode table: a fast window for
// short codes, and firstcode/firstsymbol/maxcode arrays (preshifted
// for a big-endian-style comparison against a bit-reversed window) for
// the fallback path.
type huffTable struct {
	fast       [1 << fastBits]uint16 // (size<<9)|symbol, or 0 if no code that short
	firstcode  [16]uint16
	firstsym   [16]uint16
	maxcode    [17]int
	size       [288]byte
	value      [288]uint16
}

func bitReverse16(n int) int {
	n = (n&0xAAAA)>>1 | (n&0x5555)<<1
	n = (n&0xCCCC)>>2 | (n&0x3333)<<2
	n = (n&0xF0F0)>>4 | (n&0x0F0F)<<4
	n = (n&0xFF00)>>8 | (n&0x00FF)<<8
	return n
}

func bitReverse(v, bits int) int {
	return bitReverse16(v) >> (16 - bits)
}

// buildHuffman constructs a decode table from a DEFLATE code-length
// sequence, per spec.md §4.8: assign codes by length (DEFLATE §3.2.2),
// bit-reverse each to the stream's order, and populate the fast window
// plus the fallback arrays. Fails with errs.Malformed if any length
// overfills its code space.
func buildHuffman(sizes []byte) (*huffTable, error) {
	var counts [17]int
	for _, s := range sizes {
		counts[s]++
	}
	counts[0] = 0
	for i := 1; i < 16; i++ {
		if counts[i] > (1 << uint(i)) {
			return nil, errs.Malformedf("bad sizes")
		}
	}

	h := &huffTable{}
	var nextCode [16]int
	code := 0
	k := 0
	for i := 1; i < 16; i++ {
		nextCode[i] = code
		h.firstcode[i] = uint16(code)
		h.firstsym[i] = uint16(k)
		code += counts[i]
		if counts[i] != 0 && code-1 >= (1<<uint(i)) {
			return nil, errs.Malformedf("bad code lengths")
		}
		h.maxcode[i] = code << (16 - i)
		code <<= 1
		k += counts[i]
	}
	h.maxcode[16] = 0x10000

	for i, s := range sizes {
		if s == 0 {
			continue
		}
		c := nextCode[s] - int(h.firstcode[s]) + int(h.firstsym[s])
		h.size[c] = s
		h.value[c] = uint16(i)
		if s <= fastBits {
			fastv := uint16(int(s)<<9 | i)
			j := bitReverse(nextCode[s], int(s))
			for j < (1 << fastBits) {
				h.fast[j] = fastv
				j += 1 << s
			}
		}
		nextCode[s]++
	}
	return h, nil
}
