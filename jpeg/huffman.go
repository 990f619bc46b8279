package jpeg

import "github.com/go-raster/raster/errs"

// fastBits is the width of the JPEG Huffman fast-path window (§4.2):
// codes no longer than this decode from the top fastBits bits of the
// bit buffer in one step.
const fastBits = 9

// huffTable is a JPEG-form Huffman decode table built from DHT length
// counts and symbol values (spec.md §4.2): canonical codes, a
// preshifted maxcode/delta fallback, and a 9-bit fast lookup.
type huffTable struct {
	fast    [1 << fastBits]byte // index of symbol in code/size/values, or 255
	code    [256]uint16
	values  [256]byte
	size    [257]byte
	maxcode [18]uint32
	delta   [17]int32
}

// buildHuffman constructs a decode table from 16 per-length counts and
// the concatenated symbol list, per spec.md §4.2 (JPEG Annex C
// canonical code assignment). Fails Malformed if a length's code
// space overflows.
func buildHuffman(counts [16]int, symbols []byte) (*huffTable, error) {
	h := &huffTable{}
	k := 0
	for i := 0; i < 16; i++ {
		for j := 0; j < counts[i]; j++ {
			h.size[k] = byte(i + 1)
			k++
			if k >= len(h.size) {
				return nil, errs.Malformedf("bad size list")
			}
		}
	}
	h.size[k] = 0
	total := k

	var code uint32
	k = 0
	var j int
	for j = 1; j <= 16; j++ {
		h.delta[j] = int32(k) - int32(code)
		if int(h.size[k]) == j {
			for int(h.size[k]) == j {
				h.code[k] = uint16(code)
				code++
				k++
			}
			if code-1 >= (1 << uint(j)) {
				return nil, errs.Malformedf("bad code lengths")
			}
		}
		h.maxcode[j] = code << (16 - uint(j))
		code <<= 1
	}
	h.maxcode[j] = 0xFFFFFFFF

	for i := range h.fast {
		h.fast[i] = 255
	}
	for i := 0; i < total; i++ {
		s := h.size[i]
		if s <= fastBits {
			c := int(h.code[i]) << (fastBits - int(s))
			m := 1 << (fastBits - int(s))
			for jj := 0; jj < m; jj++ {
				h.fast[c+jj] = byte(i)
			}
		}
	}
	copy(h.values[:total], symbols[:total])
	return h, nil
}

// fastACEntry packs a decoded (run, value, totalBits) triple for an AC
// symbol fully resolvable from the 9-bit fast window, per spec.md §3's
// "fast AC accelerator". A zero entry means no fast-path hit.
type fastACEntry = int16

// buildFastAC builds the per-AC-table accelerator: for each 9-bit
// window, a packed record combining the Huffman symbol's (run, size)
// with the receive_extend magnitude, when both fit within fastBits.
func buildFastAC(h *huffTable) [1 << fastBits]fastACEntry {
	var fac [1 << fastBits]fastACEntry
	for i := range fac {
		fast := h.fast[i]
		if fast == 255 {
			continue
		}
		rs := h.values[fast]
		run := int(rs>>4) & 15
		magbits := int(rs & 15)
		length := int(h.size[fast])
		if magbits == 0 || length+magbits > fastBits {
			continue
		}
		k := ((i << uint(length)) & ((1 << fastBits) - 1)) >> uint(fastBits-magbits)
		m := 1 << uint(magbits-1)
		if k < m {
			k += (-1 << uint(magbits)) + 1
		}
		if k >= -128 && k <= 127 {
			fac[i] = int16((k * 256) + (run * 16) + (length + magbits))
		}
	}
	return fac
}
