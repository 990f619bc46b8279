package jpeg

import "github.com/go-raster/raster/errs"

const maxDimension = 1 << 24 // spec.md invariant: W,H <= implementation cap (>= 2^24 supported)

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// processFrameHeader parses SOF0/SOF1/SOF2, validates the invariants
// of spec.md §3, and lazily allocates per-component planes (spec.md §5
// "acquires memory lazily at SOF time").
func (d *Decoder) processFrameHeader() error {
	lf, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	prec, err := d.src.ReadByte()
	if err != nil {
		return err
	}
	if prec != 8 {
		return errs.Unsupportedf("sample precision %d", prec)
	}
	h16, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	w16, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	nf, err := d.src.ReadByte()
	if err != nil {
		return err
	}
	if nf < 1 || nf > 4 {
		return errs.Malformedf("bad component count %d", nf)
	}
	wantLen := 8 + 3*int(nf)
	if int(lf) != wantLen {
		return errs.Malformedf("bad SOF length")
	}

	d.W, d.H = int(w16), int(h16)
	if d.W <= 0 || d.H <= 0 {
		return errs.Malformedf("zero image dimension")
	}
	if d.W > maxDimension || d.H > maxDimension {
		return errs.Resourcef("image dimensions too large")
	}
	d.numComp = int(nf)

	// Per-component id 'R','G','B' in order, matching original_source's
	// rgb[3]={'R','G','B'} counter: only ever relevant for a 3-component
	// frame, since that's the only case color.go's RGB/YCbCr dispatch
	// consults it for.
	var rgbID = [3]byte{'R', 'G', 'B'}

	hMax, vMax := 0, 0
	for i := 0; i < d.numComp; i++ {
		id, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		hv, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		tq, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		h, v := hv>>4, hv&0x0F
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return errs.Malformedf("bad sampling factors")
		}
		if tq > 3 {
			return errs.Malformedf("bad quant table selector")
		}
		d.comps[i] = component{id: id, h: h, v: v, tq: tq}
		if d.numComp == 3 && i < 3 && id == rgbID[i] {
			d.rgbCount++
		}
		if int(h) > hMax {
			hMax = int(h)
		}
		if int(v) > vMax {
			vMax = int(v)
		}
	}
	d.hMax, d.vMax = hMax, vMax
	d.mcuX = ceilDiv(d.W, 8*hMax)
	d.mcuY = ceilDiv(d.H, 8*vMax)

	for i := 0; i < d.numComp; i++ {
		c := &d.comps[i]
		c.x = ceilDiv(d.W*int(c.h), hMax)
		c.y = ceilDiv(d.H*int(c.v), vMax)
		c.w2 = d.mcuX * int(c.h) * 8
		c.h2 = d.mcuY * int(c.v) * 8
		c.samples = make([]byte, c.w2*c.h2)
		c.lineBuf = make([]byte, d.W+3)
		c.blocksWide = c.w2 / 8
		c.blocksHigh = c.h2 / 8
		if d.progressive {
			c.coeffs = make([]int16, c.blocksWide*c.blocksHigh*64)
		}
	}
	return nil
}

func (d *Decoder) processDQT() error {
	lq, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	remaining := int(lq) - 2
	for remaining > 0 {
		pqtq, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		pq, tq := pqtq>>4, pqtq&0x0F
		if pq > 1 || tq > 3 {
			return errs.Malformedf("bad DQT precision/selector")
		}
		remaining--
		var vals [64]uint16
		for i := 0; i < 64; i++ {
			if pq == 0 {
				b, err := d.src.ReadByte()
				if err != nil {
					return err
				}
				vals[i] = uint16(b)
				remaining--
			} else {
				v, err := d.src.ReadU16BE()
				if err != nil {
					return err
				}
				vals[i] = v
				remaining -= 2
			}
		}
		for i := 0; i < 64; i++ {
			d.quant[tq][zigzag[i]] = vals[i]
		}
		d.quantSeen[tq] = true
	}
	if remaining != 0 {
		return errs.Malformedf("bad DQT length")
	}
	return nil
}

func (d *Decoder) processDHT() error {
	lh, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	remaining := int(lh) - 2
	for remaining > 0 {
		tcth, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		tc, th := tcth>>4, tcth&0x0F
		if tc > 1 || th > 3 {
			return errs.Malformedf("bad DHT class/selector")
		}
		remaining--
		var counts [16]int
		total := 0
		for i := 0; i < 16; i++ {
			b, err := d.src.ReadByte()
			if err != nil {
				return err
			}
			counts[i] = int(b)
			total += int(b)
			remaining--
		}
		symbols := make([]byte, total)
		if err := d.src.ReadFull(symbols); err != nil {
			return err
		}
		remaining -= total
		table, err := buildHuffman(counts, symbols)
		if err != nil {
			return err
		}
		if tc == 0 {
			d.huffDC[th] = table
		} else {
			d.huffAC[th] = table
			d.fastAC[th] = buildFastAC(table)
		}
	}
	if remaining != 0 {
		return errs.Malformedf("bad DHT length")
	}
	return nil
}

func (d *Decoder) processDRI() error {
	lr, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	if lr != 4 {
		return errs.Malformedf("bad DRI length")
	}
	ri, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	d.restartInterval = int(ri)
	return nil
}

func (d *Decoder) processAPP0() error {
	l, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	remaining := int(l) - 2
	if remaining < 5 {
		return d.src.Skip(remaining)
	}
	var id [5]byte
	if err := d.src.ReadFull(id[:]); err != nil {
		return err
	}
	remaining -= 5
	if string(id[:]) == "JFIF\x00" {
		d.jfif = true
	}
	return d.src.Skip(remaining)
}

func (d *Decoder) processAPP14() error {
	l, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	remaining := int(l) - 2
	if remaining < 12 {
		return d.src.Skip(remaining)
	}
	var id [5]byte
	if err := d.src.ReadFull(id[:]); err != nil {
		return err
	}
	remaining -= 5
	if string(id[:]) != "Adobe" {
		return d.src.Skip(remaining)
	}
	var rest [7]byte // version(2) flags0(2) flags1(2) transform(1)
	if err := d.src.ReadFull(rest[:]); err != nil {
		return err
	}
	remaining -= 7
	d.app14 = int(rest[6])
	return d.src.Skip(remaining)
}

func (d *Decoder) processDNL() error {
	l, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	if l != 4 {
		return errs.Malformedf("bad DNL length")
	}
	nl, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	if int(nl) != d.H {
		return errs.Malformedf("bad DNL height")
	}
	return nil
}

// processScanHeader parses SOS, per spec.md §3's scan-descriptor
// invariants: scan_n <= N, every referenced table present, and
// Ss=0,Se=63,Ah=Al=0 for baseline scans.
func (d *Decoder) processScanHeader() error {
	ls, err := d.src.ReadU16BE()
	if err != nil {
		return err
	}
	ns, err := d.src.ReadByte()
	if err != nil {
		return err
	}
	if ns < 1 || ns > 4 || int(ns) > d.numComp {
		return errs.Malformedf("bad scan component count")
	}
	wantLen := 6 + 2*int(ns)
	if int(ls) != wantLen {
		return errs.Malformedf("bad SOS length")
	}
	d.scanN = int(ns)
	for i := 0; i < d.scanN; i++ {
		cs, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		tdta, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		idx := -1
		for j := 0; j < d.numComp; j++ {
			if d.comps[j].id == cs {
				idx = j
				break
			}
		}
		if idx < 0 {
			return errs.Malformedf("unknown scan component id %d", cs)
		}
		d.order[i] = idx
		d.scanDC[i] = tdta >> 4
		d.scanAC[i] = tdta & 0x0F
		if d.scanDC[i] > 3 || d.scanAC[i] > 3 {
			return errs.Malformedf("bad huffman table selector")
		}
	}
	ss, err := d.src.ReadByte()
	if err != nil {
		return err
	}
	se, err := d.src.ReadByte()
	if err != nil {
		return err
	}
	ahal, err := d.src.ReadByte()
	if err != nil {
		return err
	}
	d.ss, d.se = int(ss), int(se)
	d.ah, d.al = int(ahal>>4), int(ahal&0x0F)
	if d.ss > d.se || d.se > 63 {
		return errs.Malformedf("bad spectral selection")
	}
	// The reference tolerates Ah,Al up to 13 though the JPEG spec caps
	// them lower; real-world encoders emit values in that range.
	if d.ah > 13 || d.al > 13 {
		return errs.Malformedf("bad successive approximation")
	}
	if !d.progressive {
		if d.ss != 0 || d.se != 63 || d.ah != 0 || d.al != 0 {
			return errs.Malformedf("non-baseline scan in baseline frame")
		}
	}
	for i := 0; i < d.scanN; i++ {
		if d.ss == 0 && d.huffDC[d.scanDC[i]] == nil {
			return errs.Malformedf("missing DC Huffman table %d", d.scanDC[i])
		}
		if d.se > 0 && d.huffAC[d.scanAC[i]] == nil {
			return errs.Malformedf("missing AC Huffman table %d", d.scanAC[i])
		}
		ci := d.order[i]
		if !d.quantSeen[d.comps[ci].tq] {
			return errs.Malformedf("missing quant table %d", d.comps[ci].tq)
		}
	}
	return nil
}
