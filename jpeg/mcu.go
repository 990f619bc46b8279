package jpeg

import "github.com/go-raster/raster/errs"

// resetForScan clears the entropy-coder state at the start of every
// scan (spec.md §4.6): bit buffer, all DC predictors, and the
// progressive end-of-band run counter.
func (d *Decoder) resetForScan() {
	d.br.reset()
	for i := range d.comps[:d.numComp] {
		d.comps[i].dcPred = 0
	}
	d.eobRun = 0
}

// handleRestart re-synchronizes decoder state at a restart marker
// (spec.md §4.6). The marker byte itself was already consumed from
// the source by the bit reader's fill, the same way any other marker
// ends a scan (see Decoder.nextMarker); process_restart just needs to
// observe it and reset the entropy-coder state.
func (d *Decoder) handleRestart() error {
	if d.br.bits < 24 && !d.br.noMore {
		d.br.fill()
	}
	if !isRestartMarker(d.br.marker) {
		return errs.Malformedf("expected restart marker, got 0x%02X", d.br.marker)
	}
	d.br.buffer = 0
	d.br.bits = 0
	d.br.marker = markerNone
	d.br.noMore = false
	for i := range d.comps[:d.numComp] {
		d.comps[i].dcPred = 0
	}
	d.eobRun = 0
	return nil
}

// decodeScan runs the entropy-coded segment of the current scan,
// dispatching to the interleaved (multi-component, MCU-addressed) or
// non-interleaved (single-component, block-addressed) walk per
// spec.md §4.6.
func (d *Decoder) decodeScan() error {
	d.resetForScan()
	if d.scanN > 1 {
		return d.decodeScanInterleaved()
	}
	return d.decodeScanNonInterleaved()
}

func (d *Decoder) decodeScanInterleaved() error {
	mcusLeft := d.restartInterval
	for my := 0; my < d.mcuY; my++ {
		for mx := 0; mx < d.mcuX; mx++ {
			for i := 0; i < d.scanN; i++ {
				ci := d.order[i]
				c := &d.comps[ci]
				for by := 0; by < int(c.v); by++ {
					for bx := 0; bx < int(c.h); bx++ {
						blockX := mx*int(c.h) + bx
						blockY := my*int(c.v) + by
						if err := d.decodeOneBlock(c, i, blockX, blockY); err != nil {
							return err
						}
					}
				}
			}
			if d.restartInterval != 0 {
				mcusLeft--
				if mcusLeft == 0 {
					if err := d.handleRestart(); err != nil {
						return err
					}
					mcusLeft = d.restartInterval
				}
			}
		}
	}
	return nil
}

func (d *Decoder) decodeScanNonInterleaved() error {
	ci := d.order[0]
	c := &d.comps[ci]
	w := ceilDiv(c.x, 8)
	h := ceilDiv(c.y, 8)
	mcusLeft := d.restartInterval
	for by := 0; by < h; by++ {
		for bx := 0; bx < w; bx++ {
			if err := d.decodeOneBlock(c, 0, bx, by); err != nil {
				return err
			}
			if d.restartInterval != 0 {
				mcusLeft--
				if mcusLeft == 0 {
					if err := d.handleRestart(); err != nil {
						return err
					}
					mcusLeft = d.restartInterval
				}
			}
		}
	}
	return nil
}

// decodeOneBlock decodes a single 8x8 block at (bx,by) within
// component c, which participates in the current scan at position
// scanIdx (indexing scanDC/scanAC/huffDC/huffAC/fastAC). Baseline
// blocks are IDCT'd immediately into c.samples; progressive blocks
// accumulate raw coefficients in c.coeffs for the finalize pass.
func (d *Decoder) decodeOneBlock(c *component, scanIdx, bx, by int) error {
	if d.progressive {
		data := (*[64]int16)(c.block(bx, by))
		if d.ss == 0 {
			return d.decodeBlockProgDC(c, data, d.huffDC[d.scanDC[scanIdx]])
		}
		if d.ah == 0 {
			return d.decodeBlockProgACFirst(data, d.huffAC[d.scanAC[scanIdx]], &d.fastAC[d.scanAC[scanIdx]])
		}
		return d.decodeBlockProgACRefine(data, d.huffAC[d.scanAC[scanIdx]])
	}

	var data [64]int16
	hdc := d.huffDC[d.scanDC[scanIdx]]
	hac := d.huffAC[d.scanAC[scanIdx]]
	fac := &d.fastAC[d.scanAC[scanIdx]]
	dequant := &d.quant[c.tq]
	if err := d.decodeBlockBaseline(c, &data, hdc, hac, fac, dequant); err != nil {
		return err
	}
	outOff := by*8*c.w2 + bx*8
	idctBlock(c.samples, outOff, c.w2, &data)
	return nil
}

// finalizeProgressive dequantizes and IDCTs every stored coefficient
// block, once all progressive scans have been consumed (spec.md §4.4:
// "a progressive image only becomes real pixels after its last scan").
func (d *Decoder) finalizeProgressive() {
	for ci := 0; ci < d.numComp; ci++ {
		c := &d.comps[ci]
		dequant := &d.quant[c.tq]
		var block [64]int16
		for by := 0; by < c.blocksHigh; by++ {
			for bx := 0; bx < c.blocksWide; bx++ {
				coeffs := c.block(bx, by)
				for i := 0; i < 64; i++ {
					block[i] = coeffs[i] * int16(dequant[i])
				}
				outOff := by*8*c.w2 + bx*8
				idctBlock(c.samples, outOff, c.w2, &block)
			}
		}
	}
}
