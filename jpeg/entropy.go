package jpeg

import "github.com/go-raster/raster/errs"

// decodeBlockBaseline decodes one 8x8 block's DC and AC coefficients
// for a baseline scan (spec.md §4.4), dequantizing as it goes so the
// IDCT can run directly on the result.
func (d *Decoder) decodeBlockBaseline(c *component, data *[64]int16, hdc, hac *huffTable, fac *[1 << fastBits]fastACEntry, dequant *[64]uint16) error {
	for i := range data {
		data[i] = 0
	}

	t, err := d.br.huffDecode(hdc)
	if err != nil {
		return err
	}
	if t > 15 {
		return errs.Malformedf("bad huffman code")
	}
	diff := 0
	if t != 0 {
		diff = d.br.receiveExtend(t)
	}
	dc := c.dcPred + int32(diff)
	c.dcPred = dc
	data[0] = int16(dc) * int16(dequant[0])

	k := 1
	for k < 64 {
		if d.br.bits < 16 {
			d.br.fill()
		}
		window := int(d.br.buffer>>(32-fastBits)) & ((1 << fastBits) - 1)
		r := fac[window]
		if r != 0 {
			k += (int(r) >> 4) & 15
			s := int(r) & 15
			d.br.buffer <<= uint(s)
			d.br.bits -= s
			if k >= 64 {
				return errs.Malformedf("AC coefficient index out of range")
			}
			zig := int(zigzag[k])
			k++
			data[zig] = int16((int(r) >> 8) * int(dequant[zig]))
			continue
		}
		rs, err := d.br.huffDecode(hac)
		if err != nil {
			return err
		}
		s := rs & 15
		run := rs >> 4
		if s == 0 {
			if rs != 0xF0 {
				break
			}
			k += 16
			continue
		}
		k += run
		if k >= 64 {
			return errs.Malformedf("AC coefficient index out of range")
		}
		zig := int(zigzag[k])
		k++
		data[zig] = int16(d.br.receiveExtend(s)) * int16(dequant[zig])
	}
	return nil
}

// decodeBlockProgDC handles one block within a progressive DC scan,
// either the first pass (Ah==0) or a refinement pass.
func (d *Decoder) decodeBlockProgDC(c *component, data *[64]int16, hdc *huffTable) error {
	if d.al > 13 {
		return errs.Malformedf("bad successive approximation")
	}
	if d.ah == 0 {
		for i := range data {
			data[i] = 0
		}
		t, err := d.br.huffDecode(hdc)
		if err != nil {
			return err
		}
		if t > 15 {
			return errs.Malformedf("bad huffman code")
		}
		diff := 0
		if t != 0 {
			diff = d.br.receiveExtend(t)
		}
		dc := c.dcPred + int32(diff)
		c.dcPred = dc
		data[0] = int16(dc << uint(d.al))
	} else {
		if d.br.getBit() != 0 {
			data[0] += int16(1 << uint(d.al))
		}
	}
	return nil
}

// decodeBlockProgACFirst handles the first (Ah==0) pass of a
// progressive AC scan, including end-of-band run accounting.
func (d *Decoder) decodeBlockProgACFirst(data *[64]int16, hac *huffTable, fac *[1 << fastBits]fastACEntry) error {
	shift := uint(d.al)
	if d.eobRun > 0 {
		d.eobRun--
		return nil
	}
	k := d.ss
	for k <= d.se {
		if d.br.bits < 16 {
			d.br.fill()
		}
		window := int(d.br.buffer>>(32-fastBits)) & ((1 << fastBits) - 1)
		r := fac[window]
		if r != 0 {
			k += (int(r) >> 4) & 15
			s := int(r) & 15
			d.br.buffer <<= uint(s)
			d.br.bits -= s
			if k >= 64 {
				return errs.Malformedf("AC coefficient index out of range")
			}
			zig := int(zigzag[k])
			k++
			data[zig] = int16((int(r) >> 8) << shift)
			continue
		}
		rs, err := d.br.huffDecode(hac)
		if err != nil {
			return err
		}
		s := rs & 15
		run := rs >> 4
		if s == 0 {
			if run < 15 {
				d.eobRun = 1 << uint(run)
				if run != 0 {
					d.eobRun += d.br.getBits(run)
				}
				d.eobRun--
				break
			}
			k += 16
			continue
		}
		k += run
		if k >= 64 {
			return errs.Malformedf("AC coefficient index out of range")
		}
		zig := int(zigzag[k])
		k++
		data[zig] = int16(d.br.receiveExtend(s) << shift)
	}
	return nil
}

// decodeBlockProgACRefine handles a refinement (Ah!=0) pass of a
// progressive AC scan, the most delicate part of spec.md §4.4: every
// already-nonzero coefficient in range gets one correction bit, and
// new coefficients are placed only at the run-counted zero slots.
func (d *Decoder) decodeBlockProgACRefine(data *[64]int16, hac *huffTable) error {
	bit := int16(1 << uint(d.al))

	if d.eobRun > 0 {
		d.eobRun--
		for k := d.ss; k <= d.se; k++ {
			p := &data[zigzag[k]]
			if *p != 0 {
				if d.br.getBit() != 0 {
					if *p&bit == 0 {
						if *p > 0 {
							*p += bit
						} else {
							*p -= bit
						}
					}
				}
			}
		}
		return nil
	}

	k := d.ss
	for k <= d.se {
		rs, err := d.br.huffDecode(hac)
		if err != nil {
			return err
		}
		s := rs & 15
		r := rs >> 4
		var newVal int16
		if s == 0 {
			if r < 15 {
				d.eobRun = (1 << uint(r)) - 1
				if r != 0 {
					d.eobRun += d.br.getBits(r)
				}
				r = 64 // force end of block
			}
			// r == 15: a run of 15 zeros with no new coefficient
		} else {
			if s != 1 {
				return errs.Malformedf("bad huffman code")
			}
			if d.br.getBit() != 0 {
				newVal = bit
			} else {
				newVal = -bit
			}
		}

		for k <= d.se {
			p := &data[zigzag[k]]
			k++
			if *p != 0 {
				if d.br.getBit() != 0 {
					if *p&bit == 0 {
						if *p > 0 {
							*p += bit
						} else {
							*p -= bit
						}
					}
				}
			} else {
				if r == 0 {
					*p = newVal
					break
				}
				r--
			}
		}
	}
	return nil
}
