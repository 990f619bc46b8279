package jpeg

// div4 rounds x (already biased by the caller) down to a byte by
// dropping its low two bits, the shared primitive of every two-tap
// triangle filter below.
func div4(x int) byte {
	if x < 0 {
		x = 0
	}
	return byte(x >> 2)
}

// upsample expands component c's decoded samples from its own
// subsampled grid to full image resolution (spec.md §4.7), picking
// among the identity, two-tap "fancy" filters and the nearest-neighbor
// fallback according to how c's sampling factors relate to the
// frame's maximum.
func (d *Decoder) upsample(c *component) []byte {
	ow, oh := d.W, d.H
	if int(c.h) == d.hMax && int(c.v) == d.vMax {
		return d.upsampleIdentity(c, ow, oh)
	}
	if d.hMax == 2*int(c.h) && d.vMax == int(c.v) {
		return d.upsampleH2(c, ow, oh)
	}
	if d.hMax == int(c.h) && d.vMax == 2*int(c.v) {
		return d.upsampleV2(c, ow, oh)
	}
	if d.hMax == 2*int(c.h) && d.vMax == 2*int(c.v) {
		return d.upsampleHV2(c, ow, oh)
	}
	return d.upsampleGeneric(c, ow, oh)
}

func (d *Decoder) upsampleIdentity(c *component, ow, oh int) []byte {
	out := make([]byte, ow*oh)
	for y := 0; y < oh; y++ {
		copy(out[y*ow:y*ow+ow], c.samples[y*c.w2:y*c.w2+ow])
	}
	return out
}

// resampleRowH2 doubles a row of w samples horizontally with a 3:1
// triangle filter, matching stb's stbi__resample_row_h_2.
func resampleRowH2(out, in []byte, w int) {
	if w == 1 {
		out[0] = in[0]
		out[1] = in[0]
		return
	}
	out[0] = in[0]
	out[1] = div4(int(in[0])*3 + int(in[1]) + 2)
	i := 1
	for ; i < w-1; i++ {
		n := 3*int(in[i]) + 2
		out[i*2+0] = div4(n + int(in[i-1]))
		out[i*2+1] = div4(n + int(in[i+1]))
	}
	out[i*2+0] = div4(int(in[w-2])*3 + int(in[w-1]) + 2)
	out[i*2+1] = in[w-1]
}

func (d *Decoder) upsampleH2(c *component, ow, oh int) []byte {
	out := make([]byte, ow*oh)
	w := c.x
	row := make([]byte, 2*w)
	for y := 0; y < oh; y++ {
		in := c.samples[y*c.w2 : y*c.w2+w]
		resampleRowH2(row, in, w)
		n := ow
		if n > len(row) {
			n = len(row)
		}
		copy(out[y*ow:y*ow+n], row[:n])
	}
	return out
}

// blend3to1 implements the vertical half of the two-tap filter:
// (3*near + far + 2) / 4.
func blend3to1(near, far byte) byte {
	return div4(3*int(near) + int(far) + 2)
}

// upsampleV2 doubles a component vertically. Both output sub-rows of
// low-res row t use row t as "near" (weighted 3x); the upper sub-row
// blends it with row t-1 and the lower with row t+1, clamped at the
// first and last rows so the edge output rows replicate. This matches
// stb's stbi__resample_row_v_2 and its ystep/y_bot row-selection
// convention.
func (d *Decoder) upsampleV2(c *component, ow, oh int) []byte {
	out := make([]byte, ow*oh)
	rows := c.y
	for t := 0; t < rows; t++ {
		nearOff := t * c.w2
		nextT := t + 1
		if nextT >= rows {
			nextT = rows - 1
		}
		farOff := nextT * c.w2
		prevT := t - 1
		if prevT < 0 {
			prevT = 0
		}
		prevOff := prevT * c.w2

		if y0 := 2 * t; y0 < oh {
			for x := 0; x < ow; x++ {
				out[y0*ow+x] = blend3to1(c.samples[nearOff+x], c.samples[prevOff+x])
			}
		}
		if y1 := 2*t + 1; y1 < oh {
			for x := 0; x < ow; x++ {
				out[y1*ow+x] = blend3to1(c.samples[nearOff+x], c.samples[farOff+x])
			}
		}
	}
	return out
}

// div16 drops the low four bits of an already-biased running sum,
// the final rounding step of the joint two-axis filter below.
func div16(x int) byte {
	return byte(x >> 4)
}

// resampleRowHV2 fills a row of 2*w output samples by jointly
// resampling both axes at once from two adjacent low-res rows (near
// weighted 3:1 against far), matching stb's stbi__resample_row_hv_2
// exactly: the vertical 3:1 blend is folded into the same running sum
// as the horizontal 3:1 blend, and the whole thing is rounded to a
// byte only once, not once per axis.
func resampleRowHV2(out, near, far []byte, w int) {
	if w == 1 {
		v := div4(3*int(near[0]) + int(far[0]) + 2)
		out[0] = v
		out[1] = v
		return
	}
	t1 := 3*int(near[0]) + int(far[0])
	out[0] = div4(t1 + 2)
	for i := 1; i < w; i++ {
		t0 := t1
		t1 = 3*int(near[i]) + int(far[i])
		out[i*2-1] = div16(3*t0 + t1 + 8)
		out[i*2] = div16(3*t1 + t0 + 8)
	}
	out[w*2-1] = div4(t1 + 2)
}

func (d *Decoder) upsampleHV2(c *component, ow, oh int) []byte {
	out := make([]byte, ow*oh)
	w := c.x
	rows := c.y
	rowBuf := make([]byte, 2*w)
	for t := 0; t < rows; t++ {
		nearOff := t * c.w2
		nextT := t + 1
		if nextT >= rows {
			nextT = rows - 1
		}
		farOff := nextT * c.w2
		prevT := t - 1
		if prevT < 0 {
			prevT = 0
		}
		prevOff := prevT * c.w2

		if y0 := 2 * t; y0 < oh {
			resampleRowHV2(rowBuf, c.samples[nearOff:nearOff+w], c.samples[prevOff:prevOff+w], w)
			n := ow
			if n > len(rowBuf) {
				n = len(rowBuf)
			}
			copy(out[y0*ow:y0*ow+n], rowBuf[:n])
		}
		if y1 := 2*t + 1; y1 < oh {
			resampleRowHV2(rowBuf, c.samples[nearOff:nearOff+w], c.samples[farOff:farOff+w], w)
			n := ow
			if n > len(rowBuf) {
				n = len(rowBuf)
			}
			copy(out[y1*ow:y1*ow+n], rowBuf[:n])
		}
	}
	return out
}

// upsampleGeneric handles every sampling-factor combination the cases
// above do not (e.g. 3:1, 4:1, or 4:3) by nearest-neighbor replication, matching stb's
// stbi__resample_row_generic fallback.
func (d *Decoder) upsampleGeneric(c *component, ow, oh int) []byte {
	out := make([]byte, ow*oh)
	for y := 0; y < oh; y++ {
		sy := y * int(c.v) / d.vMax
		if sy >= c.y {
			sy = c.y - 1
		}
		rowOff := sy * c.w2
		for x := 0; x < ow; x++ {
			sx := x * int(c.h) / d.hMax
			if sx >= c.x {
				sx = c.x - 1
			}
			out[y*ow+x] = c.samples[rowOff+sx]
		}
	}
	return out
}
