package jpeg

// Integer inverse DCT, derived from IJG's "slow" integer IDCT, per
// spec.md §4.5. Coefficients are 12-bit fixed point (f2f); the column
// pass keeps two extra bits of precision, the row pass rounds and
// range-shifts straight to [0,255].

func f2f(x float64) int32 { return int32(x*4096 + 0.5) }
func fsh(x int32) int32   { return x * 4096 }

var (
	c0541 = f2f(0.5411961)
	cN184 = f2f(-1.847759065)
	c0765 = f2f(0.765366865)
	c1175 = f2f(1.175875602)
	c0298 = f2f(0.298631336)
	c2053 = f2f(2.053119869)
	c3072 = f2f(3.072711026)
	c1501 = f2f(1.501321110)
	cN899 = f2f(-0.899976223)
	cN2562 = f2f(-2.562915447)
	cN1961 = f2f(-1.961570560)
	cN0390 = f2f(-0.390180644)
)

// idct1D is the shared butterfly used for both the column and row
// pass; it returns (t0,t1,t2,t3,x0,x1,x2,x3) exactly as the reference
// macro computes them.
func idct1D(s0, s1, s2, s3, s4, s5, s6, s7 int32) (t0, t1, t2, t3, x0, x1, x2, x3 int32) {
	p2, p3 := s2, s6
	p1 := (p2 + p3) * c0541
	t2 = p1 + p3*cN184
	t3 = p1 + p2*c0765

	p2, p3 = s0, s4
	t0 = fsh(p2 + p3)
	t1 = fsh(p2 - p3)
	x0 = t0 + t3
	x3 = t0 - t3
	x1 = t1 + t2
	x2 = t1 - t2

	t0b, t1b, t2b, t3b := s7, s5, s3, s1
	p3b := t0b + t2b
	p4b := t1b + t3b
	p1b := t0b + t3b
	p2b := t1b + t2b
	p5b := (p3b + p4b) * c1175
	t0b = t0b * c0298
	t1b = t1b * c2053
	t2b = t2b * c3072
	t3b = t3b * c1501
	p1b = p5b + p1b*cN899
	p2b = p5b + p2b*cN2562
	p3b = p3b * cN1961
	p4b = p4b * cN0390
	t3 = t3b + p1b + p4b
	t2 = t2b + p2b + p3b
	t1 = t1b + p2b + p4b
	t0 = t0b + p1b + p3b
	return
}

func clampByte(x int32) byte {
	if uint32(x) > 255 {
		if x < 0 {
			return 0
		}
		return 255
	}
	return byte(x)
}

// idctBlock performs the 2D IDCT on a dequantized 8x8 block of signed
// 16-bit coefficients, writing 8-bit samples into out at out[y*stride+x].
func idctBlock(out []byte, outOff, stride int, data *[64]int16) {
	var val [64]int32
	for i := 0; i < 8; i++ {
		d0 := int32(data[i])
		d1 := int32(data[i+8])
		d2 := int32(data[i+16])
		d3 := int32(data[i+24])
		d4 := int32(data[i+32])
		d5 := int32(data[i+40])
		d6 := int32(data[i+48])
		d7 := int32(data[i+56])
		if d1 == 0 && d2 == 0 && d3 == 0 && d4 == 0 && d5 == 0 && d6 == 0 && d7 == 0 {
			dcterm := d0 * 4
			val[i] = dcterm
			val[i+8] = dcterm
			val[i+16] = dcterm
			val[i+24] = dcterm
			val[i+32] = dcterm
			val[i+40] = dcterm
			val[i+48] = dcterm
			val[i+56] = dcterm
			continue
		}
		t0, t1, t2, t3, x0, x1, x2, x3 := idct1D(d0, d1, d2, d3, d4, d5, d6, d7)
		x0 += 512
		x1 += 512
		x2 += 512
		x3 += 512
		val[i] = (x0 + t3) >> 10
		val[i+56] = (x0 - t3) >> 10
		val[i+8] = (x1 + t2) >> 10
		val[i+48] = (x1 - t2) >> 10
		val[i+16] = (x2 + t1) >> 10
		val[i+40] = (x2 - t1) >> 10
		val[i+24] = (x3 + t0) >> 10
		val[i+32] = (x3 - t0) >> 10
	}

	for i := 0; i < 8; i++ {
		v := val[i*8 : i*8+8]
		t0, t1, t2, t3, x0, x1, x2, x3 := idct1D(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7])
		bias := int32(65536 + (128 << 17))
		x0 += bias
		x1 += bias
		x2 += bias
		x3 += bias
		row := outOff + i*stride
		out[row+0] = clampByte((x0 + t3) >> 17)
		out[row+7] = clampByte((x0 - t3) >> 17)
		out[row+1] = clampByte((x1 + t2) >> 17)
		out[row+6] = clampByte((x1 - t2) >> 17)
		out[row+2] = clampByte((x2 + t1) >> 17)
		out[row+5] = clampByte((x2 - t1) >> 17)
		out[row+3] = clampByte((x3 + t0) >> 17)
		out[row+4] = clampByte((x3 - t0) >> 17)
	}
}
