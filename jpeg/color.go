package jpeg

// Fixed-point YCbCr->RGB coefficients, scaled by 4096 and shifted left
// 8 more (spec.md §4.8), matching stb's stbi__float2fixed.
func float2fixed(x float64) int32 {
	return int32(x*4096.0+0.5) << 8
}

var (
	fixR   = float2fixed(1.40200)
	fixGCr = float2fixed(0.71414)
	fixGCb = float2fixed(0.34414)
	fixB   = float2fixed(1.77200)
)

// ycbcrToRGBRow converts count pixels of Y/Cb/Cr into interleaved
// output with the given pixel stride (3 for RGB, 4 to leave room for
// an alpha byte the caller fills in separately).
func ycbcrToRGBRow(out, y, cb, cr []byte, count, step int) {
	oi := 0
	for i := 0; i < count; i++ {
		yFixed := (int32(y[i]) << 20) + (1 << 19)
		cR := int32(cr[i]) - 128
		cB := int32(cb[i]) - 128
		r := yFixed + cR*fixR
		g := yFixed + (cR * -fixGCr) + ((cB * -fixGCb) & ^int32(0xFFFF))
		b := yFixed + cB*fixB
		out[oi+0] = clampByte(r >> 20)
		out[oi+1] = clampByte(g >> 20)
		out[oi+2] = clampByte(b >> 20)
		oi += step
	}
}

// blinn8x8 is Blinn's 8-bit fixed-point approximation of (x*y)/255,
// used to apply the JPEG CMYK/YCCK black channel as a multiplicative
// matte (spec.md §4.8).
func blinn8x8(x, y byte) byte {
	t := uint32(x)*uint32(y) + 128
	return byte((t + (t >> 8)) >> 8)
}

// computeY derives a single luma byte from RGB, matching stb's
// stbi__compute_y: the classic 8-bit fixed-point BT.601-ish weights
// 77/150/29 (summing to 256), used whenever a caller asks for fewer
// channels than a color image naturally has.
func computeY(r, g, b byte) byte {
	return byte((int(r)*77 + int(g)*150 + int(b)*29) >> 8)
}

// colorConvert combines the upsampled component planes (already at
// full image resolution) into an interleaved pixel buffer of
// reqChannels bytes per pixel (0 means the image's native channel
// count: 3 for any multi-component image, 1 for single-component).
// Dispatch on source component count and the Adobe APP14
// color-transform byte follows original_source's resample-and-convert
// switch exactly: a 3-component frame is YCbCr unless its component
// ids spell "RGB" or APP14 explicitly declares raw RGB with no JFIF
// marker present; a 4-component frame is CMYK unless APP14 declares
// YCCK, or else is treated as YCbCr-plus-alpha with the fourth channel
// dropped.
func (d *Decoder) colorConvert(planes [][]byte, reqChannels int) ([]byte, int) {
	w, h := d.W, d.H
	numComp := len(planes)

	native := 1
	if numComp >= 3 {
		native = 3
	}
	n := reqChannels
	if n <= 0 || n > 4 {
		n = native
	}

	isRGB := numComp == 3 && (d.rgbCount == 3 || (d.app14 == 0 && !d.jfif))

	out := make([]byte, w*h*n)

	if n >= 3 {
		switch {
		case numComp == 3 && isRGB:
			for i := 0; i < w*h; i++ {
				out[i*n+0] = planes[0][i]
				out[i*n+1] = planes[1][i]
				out[i*n+2] = planes[2][i]
				if n == 4 {
					out[i*n+3] = 255
				}
			}

		case numComp == 3:
			for y := 0; y < h; y++ {
				o := y * w
				ycbcrToRGBRow(out[o*n:], planes[0][o:o+w], planes[1][o:o+w], planes[2][o:o+w], w, n)
			}
			if n == 4 {
				for i := 0; i < w*h; i++ {
					out[i*4+3] = 255
				}
			}

		case numComp == 4 && d.app14 == 0: // CMYK
			for i := 0; i < w*h; i++ {
				k := planes[3][i]
				out[i*n+0] = blinn8x8(planes[0][i], k)
				out[i*n+1] = blinn8x8(planes[1][i], k)
				out[i*n+2] = blinn8x8(planes[2][i], k)
				if n == 4 {
					out[i*n+3] = 255
				}
			}

		case numComp == 4 && d.app14 == 2: // YCCK
			for y := 0; y < h; y++ {
				o := y * w
				ycbcrToRGBRow(out[o*n:], planes[0][o:o+w], planes[1][o:o+w], planes[2][o:o+w], w, n)
			}
			for i := 0; i < w*h; i++ {
				k := planes[3][i]
				out[i*n+0] = blinn8x8(255-out[i*n+0], k)
				out[i*n+1] = blinn8x8(255-out[i*n+1], k)
				out[i*n+2] = blinn8x8(255-out[i*n+2], k)
			}

		case numComp == 4: // YCbCr + alpha: ignore the fourth channel
			for y := 0; y < h; y++ {
				o := y * w
				ycbcrToRGBRow(out[o*n:], planes[0][o:o+w], planes[1][o:o+w], planes[2][o:o+w], w, n)
			}
			if n == 4 {
				for i := 0; i < w*h; i++ {
					out[i*4+3] = 255
				}
			}

		default: // numComp 1 or 2: already gray, replicate into RGB
			for i := 0; i < w*h; i++ {
				g := planes[0][i]
				a := byte(255)
				if numComp == 2 {
					a = planes[1][i]
				}
				out[i*n+0], out[i*n+1], out[i*n+2] = g, g, g
				if n == 4 {
					out[i*n+3] = a
				}
			}
		}
		return out, n
	}

	// n == 1 or 2: collapse down to luma (+ alpha).
	switch {
	case isRGB:
		for i := 0; i < w*h; i++ {
			out[i*n] = computeY(planes[0][i], planes[1][i], planes[2][i])
			if n == 2 {
				out[i*2+1] = 255
			}
		}

	case numComp == 4 && d.app14 == 0: // CMYK -> RGB -> luma
		for i := 0; i < w*h; i++ {
			k := planes[3][i]
			r := blinn8x8(planes[0][i], k)
			g := blinn8x8(planes[1][i], k)
			b := blinn8x8(planes[2][i], k)
			out[i*n] = computeY(r, g, b)
			if n == 2 {
				out[i*2+1] = 255
			}
		}

	case numComp == 4 && d.app14 == 2: // YCCK's own cheap luma shortcut
		for i := 0; i < w*h; i++ {
			out[i*n] = blinn8x8(255-planes[0][i], planes[3][i])
			if n == 2 {
				out[i*2+1] = 255
			}
		}

	default: // component 0 is already luma: gray, gray+alpha, YCbCr, plain YCbCr+alpha
		for i := 0; i < w*h; i++ {
			out[i*n] = planes[0][i]
			if n == 2 {
				a := byte(255)
				if numComp == 2 {
					a = planes[1][i]
				}
				out[i*2+1] = a
			}
		}
	}
	return out, n
}
