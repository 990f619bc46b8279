// Package deflate implements a standalone RFC 1951 DEFLATE decoder and
// an RFC 1950 zlib wrapper around it, as described by spec.md §4.8/§4.9.
// It is used internally by the png package and is also a public,
// general-purpose utility — nothing in this package depends on any
// image format.
package deflate

import "github.com/go-raster/raster/errs"

// Options configures a single Inflate call.
type Options struct {
	// Output, if non-nil, is the pre-sized buffer decoding writes into.
	// The buffer is treated as non-growable: once its capacity is
	// exhausted, decoding fails with a Resource error rather than
	// allocating more memory. Its length is reset to 0 before use; its
	// capacity is the hard limit.
	Output []byte
	// MaxSize bounds a growable output buffer (ignored when Output is
	// set). Zero means the spec's 2^31-byte cap.
	MaxSize int
}

const maxOutputSize = 1 << 31

type outputBuffer struct {
	buf      []byte
	growable bool
	maxSize  int
}

func newOutputBuffer(opts Options) *outputBuffer {
	if opts.Output != nil {
		return &outputBuffer{buf: opts.Output[:0], growable: false}
	}
	max := opts.MaxSize
	if max <= 0 || max > maxOutputSize {
		max = maxOutputSize
	}
	return &outputBuffer{buf: make([]byte, 0, 4096), growable: true, maxSize: max}
}

// grow ensures room for extra more bytes, doubling (per spec.md §9) up
// to maxSize for a growable buffer; a non-growable buffer never grows.
func (o *outputBuffer) grow(extra int) error {
	need := len(o.buf) + extra
	if need <= cap(o.buf) {
		return nil
	}
	if !o.growable {
		return errs.Resourcef("output buffer limit")
	}
	if need > o.maxSize {
		return errs.Resourcef("output buffer limit")
	}
	newCap := cap(o.buf) * 2
	if newCap < need {
		newCap = need
	}
	if newCap > o.maxSize {
		newCap = o.maxSize
	}
	nb := make([]byte, len(o.buf), newCap)
	copy(nb, o.buf)
	o.buf = nb
	return nil
}

func (o *outputBuffer) appendByte(b byte) error {
	if len(o.buf) == cap(o.buf) {
		if err := o.grow(1); err != nil {
			return err
		}
	}
	o.buf = append(o.buf, b)
	return nil
}

func (o *outputBuffer) appendRaw(p []byte) error {
	if len(o.buf)+len(p) > cap(o.buf) {
		if err := o.grow(len(p)); err != nil {
			return err
		}
	}
	o.buf = append(o.buf, p...)
	return nil
}

// appendCopy implements the DEFLATE back-reference copy: dist bytes
// backward, length bytes forward, overlap-safe byte-wise copy.
func (o *outputBuffer) appendCopy(dist, length int) error {
	if dist > len(o.buf) {
		return errs.Malformedf("bad distance")
	}
	if len(o.buf)+length > cap(o.buf) {
		if err := o.grow(length); err != nil {
			return err
		}
	}
	start := len(o.buf) - dist
	if dist == 1 {
		v := o.buf[start]
		for i := 0; i < length; i++ {
			o.buf = append(o.buf, v)
		}
		return nil
	}
	for i := 0; i < length; i++ {
		o.buf = append(o.buf, o.buf[start+i])
	}
	return nil
}

type decoder struct {
	r    *bitReader
	out  *outputBuffer
	lens *huffTable
	dist *huffTable
}

func (d *decoder) storedBlock() error {
	n := d.r.bits % 8
	if n != 0 {
		d.r.receive(n)
	}
	var header [4]byte
	k := 0
	for d.r.bits > 0 {
		header[k] = byte(d.r.buf & 0xFF)
		d.r.buf >>= 8
		d.r.bits -= 8
		k++
	}
	for k < 4 {
		if d.r.pos >= d.r.end {
			return errs.ErrUnexpectedEnd
		}
		header[k] = byte(d.r.get8())
		k++
	}
	length := int(header[0]) | int(header[1])<<8
	nlen := int(header[2]) | int(header[3])<<8
	if nlen != length^0xFFFF {
		return errs.Malformedf("zlib corrupt")
	}
	if d.r.pos+length > d.r.end {
		return errs.ErrUnexpectedEnd
	}
	if err := d.out.appendRaw(d.r.in[d.r.pos : d.r.pos+length]); err != nil {
		return err
	}
	d.r.pos += length
	return nil
}

func (d *decoder) dynamicTables() error {
	hlit := d.r.receive(5) + 257
	hdist := d.r.receive(5) + 1
	hclen := d.r.receive(4) + 4

	var clSizes [19]byte
	for i := 0; i < hclen; i++ {
		clSizes[codeLengthOrder[i]] = byte(d.r.receive(3))
	}
	clTable, err := buildHuffman(clSizes[:])
	if err != nil {
		return err
	}

	ntot := hlit + hdist
	lencodes := make([]byte, 0, ntot)
	for len(lencodes) < ntot {
		c := d.r.decodeSymbol(clTable)
		if c < 0 || c >= 19 {
			return errs.Malformedf("bad code lengths")
		}
		switch {
		case c < 16:
			lencodes = append(lencodes, byte(c))
		case c == 16:
			if len(lencodes) == 0 {
				return errs.Malformedf("repeat with no previous code length")
			}
			rep := d.r.receive(2) + 3
			if ntot-len(lencodes) < rep {
				return errs.Malformedf("code length run overruns table")
			}
			fill := lencodes[len(lencodes)-1]
			for i := 0; i < rep; i++ {
				lencodes = append(lencodes, fill)
			}
		case c == 17:
			rep := d.r.receive(3) + 3
			if ntot-len(lencodes) < rep {
				return errs.Malformedf("code length run overruns table")
			}
			for i := 0; i < rep; i++ {
				lencodes = append(lencodes, 0)
			}
		default: // 18
			rep := d.r.receive(7) + 11
			if ntot-len(lencodes) < rep {
				return errs.Malformedf("code length run overruns table")
			}
			for i := 0; i < rep; i++ {
				lencodes = append(lencodes, 0)
			}
		}
	}
	if len(lencodes) != ntot {
		return errs.Malformedf("code length total mismatch")
	}

	lens, err := buildHuffman(lencodes[:hlit])
	if err != nil {
		return err
	}
	dist, err := buildHuffman(lencodes[hlit:])
	if err != nil {
		return err
	}
	d.lens, d.dist = lens, dist
	return nil
}

func (d *decoder) huffmanBlock() error {
	for {
		z := d.r.decodeSymbol(d.lens)
		if z < 0 {
			return errs.Malformedf("bad huffman code")
		}
		if z < 256 {
			if err := d.out.appendByte(byte(z)); err != nil {
				return err
			}
			continue
		}
		if z == 256 {
			return nil
		}
		z -= 257
		if z >= len(lengthBase) {
			return errs.Malformedf("bad length code")
		}
		length := int(lengthBase[z])
		if lengthExtra[z] != 0 {
			length += d.r.receive(int(lengthExtra[z]))
		}
		dz := d.r.decodeSymbol(d.dist)
		if dz < 0 || dz >= len(distBase) {
			return errs.Malformedf("bad distance code")
		}
		dist := int(distBase[dz])
		if distExtra[dz] != 0 {
			dist += d.r.receive(int(distExtra[dz]))
		}
		if err := d.out.appendCopy(dist, length); err != nil {
			return err
		}
	}
}

func (d *decoder) block() (final bool, err error) {
	final = d.r.receive(1) == 1
	typ := d.r.receive(2)
	switch typ {
	case 0:
		err = d.storedBlock()
	case 1:
		d.lens, err = buildHuffman(fixedLitLengths)
		if err == nil {
			d.dist, err = buildHuffman(fixedDistLengths)
		}
		if err == nil {
			err = d.huffmanBlock()
		}
	case 2:
		err = d.dynamicTables()
		if err == nil {
			err = d.huffmanBlock()
		}
	default:
		err = errs.Malformedf("reserved block type")
	}
	return final, err
}

// Inflate decodes raw RFC 1951 DEFLATE data (no zlib wrapper).
func Inflate(src []byte, opts Options) ([]byte, error) {
	d := &decoder{r: newBitReader(src), out: newOutputBuffer(opts)}
	for {
		final, err := d.block()
		if err != nil {
			return nil, err
		}
		if final {
			return d.out.buf, nil
		}
	}
}

// Zlib decodes RFC 1950 zlib-wrapped DEFLATE data: CM must be 8, FDICT
// must be zero, and CMF*256+FLG must be divisible by 31. The trailing
// Adler-32 is not validated, per spec.md §6.
func Zlib(src []byte, opts Options) ([]byte, error) {
	r := newBitReader(src)
	if r.pos+2 > r.end {
		return nil, errs.ErrUnexpectedEnd
	}
	cmf := r.get8()
	flg := r.get8()
	if (cmf*256+flg)%31 != 0 {
		return nil, errs.Malformedf("bad zlib header")
	}
	if flg&32 != 0 {
		return nil, errs.Unsupportedf("preset dictionary")
	}
	if cmf&15 != 8 {
		return nil, errs.Unsupportedf("zlib compression method %d", cmf&15)
	}
	d := &decoder{r: r, out: newOutputBuffer(opts)}
	for {
		final, err := d.block()
		if err != nil {
			return nil, err
		}
		if final {
			return d.out.buf, nil
		}
	}
}
