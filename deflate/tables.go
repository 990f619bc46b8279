package deflate

// Fixed Huffman code lengths for block type 1 (DEFLATE §3.2.6).
var fixedLitLengths = func() []byte {
	l := make([]byte, 288)
	i := 0
	for ; i < 144; i++ {
		l[i] = 8
	}
	for ; i < 256; i++ {
		l[i] = 9
	}
	for ; i < 280; i++ {
		l[i] = 7
	}
	for ; i < 288; i++ {
		l[i] = 8
	}
	return l
}()

var fixedDistLengths = func() []byte {
	l := make([]byte, 32)
	for i := range l {
		l[i] = 5
	}
	return l
}()

// length_base / length_extra per DEFLATE §3.2.5, indexed by symbol-257.
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtra = [29]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// dist_base / dist_extra per DEFLATE §3.2.5.
var distBase = [30]uint16{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
	8193, 12289, 16385, 24577,
}

var distExtra = [30]byte{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// codeLengthOrder is the fixed permutation the dynamic-block header
// uses to transmit the 3-bit code-length code lengths.
var codeLengthOrder = [19]byte{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}
