package jpeg

// zigzag maps the 8x8 block's natural (DC-to-high-frequency diagonal)
// scan position to the row-major index a decoded coefficient is stored
// at, per spec.md's Glossary entry for "Zigzag order".
var zigzag = [64]byte{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// JPEG markers (ISO/IEC 10918-1 Table B.1).
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOF0 = 0xC0 // baseline DCT
	markerSOF1 = 0xC1 // extended sequential DCT
	markerSOF2 = 0xC2 // progressive DCT
	markerDHT  = 0xC4
	markerDQT  = 0xDB
	markerDRI  = 0xDD
	markerSOS  = 0xDA
	markerRST0 = 0xD0
	markerRST7 = 0xD7
	markerAPP0 = 0xE0
	markerAPP14 = 0xEE
	markerAPP15 = 0xEF
	markerCOM  = 0xFE
	markerDNL  = 0xDC
)

func isUnsupportedSOF(marker byte) bool {
	switch marker {
	case 0xC3, 0xC5, 0xC6, 0xC7, 0xC9, 0xCA, 0xCB, 0xCD, 0xCE, 0xCF:
		return true // lossless, differential, arithmetic-coded, hierarchical
	}
	return false
}

func isRestartMarker(b byte) bool { return b >= markerRST0 && b <= markerRST7 }
