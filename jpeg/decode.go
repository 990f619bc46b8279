package jpeg

import "github.com/go-raster/raster/source"

// Image is a fully decoded raster image: Channels bytes per pixel,
// row-major, with no row padding.
type Image struct {
	Width, Height int
	Channels      int
	Pix           []byte
}

// Decode reads one complete JPEG image from src: header, every scan,
// chroma upsampling and color conversion (spec.md §2 item 1).
// requestedChannels selects the output channel count (1-4); 0 means
// the image's native count, matching original_source's req_comp==0
// convention.
func Decode(src source.Source, requestedChannels int) (*Image, error) {
	d := NewDecoder(src)
	if err := d.header(); err != nil {
		return nil, err
	}
	if err := d.decodeScans(); err != nil {
		return nil, err
	}
	if d.progressive {
		d.finalizeProgressive()
	}

	planes := make([][]byte, d.numComp)
	for i := 0; i < d.numComp; i++ {
		planes[i] = d.upsample(&d.comps[i])
	}
	pix, channels := d.colorConvert(planes, requestedChannels)
	return &Image{Width: d.W, Height: d.H, Channels: channels, Pix: pix}, nil
}

// DecodeInfo parses only the frame header, reporting dimensions and
// output channel count without entropy-decoding any scan (spec.md §2
// item 1's "info" probe).
func DecodeInfo(src source.Source) (width, height, channels int, err error) {
	d := NewDecoder(src)
	if err := d.header(); err != nil {
		return 0, 0, 0, err
	}
	ch := 1
	if d.numComp >= 3 {
		ch = 3
	}
	return d.W, d.H, ch, nil
}

// nextMarker returns the marker ending the scan just decoded. The bit
// reader's fill may already have consumed it from the source while
// looking for more entropy-coded bits (spec.md §4.6); only fall back
// to scanning the source directly when that never happened.
func (d *Decoder) nextMarker() (byte, error) {
	if d.br.marker != markerNone {
		m := d.br.marker
		d.br.marker = markerNone
		return m, nil
	}
	return d.readMarker()
}

// decodeScans drives the SOS/EOI loop following the frame header:
// every scan is parsed and entropy-decoded in turn until EOI.
func (d *Decoder) decodeScans() error {
	for {
		m, err := d.nextMarker()
		if err != nil {
			return err
		}
		switch {
		case m == markerSOS:
			if err := d.processScanHeader(); err != nil {
				return err
			}
			if err := d.decodeScan(); err != nil {
				return err
			}
		case m == markerEOI:
			d.sawEOI = true
			return nil
		case isRestartMarker(m):
			continue
		default:
			if err := d.processMarker(m); err != nil {
				return err
			}
		}
	}
}
