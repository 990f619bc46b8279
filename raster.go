// Package raster ties the individual container decoders (raster/jpeg,
// raster/png) together behind one magic-byte dispatcher, the "external
// collaborator" spec.md §1 describes but leaves outside the core's
// scope. It also recognizes, but refuses to decode, the container
// formats spec.md names as explicit Non-goals (raster/format).
package raster

import (
	"io"
	"os"

	"github.com/go-raster/raster/errs"
	"github.com/go-raster/raster/format"
	"github.com/go-raster/raster/jpeg"
	"github.com/go-raster/raster/png"
	"github.com/go-raster/raster/source"
)

// Image is the unified decoded raster every container path produces.
// BitsPerChannel is always 8: both jpeg and png truncate wider samples
// to their most significant byte (spec.md's 8-bit output contract).
type Image struct {
	Width, Height  int
	Channels       int
	BitsPerChannel int
	Pix            []byte
}

// Options configures resource limits and output shape shared across
// container formats. A zero Options uses each decoder's own defaults.
type Options struct {
	MaxPixels int // 0 means no extra limit beyond each decoder's own

	// Channels requests a specific output channel count (1-4); 0 means
	// each format's own native count (spec.md's "requested_channels
	// ∈ {0 (native), 1, 2, 3, 4}"). Only JPEG honors a non-native
	// request today: PNG's indexed/gray/truecolor paths always report
	// their own native shape.
	Channels int
}

const jpegSOIMarker = 0xFFD8

func sniffJPEG(src source.Source) bool {
	anchor := src.Tell()
	defer src.RewindTo(anchor)
	v, err := src.ReadU16BE()
	return err == nil && v == jpegSOIMarker
}

func sniffPNG(src source.Source) bool {
	anchor := src.Tell()
	defer src.RewindTo(anchor)
	var sig [8]byte
	if src.ReadFull(sig[:]) != nil {
		return false
	}
	want := [8]byte{137, 80, 78, 71, 13, 10, 26, 10}
	return sig == want
}

// Decode reads one complete raster image from src, dispatching on
// magic bytes in the order original_source/image_api.c's
// stbi__load_main uses: JPEG and PNG are fully decoded; every other
// recognized format fails with a precise Unsupported error.
func Decode(src source.Source, opts Options) (*Image, error) {
	switch {
	case sniffJPEG(src):
		img, err := jpeg.Decode(src, opts.Channels)
		if err != nil {
			return nil, err
		}
		if opts.MaxPixels > 0 && img.Width*img.Height > opts.MaxPixels {
			return nil, errs.Resourcef("image has %d pixels, limit is %d", img.Width*img.Height, opts.MaxPixels)
		}
		return &Image{Width: img.Width, Height: img.Height, Channels: img.Channels, BitsPerChannel: 8, Pix: img.Pix}, nil
	case sniffPNG(src):
		img, err := png.Decode(src)
		if err != nil {
			return nil, err
		}
		if opts.MaxPixels > 0 && img.Width*img.Height > opts.MaxPixels {
			return nil, errs.Resourcef("image has %d pixels, limit is %d", img.Width*img.Height, opts.MaxPixels)
		}
		return &Image{Width: img.Width, Height: img.Height, Channels: img.Channels, BitsPerChannel: 8, Pix: img.Pix}, nil
	}
	if name := format.Sniff(src); name != "" {
		return nil, errs.Unsupportedf("%s images are not supported", name)
	}
	return nil, errs.Malformedf("unrecognized image format")
}

// DecodeInfo reports dimensions and channel count without decoding
// pixel data, for whichever format is detected.
func DecodeInfo(src source.Source) (width, height, channels int, err error) {
	switch {
	case sniffJPEG(src):
		return jpeg.DecodeInfo(src)
	case sniffPNG(src):
		w, h, ch, _, err := png.DecodeInfo(src)
		return w, h, ch, err
	}
	if name := format.Sniff(src); name != "" {
		return 0, 0, 0, errs.Unsupportedf("%s images are not supported", name)
	}
	return 0, 0, 0, errs.Malformedf("unrecognized image format")
}

// DecodeBytes decodes an in-memory buffer.
func DecodeBytes(buf []byte, opts Options) (*Image, error) {
	return Decode(source.NewMem(buf), opts)
}

// DecodeReader decodes a complete io.Reader by buffering it in memory
// first; streaming decode is only supported via DecodeFile or
// DecodeCallbacks on already-seekable/pull-style sources.
func DecodeReader(r io.Reader, opts Options) (*Image, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.UnexpectedEnd, err, "reading source")
	}
	return DecodeBytes(buf, opts)
}

// DecodeFile decodes an image from a path on disk.
func DecodeFile(path string, opts Options) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.UnexpectedEnd, err, "opening %s", path)
	}
	defer f.Close()
	return Decode(source.NewFile(f), opts)
}

// DecodeCallbacks decodes an image pulled through user-supplied
// callbacks, matching spec.md §4.1's callback Byte Source contract.
func DecodeCallbacks(cb source.Callbacks, opts Options) (*Image, error) {
	return Decode(source.NewCallbacks(cb), opts)
}
