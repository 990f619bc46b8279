// Command rasterdump decodes a JPEG or PNG file, prints its decoded
// shape, and optionally writes a BMP preview so the result can be
// opened in anything that reads BMP.
package main

import (
	"flag"
	"image"
	"image/color"
	"os"

	fcolor "github.com/fatih/color"
	"golang.org/x/image/bmp"

	"github.com/go-raster/raster"
	"github.com/go-raster/raster/source"
)

func main() {
	var in string
	var out string
	var info bool
	flag.StringVar(&in, "i", "", "input JPEG or PNG file path")
	flag.StringVar(&out, "o", "", "output BMP preview path (optional)")
	flag.BoolVar(&info, "info", false, "only probe dimensions, don't decode pixels")
	flag.Parse()

	if in == "" {
		fcolor.Red("an input file path is required (-i)")
		os.Exit(1)
	}

	f, err := os.Open(in)
	if err != nil {
		fcolor.Red("cant open input %s: %s", in, err)
		os.Exit(1)
	}
	defer f.Close()

	if info {
		w, h, ch, err := raster.DecodeInfo(source.NewFile(f))
		if err != nil {
			fcolor.Red("cant probe %s: %s", in, err)
			os.Exit(1)
		}
		fcolor.Green("%s: %dx%d, %d channels", in, w, h, ch)
		return
	}

	img, err := raster.DecodeFile(in, raster.Options{})
	if err != nil {
		fcolor.Red("cant decode %s: %s", in, err)
		os.Exit(1)
	}
	fcolor.Green("%s: %dx%d, %d channels, %d bits/channel", in, img.Width, img.Height, img.Channels, img.BitsPerChannel)

	if out == "" {
		return
	}
	output, err := os.Create(out)
	if err != nil {
		fcolor.Red("cant open output %s: %s", out, err)
		os.Exit(1)
	}
	defer output.Close()

	if err := bmp.Encode(output, toStdImage(img)); err != nil {
		fcolor.Red("cant encode preview %s: %s", out, err)
		os.Exit(1)
	}
	fcolor.Green("wrote preview to %s", out)
}

// toStdImage adapts a decoded raster.Image into the standard
// image.Image interface bmp.Encode expects, expanding any channel
// count to RGBA.
func toStdImage(img *raster.Image) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			var c color.NRGBA
			i := (y*img.Width + x) * img.Channels
			switch img.Channels {
			case 1:
				v := img.Pix[i]
				c = color.NRGBA{v, v, v, 255}
			case 2:
				v := img.Pix[i]
				c = color.NRGBA{v, v, v, img.Pix[i+1]}
			case 3:
				c = color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], 255}
			case 4:
				c = color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}
