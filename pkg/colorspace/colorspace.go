// Package colorspace converts decoded images into segmentation buffers.
package colorspace

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"adaptels/pkg/adaptel"
)

// Mode selects the representation handed to the segmenter.
type Mode int

const (
	// Gray is luminance scaled to [0, 1], stored as 32-bit floats.
	Gray Mode = iota
	// Lab is CIE L*a*b* (D65) divided by 128, stored as 32-bit floats.
	Lab
	// Gray8 is 8-bit luminance.
	Gray8
	// RGB8 is 8-bit red, green and blue.
	RGB8
)

// labScale converts go-colorful's L*a*b* units (L in [0, 1]) to the
// classic [0, 100] range divided by 128.
const labScale = 100.0 / 128.0

// ParseMode parses gray, lab, gray8 or rgb8.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "gray", "grey":
		return Gray, nil
	case "lab":
		return Lab, nil
	case "gray8", "grey8":
		return Gray8, nil
	case "rgb8":
		return RGB8, nil
	}
	return Gray, fmt.Errorf("unknown color mode %q (must be gray, lab, gray8 or rgb8)", s)
}

func (m Mode) String() string {
	switch m {
	case Lab:
		return "lab"
	case Gray8:
		return "gray8"
	case RGB8:
		return "rgb8"
	}
	return "gray"
}

// Format returns the pixel format Convert produces for the mode.
func (m Mode) Format() adaptel.Format {
	switch m {
	case Lab:
		return adaptel.FormatRGB32F
	case Gray8:
		return adaptel.FormatGray8
	case RGB8:
		return adaptel.FormatRGB8
	}
	return adaptel.FormatGray32F
}

// Convert builds a segmentation buffer from img.
func Convert(img image.Image, mode Mode) *adaptel.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := adaptel.NewImage(w, h, mode.Format())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			switch mode {
			case Gray:
				g := color.Gray16Model.Convert(c).(color.Gray16)
				out.PixF[i] = float32(g.Y) / 65535
			case Gray8:
				out.Pix[i] = color.GrayModel.Convert(c).(color.Gray).Y
			case RGB8:
				r, g, bl, _ := c.RGBA()
				out.Pix[i*3] = uint8(r >> 8)
				out.Pix[i*3+1] = uint8(g >> 8)
				out.Pix[i*3+2] = uint8(bl >> 8)
			case Lab:
				l, a, bb := toLab(c)
				out.PixF[i*3] = float32(l)
				out.PixF[i*3+1] = float32(a)
				out.PixF[i*3+2] = float32(bb)
			}
		}
	}
	return out
}

// toLab returns the scaled L*a*b* coordinates of c. Fully transparent
// pixels are treated as black.
func toLab(c color.Color) (l, a, b float64) {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return 0, 0, 0
	}
	l, a, b = cf.Lab()
	return l * labScale, a * labScale, b * labScale
}

// ToRGBA renders a buffer produced by Convert in the given mode back into
// an image, for previews of the converted input. Lab buffers are mapped
// back to sRGB and out-of-gamut colors are clamped.
func ToRGBA(img *adaptel.Image, mode Mode) (*image.RGBA, error) {
	if img.Format != mode.Format() {
		return nil, fmt.Errorf("%w: %s buffer for mode %s", adaptel.ErrUnsupportedPixelFormat, img.Format, mode)
	}
	out := image.NewRGBA(img.Bounds())
	v := make([]float64, img.Format.Channels())
	for i := 0; i < img.Width*img.Height; i++ {
		img.Sample(i, v)
		var cf colorful.Color
		switch mode {
		case Gray:
			cf = colorful.Color{R: v[0], G: v[0], B: v[0]}
		case Gray8:
			g := v[0] / 255
			cf = colorful.Color{R: g, G: g, B: g}
		case RGB8:
			cf = colorful.Color{R: v[0] / 255, G: v[1] / 255, B: v[2] / 255}
		case Lab:
			cf = colorful.Lab(v[0]/labScale, v[1]/labScale, v[2]/labScale)
		}
		r8, g8, b8 := cf.Clamped().RGB255()
		out.Pix[i*4] = r8
		out.Pix[i*4+1] = g8
		out.Pix[i*4+2] = b8
		out.Pix[i*4+3] = 0xff
	}
	return out, nil
}
