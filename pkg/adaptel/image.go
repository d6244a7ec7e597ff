package adaptel

import (
	"fmt"
	"image"
)

// Format identifies the element type and channel layout of an Image.
type Format int

const (
	// FormatUnknown is the zero Format and is never accepted by Segment.
	FormatUnknown Format = iota
	// FormatGray8 is one unsigned 8-bit channel per pixel.
	FormatGray8
	// FormatRGB8 is three unsigned 8-bit channels per pixel.
	FormatRGB8
	// FormatGray32F is one 32-bit float channel per pixel.
	FormatGray32F
	// FormatRGB32F is three 32-bit float channels per pixel.
	FormatRGB32F
)

// Channels returns the number of samples per pixel, or 0 for an
// unsupported format.
func (f Format) Channels() int {
	switch f {
	case FormatGray8, FormatGray32F:
		return 1
	case FormatRGB8, FormatRGB32F:
		return 3
	}
	return 0
}

// IsFloat reports whether samples are stored in Image.PixF.
func (f Format) IsFloat() bool {
	return f == FormatGray32F || f == FormatRGB32F
}

func (f Format) String() string {
	switch f {
	case FormatGray8:
		return "gray8"
	case FormatRGB8:
		return "rgb8"
	case FormatGray32F:
		return "gray32f"
	case FormatRGB32F:
		return "rgb32f"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Image is a row-major pixel buffer. Integer formats keep their samples in
// Pix, float formats in PixF; the other slice is ignored. An Image must not
// be modified while it is being segmented.
type Image struct {
	Width  int
	Height int
	Format Format

	// Pix holds the samples of FormatGray8 and FormatRGB8 images.
	Pix []uint8

	// PixF holds the samples of FormatGray32F and FormatRGB32F images.
	PixF []float32
}

// NewImage allocates a zeroed image of the given size and format.
func NewImage(width, height int, format Format) *Image {
	img := &Image{Width: width, Height: height, Format: format}
	n := width * height * format.Channels()
	if n < 0 {
		n = 0
	}
	if format.IsFloat() {
		img.PixF = make([]float32, n)
	} else {
		img.Pix = make([]uint8, n)
	}
	return img
}

// NewGrayImage builds a FormatGray32F image from row-major values.
func NewGrayImage(width, height int, values []float32) *Image {
	return &Image{Width: width, Height: height, Format: FormatGray32F, PixF: values}
}

// Empty reports whether the image has no pixels.
func (img *Image) Empty() bool {
	return img == nil || img.Width <= 0 || img.Height <= 0
}

// Bounds returns the pixel rectangle of the image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// Sample copies the channels of pixel idx into dst, which must hold at
// least Format.Channels() values.
func (img *Image) Sample(idx int, dst []float64) {
	c := img.Format.Channels()
	base := idx * c
	if img.Format.IsFloat() {
		for i := 0; i < c; i++ {
			dst[i] = float64(img.PixF[base+i])
		}
		return
	}
	for i := 0; i < c; i++ {
		dst[i] = float64(img.Pix[base+i])
	}
}

// Validate checks the format and the buffer length against the dimensions.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrMalformedImage)
	}
	if img.Width < 0 || img.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrMalformedImage, img.Width, img.Height)
	}
	c := img.Format.Channels()
	if c == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, img.Format)
	}
	want := img.Width * img.Height * c
	got := len(img.Pix)
	if img.Format.IsFloat() {
		got = len(img.PixF)
	}
	if got != want {
		return fmt.Errorf("%w: %s buffer holds %d samples, want %d", ErrMalformedImage, img.Format, got, want)
	}
	return nil
}

// sampler reads pixel values of one concrete format. It is chosen once per
// run so the grower never switches on the format per pixel.
type sampler interface {
	channels() int
	at(idx int, dst []float64)
}

type gray8Sampler []uint8

func (s gray8Sampler) channels() int { return 1 }
func (s gray8Sampler) at(idx int, dst []float64) {
	dst[0] = float64(s[idx])
}

type rgb8Sampler []uint8

func (s rgb8Sampler) channels() int { return 3 }
func (s rgb8Sampler) at(idx int, dst []float64) {
	p := s[idx*3 : idx*3+3 : idx*3+3]
	dst[0], dst[1], dst[2] = float64(p[0]), float64(p[1]), float64(p[2])
}

type gray32Sampler []float32

func (s gray32Sampler) channels() int { return 1 }
func (s gray32Sampler) at(idx int, dst []float64) {
	dst[0] = float64(s[idx])
}

type rgb32Sampler []float32

func (s rgb32Sampler) channels() int { return 3 }
func (s rgb32Sampler) at(idx int, dst []float64) {
	p := s[idx*3 : idx*3+3 : idx*3+3]
	dst[0], dst[1], dst[2] = float64(p[0]), float64(p[1]), float64(p[2])
}

func newSampler(img *Image) (sampler, error) {
	switch img.Format {
	case FormatGray8:
		return gray8Sampler(img.Pix), nil
	case FormatRGB8:
		return rgb8Sampler(img.Pix), nil
	case FormatGray32F:
		return gray32Sampler(img.PixF), nil
	case FormatRGB32F:
		return rgb32Sampler(img.PixF), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, img.Format)
}
