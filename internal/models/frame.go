package models

import (
	"image"
)

// Frame is a decoded source image with its metadata
type Frame struct {
	// Image is the decoded image data
	Image image.Image

	// Filename is the path the image was read from
	Filename string

	// Format is the codec name reported by the decoder (png, jpeg, ...)
	Format string

	// Width and Height are the pixel dimensions of Image
	Width  int
	Height int
}

// NewFrame wraps an already decoded image
func NewFrame(img image.Image, filename, format string) *Frame {
	b := img.Bounds()
	return &Frame{
		Image:    img,
		Filename: filename,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}
}

// Pixels returns the number of pixels in the frame
func (f *Frame) Pixels() int {
	return f.Width * f.Height
}
