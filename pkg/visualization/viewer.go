package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"adaptels/pkg/adaptel"
	"adaptels/pkg/imageio"
)

// Viewer renders a label map, on its own or over the image it was
// computed from.
type Viewer struct {
	// labels is the segmentation to render
	labels *adaptel.LabelMap

	// source is the image boundaries are drawn onto, may be nil
	source image.Image
}

// NewViewer creates a viewer for a label map and its source image
func NewViewer(labels *adaptel.LabelMap, source image.Image) *Viewer {
	return &Viewer{
		labels: labels,
		source: source,
	}
}

// LabelColor maps a label to a pseudo-random but stable color. Each channel
// is one step of the generator z = (925*z + 711) mod 256, seeded with the
// label, filling blue, green and red in turn.
func LabelColor(label int32) color.RGBA {
	z := int64(label)
	var bgr [3]uint8
	for i := range bgr {
		z = ((925*z+711)%256 + 256) % 256
		bgr[i] = uint8(z)
	}
	return color.RGBA{R: bgr[2], G: bgr[1], B: bgr[0], A: 255}
}

// LabelImage paints every pixel with the color of its label
func (v *Viewer) LabelImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, v.labels.Width, v.labels.Height))
	for y := 0; y < v.labels.Height; y++ {
		for x := 0; x < v.labels.Width; x++ {
			img.SetRGBA(x, y, LabelColor(v.labels.At(x, y)))
		}
	}
	return img
}

// IsBorder reports whether the pixel at (x, y) differs in label from its
// right or lower neighbor
func IsBorder(labels *adaptel.LabelMap, x, y int) bool {
	l := labels.At(x, y)
	if x+1 < labels.Width && labels.At(x+1, y) != l {
		return true
	}
	if y+1 < labels.Height && labels.At(x, y+1) != l {
		return true
	}
	return false
}

// BorderImage copies the source image and inverts the color of every
// region border pixel
func (v *Viewer) BorderImage() (*image.RGBA, error) {
	if v.source == nil {
		return nil, fmt.Errorf("no source image to draw borders on")
	}
	b := v.source.Bounds()
	if b.Dx() != v.labels.Width || b.Dy() != v.labels.Height {
		return nil, fmt.Errorf("source is %dx%d but labels are %dx%d",
			b.Dx(), b.Dy(), v.labels.Width, v.labels.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), v.source, b.Min, draw.Src)

	for y := 0; y < v.labels.Height; y++ {
		for x := 0; x < v.labels.Width; x++ {
			if !IsBorder(v.labels, x, y) {
				continue
			}
			c := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A})
		}
	}
	return img, nil
}

// ExtractRegion returns a binary mask of one region
func (v *Viewer) ExtractRegion(label int32) (*image.Gray, error) {
	if label <= 0 {
		return nil, fmt.Errorf("label must be positive")
	}
	if label > v.labels.MaxLabel() {
		return nil, fmt.Errorf("label %d exceeds region count %d", label, v.labels.MaxLabel())
	}

	mask := image.NewGray(image.Rect(0, 0, v.labels.Width, v.labels.Height))
	for i, l := range v.labels.Labels {
		if l == label {
			mask.Pix[i] = 255
		}
	}
	return mask, nil
}

// SaveImage writes a rendered image, choosing the encoder by extension
func (v *Viewer) SaveImage(img image.Image, filename string) error {
	return imageio.Save(filename, img)
}

// SaveRegionSequence writes one mask per region into outputDir
func (v *Viewer) SaveRegionSequence(outputDir string) error {
	for label := int32(1); label <= v.labels.MaxLabel(); label++ {
		mask, err := v.ExtractRegion(label)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("region_%04d.png", label))
		if err := v.SaveImage(mask, filename); err != nil {
			return err
		}
	}
	return nil
}
