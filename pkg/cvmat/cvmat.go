//go:build gocv

// Package cvmat bridges OpenCV matrices and the segmenter. It is only
// built with the gocv tag, which requires a local OpenCV installation.
package cvmat

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"adaptels/pkg/adaptel"
)

// FormatOf maps an OpenCV matrix type to a pixel format.
func FormatOf(t gocv.MatType) adaptel.Format {
	switch t {
	case gocv.MatTypeCV8UC1:
		return adaptel.FormatGray8
	case gocv.MatTypeCV8UC3:
		return adaptel.FormatRGB8
	case gocv.MatTypeCV32FC1:
		return adaptel.FormatGray32F
	case gocv.MatTypeCV32FC3:
		return adaptel.FormatRGB32F
	}
	return adaptel.FormatUnknown
}

// FromMat copies m into a segmentation buffer. Only CV_8UC1, CV_8UC3,
// CV_32FC1 and CV_32FC3 are accepted.
func FromMat(m gocv.Mat) (*adaptel.Image, error) {
	format := FormatOf(m.Type())
	if format == adaptel.FormatUnknown {
		return nil, fmt.Errorf("%w: mat type %v", adaptel.ErrUnsupportedPixelFormat, m.Type())
	}

	rows, cols := m.Rows(), m.Cols()
	img := adaptel.NewImage(cols, rows, format)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := y*cols + x
			switch format {
			case adaptel.FormatGray8:
				img.Pix[i] = m.GetUCharAt(y, x)
			case adaptel.FormatRGB8:
				v := m.GetVecbAt(y, x)
				copy(img.Pix[i*3:i*3+3], v)
			case adaptel.FormatGray32F:
				img.PixF[i] = m.GetFloatAt(y, x)
			case adaptel.FormatRGB32F:
				v := m.GetVecfAt(y, x)
				copy(img.PixF[i*3:i*3+3], v)
			}
		}
	}
	return img, nil
}

// Segment segments an OpenCV matrix and returns the labels as CV_32SC1.
func Segment(m gocv.Mat, threshold float64, opts *adaptel.Options) (gocv.Mat, error) {
	img, err := FromMat(m)
	if err != nil {
		return gocv.NewMat(), err
	}
	lm, err := adaptel.Segment(img, threshold, opts)
	if err != nil {
		return gocv.NewMat(), err
	}

	out := gocv.NewMatWithSize(lm.Height, lm.Width, gocv.MatTypeCV32SC1)
	for y := 0; y < lm.Height; y++ {
		for x := 0; x < lm.Width; x++ {
			out.SetIntAt(y, x, lm.At(x, y))
		}
	}
	return out, nil
}

// Dilator dilates masks with cv::dilate. Close releases its kernel.
type Dilator struct {
	kernel gocv.Mat
}

// NewDilator returns a dilator with a 3x3 cross (connectivity 4) or
// rectangle (connectivity 8) kernel.
func NewDilator(connectivity int) (*Dilator, error) {
	var shape gocv.MorphShape
	switch connectivity {
	case 4:
		shape = gocv.MorphCross
	case 8:
		shape = gocv.MorphRect
	default:
		return nil, fmt.Errorf("unsupported connectivity %d (must be 4 or 8)", connectivity)
	}
	return &Dilator{kernel: gocv.GetStructuringElement(shape, image.Point{X: 3, Y: 3})}, nil
}

// Dilate implements adaptel.Dilator.
func (d *Dilator) Dilate(dst, src []bool, width, height int) {
	buf := make([]byte, width*height)
	for i, set := range src {
		if set {
			buf[i] = 255
		}
	}
	in, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, buf)
	if err != nil {
		panic(fmt.Sprintf("cvmat: %v", err))
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.Dilate(in, &out, d.kernel)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst[y*width+x] = out.GetUCharAt(y, x) != 0
		}
	}
}

// Close releases the kernel.
func (d *Dilator) Close() error {
	return d.kernel.Close()
}
