// Package morph implements binary dilation of row-major boolean masks by a
// single step of a 3x3 structuring element.
package morph

import "fmt"

// Element dilates a mask by one step. dst and src must both hold
// width*height cells and must not alias.
type Element interface {
	Dilate(dst, src []bool, width, height int)
}

// Cross is the 4-neighborhood structuring element.
type Cross struct{}

// Dilate sets dst[i] when src[i] or any of its edge neighbors is set.
func (Cross) Dilate(dst, src []bool, width, height int) {
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			i := row + x
			dst[i] = src[i] ||
				(x > 0 && src[i-1]) ||
				(x+1 < width && src[i+1]) ||
				(y > 0 && src[i-width]) ||
				(y+1 < height && src[i+width])
		}
	}
}

// Square is the 8-neighborhood structuring element, the 3x3 rectangle
// OpenCV uses by default.
type Square struct{}

// Dilate sets dst[i] when src[i] or any of its eight neighbors is set.
func (Square) Dilate(dst, src []bool, width, height int) {
	for y := 0; y < height; y++ {
		y0, y1 := max(y-1, 0), min(y+1, height-1)
		for x := 0; x < width; x++ {
			x0, x1 := max(x-1, 0), min(x+1, width-1)
			hit := false
			for yy := y0; yy <= y1 && !hit; yy++ {
				for xx := x0; xx <= x1; xx++ {
					if src[yy*width+xx] {
						hit = true
						break
					}
				}
			}
			dst[y*width+x] = hit
		}
	}
}

// ForConnectivity returns Cross for 4 and Square for 8.
func ForConnectivity(connectivity int) (Element, error) {
	switch connectivity {
	case 4:
		return Cross{}, nil
	case 8:
		return Square{}, nil
	}
	return nil, fmt.Errorf("unsupported connectivity %d (must be 4 or 8)", connectivity)
}

// Shell writes into dst the cells that are set in the dilation of src but
// not in src itself: the unset cells touching set territory. scratch must
// hold width*height cells.
func Shell(e Element, dst, src, scratch []bool, width, height int) {
	e.Dilate(scratch, src, width, height)
	for i := range dst {
		dst[i] = scratch[i] && !src[i]
	}
}
