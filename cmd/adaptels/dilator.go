//go:build !gocv

package main

import (
	"fmt"

	"adaptels/pkg/adaptel"
)

// openCVDilator is unavailable without OpenCV.
func openCVDilator(connectivity int) (adaptel.Dilator, func(), error) {
	return nil, nil, fmt.Errorf("dilator %q requires a binary built with -tags gocv", "opencv")
}
