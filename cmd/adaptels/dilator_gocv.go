//go:build gocv

package main

import (
	"adaptels/pkg/adaptel"
	"adaptels/pkg/cvmat"
)

// openCVDilator returns a cv::dilate backed frontier dilator and its
// release function.
func openCVDilator(connectivity int) (adaptel.Dilator, func(), error) {
	d, err := cvmat.NewDilator(connectivity)
	if err != nil {
		return nil, nil, err
	}
	return d, func() { d.Close() }, nil
}
