//go:build !gocv

package main

import "testing"

// TestOpenCVDilatorUnavailable verifies the error without the gocv tag
func TestOpenCVDilatorUnavailable(t *testing.T) {
	if _, _, err := openCVDilator(4); err == nil {
		t.Error("Expected error without OpenCV support, got nil")
	}
}
