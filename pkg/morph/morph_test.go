package morph

import "testing"

// grid parses a mask drawn with '#' for set cells
func grid(rows ...string) ([]bool, int, int) {
	width, height := len(rows[0]), len(rows)
	mask := make([]bool, width*height)
	for y, row := range rows {
		for x, c := range row {
			mask[y*width+x] = c == '#'
		}
	}
	return mask, width, height
}

// TestCrossDilate verifies the 4-neighborhood dilation
func TestCrossDilate(t *testing.T) {
	src, w, h := grid(
		"....",
		".#..",
		"....",
	)
	want, _, _ := grid(
		".#..",
		"###.",
		".#..",
	)

	dst := make([]bool, w*h)
	Cross{}.Dilate(dst, src, w, h)

	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Cell (%d,%d): expected %v, got %v", i%w, i/w, want[i], dst[i])
		}
	}
}

// TestSquareDilate verifies the 8-neighborhood dilation at an image corner
func TestSquareDilate(t *testing.T) {
	src, w, h := grid(
		"#...",
		"....",
		"....",
	)
	want, _, _ := grid(
		"##..",
		"##..",
		"....",
	)

	dst := make([]bool, w*h)
	Square{}.Dilate(dst, src, w, h)

	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Cell (%d,%d): expected %v, got %v", i%w, i/w, want[i], dst[i])
		}
	}
}

// TestShell verifies that the shell excludes the source cells
func TestShell(t *testing.T) {
	src, w, h := grid(
		"##...",
		"##...",
	)
	want, _, _ := grid(
		"..#..",
		"..#..",
	)

	dst := make([]bool, w*h)
	scratch := make([]bool, w*h)
	Shell(Cross{}, dst, src, scratch, w, h)

	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Cell (%d,%d): expected %v, got %v", i%w, i/w, want[i], dst[i])
		}
	}
}

// TestForConnectivity verifies the connectivity lookup
func TestForConnectivity(t *testing.T) {
	if e, err := ForConnectivity(4); err != nil || e != (Cross{}) {
		t.Errorf("Expected Cross for 4, got %v (%v)", e, err)
	}
	if e, err := ForConnectivity(8); err != nil || e != (Square{}) {
		t.Errorf("Expected Square for 8, got %v (%v)", e, err)
	}
	if _, err := ForConnectivity(6); err == nil {
		t.Error("Expected error for connectivity 6, got nil")
	}
}
