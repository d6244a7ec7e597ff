package adaptel

// LabelMap is the row-major label grid produced by a segmentation. Zero
// means unlabeled; regions are numbered from 1.
type LabelMap struct {
	Width  int
	Height int
	Labels []int32
}

// NewLabelMap returns an all-zero label map.
func NewLabelMap(width, height int) *LabelMap {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &LabelMap{
		Width:  width,
		Height: height,
		Labels: make([]int32, width*height),
	}
}

// At returns the label at column x, row y.
func (m *LabelMap) At(x, y int) int32 {
	return m.Labels[y*m.Width+x]
}

// Set stores a label at column x, row y.
func (m *LabelMap) Set(x, y int, label int32) {
	m.Labels[y*m.Width+x] = label
}

// MaxLabel returns the largest label present.
func (m *LabelMap) MaxLabel() int32 {
	var max int32
	for _, l := range m.Labels {
		if l > max {
			max = l
		}
	}
	return max
}

// Unlabeled counts the cells still holding zero.
func (m *LabelMap) Unlabeled() int {
	n := 0
	for _, l := range m.Labels {
		if l == 0 {
			n++
		}
	}
	return n
}

// Sizes returns the pixel count of every label, indexed by label. Index 0
// holds the number of unlabeled cells.
func (m *LabelMap) Sizes() []int {
	sizes := make([]int, m.MaxLabel()+1)
	for _, l := range m.Labels {
		sizes[l]++
	}
	return sizes
}

// Clone returns a deep copy of the map, for inspecting a run between
// steps without seeing later updates.
func (m *LabelMap) Clone() *LabelMap {
	c := &LabelMap{Width: m.Width, Height: m.Height, Labels: make([]int32, len(m.Labels))}
	copy(c.Labels, m.Labels)
	return c
}
