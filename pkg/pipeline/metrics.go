package pipeline

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"adaptels/pkg/adaptel"
	"adaptels/pkg/visualization"
)

// Metrics summarizes a segmentation.
type Metrics struct {
	// Regions is the number of adaptels.
	Regions int

	// MeanSize and StdDevSize describe the pixel count per region.
	MeanSize   float64
	StdDevSize float64

	// MinSize and MaxSize are the smallest and largest region.
	MinSize int
	MaxSize int

	// MeanDeviation is the average distance of a pixel from the mean of
	// its region. Lower values indicate more homogeneous regions.
	MeanDeviation float64

	// BoundaryFraction is the share of pixels on a region border.
	BoundaryFraction float64

	// Coverage is the share of labeled pixels, 1 for a finished run.
	Coverage float64

	// Candidates is the number of queue entries pushed over the run.
	Candidates int
}

// CalculateMetrics computes region statistics of lm over img.
func CalculateMetrics(img *adaptel.Image, lm *adaptel.LabelMap) Metrics {
	var m Metrics
	n := lm.Width * lm.Height
	if n == 0 {
		return m
	}

	counts := lm.Sizes()
	m.Coverage = 1 - float64(counts[0])/float64(n)

	sizes := make([]float64, 0, len(counts)-1)
	for _, c := range counts[1:] {
		if c > 0 {
			sizes = append(sizes, float64(c))
		}
	}
	m.Regions = len(sizes)
	if len(sizes) > 0 {
		m.MeanSize = stat.Mean(sizes, nil)
		m.MinSize = int(floats.Min(sizes))
		m.MaxSize = int(floats.Max(sizes))
	}
	if len(sizes) > 1 {
		m.StdDevSize = stat.StdDev(sizes, nil)
	}

	m.MeanDeviation = meanDeviation(img, lm, counts)

	border := 0
	for y := 0; y < lm.Height; y++ {
		for x := 0; x < lm.Width; x++ {
			if visualization.IsBorder(lm, x, y) {
				border++
			}
		}
	}
	m.BoundaryFraction = float64(border) / float64(n)
	return m
}

// meanDeviation averages the distance of every labeled pixel from the
// mean of its region.
func meanDeviation(img *adaptel.Image, lm *adaptel.LabelMap, counts []int) float64 {
	c := img.Format.Channels()
	if c == 0 || img.Width != lm.Width || img.Height != lm.Height {
		return 0
	}

	means := make([][]float64, len(counts))
	for i := range means {
		means[i] = make([]float64, c)
	}
	v := make([]float64, c)
	for i, l := range lm.Labels {
		if l == 0 {
			continue
		}
		img.Sample(i, v)
		floats.Add(means[l], v)
	}
	for l := 1; l < len(means); l++ {
		if counts[l] > 0 {
			floats.Scale(1/float64(counts[l]), means[l])
		}
	}

	var metric adaptel.Metric = adaptel.EuclideanMetric{}
	if c == 1 {
		metric = adaptel.AbsMetric{}
	}
	deviations := make([]float64, 0, len(lm.Labels))
	for i, l := range lm.Labels {
		if l == 0 {
			continue
		}
		img.Sample(i, v)
		deviations = append(deviations, metric.Distance(v, means[l]))
	}
	if len(deviations) == 0 {
		return 0
	}
	return stat.Mean(deviations, nil)
}
