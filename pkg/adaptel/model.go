package adaptel

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultScale is the information scale k applied to the distance between a
// pixel and the region mean.
const DefaultScale = 2.0

// Metric measures the distance between two pixel values of equal length.
type Metric interface {
	Distance(a, b []float64) float64
}

// AbsMetric is the absolute difference of single-channel values.
type AbsMetric struct{}

// Distance returns |a[0] - b[0]|.
func (AbsMetric) Distance(a, b []float64) float64 {
	return math.Abs(a[0] - b[0])
}

// EuclideanMetric is the L2 distance of multi-channel values.
type EuclideanMetric struct{}

// Distance returns the Euclidean distance between a and b.
func (EuclideanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// defaultMetric picks the distance for a channel count.
func defaultMetric(channels int) Metric {
	if channels == 1 {
		return AbsMetric{}
	}
	return EuclideanMetric{}
}

// InfoMode selects which mean a committed pixel is charged against.
type InfoMode int

const (
	// InfoPriorMean charges a committed pixel against the mean before it
	// was added, so the committed cost equals what Probe reported.
	InfoPriorMean InfoMode = iota
	// InfoUpdatedMean charges a committed pixel against the mean that
	// already includes it.
	InfoUpdatedMean
)

func (m InfoMode) String() string {
	if m == InfoUpdatedMean {
		return "updated-mean"
	}
	return "prior-mean"
}

// RegionModel is the online statistical model of one growing region. It
// keeps a running mean and the cumulative information (surprise) of every
// pixel committed so far, under a Laplacian model: info(v) = k * |v - mean|.
//
// The mean used by Probe is never recomputed for earlier pixels, which
// keeps each evaluation O(1) at the price of an approximate total.
type RegionModel struct {
	scale  float64
	mode   InfoMode
	metric Metric

	sum   []float64
	mean  []float64
	count int
	info  float64
}

// NewRegionModel returns an empty model for pixels of the given channel
// count. A nil metric selects AbsMetric for one channel and
// EuclideanMetric otherwise.
func NewRegionModel(channels int, scale float64, metric Metric, mode InfoMode) *RegionModel {
	if metric == nil {
		metric = defaultMetric(channels)
	}
	return &RegionModel{
		scale:  scale,
		mode:   mode,
		metric: metric,
		sum:    make([]float64, channels),
		mean:   make([]float64, channels),
	}
}

// Probe returns the cumulative information the model would hold if v were
// added, using the current mean. An empty model has no mean yet, so the
// first pixel of a region costs nothing.
func (m *RegionModel) Probe(v []float64) float64 {
	if m.count == 0 {
		return m.info
	}
	return m.info + m.scale*m.metric.Distance(v, m.mean)
}

// Commit adds v to the region and updates the running sum, count, mean
// and information.
func (m *RegionModel) Commit(v []float64) {
	prior := m.Probe(v)
	floats.Add(m.sum, v)
	m.count++
	floats.ScaleTo(m.mean, 1/float64(m.count), m.sum)
	if m.mode == InfoUpdatedMean {
		m.info = m.Probe(v)
		return
	}
	m.info = prior
}

// Info returns the cumulative information of the committed pixels.
func (m *RegionModel) Info() float64 { return m.info }

// Count returns the number of committed pixels.
func (m *RegionModel) Count() int { return m.count }

// Mean returns a copy of the running mean.
func (m *RegionModel) Mean() []float64 {
	out := make([]float64, len(m.mean))
	copy(out, m.mean)
	return out
}

// Reset empties the model so it can serve the next region.
func (m *RegionModel) Reset() {
	for i := range m.sum {
		m.sum[i] = 0
		m.mean[i] = 0
	}
	m.count = 0
	m.info = 0
}
