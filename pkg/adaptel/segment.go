package adaptel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrUnsupportedPixelFormat reports an image whose element type or
	// channel layout is not one of the four supported formats.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")

	// ErrMalformedImage reports an image whose buffer does not match its
	// dimensions.
	ErrMalformedImage = errors.New("malformed image")

	// ErrInvalidSeed reports a start point outside the image.
	ErrInvalidSeed = errors.New("seed outside image")
)

// Options tunes a segmentation run. The zero value is usable: zero Scale
// means DefaultScale, a nil Dilator means the 4-neighborhood and a nil
// Logger discards output.
type Options struct {
	// Scale is the constant k in info(v) = k * |v - mean|.
	Scale float64

	// InfoMode selects the mean a committed pixel is charged against.
	InfoMode InfoMode

	// Metric overrides the pixel distance. Nil selects the absolute
	// difference for one channel and the Euclidean distance for three.
	Metric Metric

	// RandomSelect shuffles the frontier before picking the next seed.
	// When false the first frontier pixel in row-major order is used.
	RandomSelect bool

	// RandomSeed seeds the frontier shuffle. Zero means DefaultRandomSeed.
	RandomSeed uint64

	// Dilator computes the frontier of the labeled territory.
	Dilator Dilator

	// Start overrides the first seed, which defaults to the image center.
	Start *image.Point

	// MaxRegions stops the run after that many regions. Zero is no limit.
	MaxRegions int

	// Reclaim lets a region grow through pixels of earlier regions when it
	// offers them a lower information and relabels them. Earlier regions
	// may then be split into several pieces. By default growth stops at
	// labeled pixels, so every label is one 4-connected region and is never
	// changed once set.
	Reclaim bool

	// Logger receives one debug event per region and a summary at the end.
	Logger *zerolog.Logger
}

// DefaultOptions returns the settings of the reference behavior: k = 2,
// shuffled frontier seeded with 1.
func DefaultOptions() Options {
	return Options{
		Scale:        DefaultScale,
		RandomSelect: true,
		RandomSeed:   DefaultRandomSeed,
	}
}

// RegionStats describes one grown region.
type RegionStats struct {
	Label int32
	Seed  image.Point

	// Pixels is the number of pixels committed to the region, including
	// any taken over from earlier regions.
	Pixels int

	// Labeled is the number of cells that received this region's label.
	Labeled int

	// Candidates is the number of queue entries pushed while growing.
	Candidates int

	Elapsed time.Duration
}

// Run is one segmentation of one image. It owns the label map and the
// least-information map for its lifetime. A Run is not safe for concurrent
// use; independent images need independent runs.
type Run struct {
	img       *Image
	threshold float64
	opts      Options
	log       zerolog.Logger

	labels   *LabelMap
	least    []float64
	grower   *grower
	selector *SeedSelector

	seed    image.Point
	next    int32
	done    bool
	stats   []RegionStats
	started time.Time
}

// NewRun validates img and prepares a run. An empty image yields a run that
// is already done. Invalid images are reported here, before any growth.
func NewRun(img *Image, threshold float64, opts *Options) (*Run, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = DefaultRandomSeed
	}

	r := &Run{
		img:       img,
		threshold: threshold,
		opts:      o,
		log:       zerolog.Nop(),
		next:      1,
		started:   time.Now(),
	}
	if o.Logger != nil {
		r.log = o.Logger.With().Str("component", "adaptel").Logger()
	}

	if img.Empty() {
		if img != nil && (img.Width < 0 || img.Height < 0) {
			return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrMalformedImage, img.Width, img.Height)
		}
		r.labels = NewLabelMap(0, 0)
		if img != nil {
			r.labels = NewLabelMap(img.Width, img.Height)
		}
		r.done = true
		return r, nil
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	src, err := newSampler(img)
	if err != nil {
		return nil, err
	}

	w, h := img.Width, img.Height
	r.seed = image.Point{X: w / 2, Y: h / 2}
	if o.Start != nil {
		if !o.Start.In(img.Bounds()) {
			return nil, fmt.Errorf("%w: %v not in %v", ErrInvalidSeed, *o.Start, img.Bounds())
		}
		r.seed = *o.Start
	}

	r.labels = NewLabelMap(w, h)
	r.least = make([]float64, w*h)
	for i := range r.least {
		r.least[i] = math.Inf(1)
	}
	model := NewRegionModel(src.channels(), o.Scale, o.Metric, o.InfoMode)
	r.grower = newGrower(src, w, h, threshold, model)
	if !o.Reclaim {
		r.grower.labels = r.labels.Labels
	}
	r.selector = NewSeedSelector(w, h, o.Dilator, o.RandomSelect, o.RandomSeed)
	return r, nil
}

// Step grows one region from the current seed, labels it and looks for the
// next seed. It returns false, without doing anything, once the run is
// done. Between two calls the label map is a valid partial result.
func (r *Run) Step() bool {
	if r.done {
		return false
	}
	t := time.Now()
	label := r.next
	r.next++

	members := r.grower.grow(r.seed.Y*r.img.Width+r.seed.X, r.least)
	labeled := 0
	for _, idx := range members {
		if r.opts.Reclaim || r.labels.Labels[idx] == 0 {
			r.labels.Labels[idx] = label
			labeled++
		}
	}

	st := RegionStats{
		Label:      label,
		Seed:       r.seed,
		Pixels:     len(members),
		Labeled:    labeled,
		Candidates: r.grower.candidates,
		Elapsed:    time.Since(t),
	}
	r.stats = append(r.stats, st)
	r.log.Debug().
		Int32("label", label).
		Int("x", st.Seed.X).
		Int("y", st.Seed.Y).
		Int("pixels", st.Pixels).
		Int("candidates", st.Candidates).
		Dur("elapsed", st.Elapsed).
		Msg("region grown")

	if r.opts.MaxRegions > 0 && len(r.stats) >= r.opts.MaxRegions {
		r.finish("region limit reached")
		return true
	}
	seed, ok := r.selector.Next(r.labels)
	if !ok {
		r.finish("image fully labeled")
		return true
	}
	r.seed = seed
	return true
}

func (r *Run) finish(reason string) {
	r.done = true
	pixels, candidates := 0, 0
	for _, st := range r.stats {
		pixels += st.Pixels
		candidates += st.Candidates
	}
	r.log.Info().
		Int("regions", len(r.stats)).
		Int("pixels", pixels).
		Int("candidates", candidates).
		Int("unlabeled", r.labels.Unlabeled()).
		Dur("elapsed", time.Since(r.started)).
		Msg(reason)
}

// Complete steps the run until it is done. ctx is checked before every
// region; on cancellation the run stops with a valid partial label map and
// ctx.Err() is returned. A stopped run can be resumed by calling Complete
// or Step again.
func (r *Run) Complete(ctx context.Context) error {
	for !r.done {
		if err := ctx.Err(); err != nil {
			r.log.Warn().Err(err).Int("regions", len(r.stats)).Msg("segmentation interrupted")
			return err
		}
		r.Step()
	}
	return nil
}

// Done reports whether the run has finished.
func (r *Run) Done() bool { return r.done }

// Seed returns the seed the next Step will grow from.
func (r *Run) Seed() image.Point { return r.seed }

// Labels returns the label map. It is updated in place by Step.
func (r *Run) Labels() *LabelMap { return r.labels }

// LeastInformation returns a copy of the least-information map.
func (r *Run) LeastInformation() []float64 {
	out := make([]float64, len(r.least))
	copy(out, r.least)
	return out
}

// Stats returns the statistics of every region grown so far.
func (r *Run) Stats() []RegionStats { return r.stats }

// Segment partitions img into adaptels: contiguous regions whose cumulative
// information stays below threshold. A non-positive threshold is accepted
// and makes every region a single pixel. A nil opts selects
// DefaultOptions.
//
// An unsupported or malformed image yields an all-zero label map of the
// image's size together with the error.
func Segment(img *Image, threshold float64, opts *Options) (*LabelMap, error) {
	return SegmentContext(context.Background(), img, threshold, opts)
}

// SegmentContext is Segment with cancellation checked between regions. On
// cancellation it returns the partially labeled map and ctx.Err().
func SegmentContext(ctx context.Context, img *Image, threshold float64, opts *Options) (*LabelMap, error) {
	run, err := NewRun(img, threshold, opts)
	if err != nil {
		if img != nil {
			return NewLabelMap(img.Width, img.Height), err
		}
		return NewLabelMap(0, 0), err
	}
	err = run.Complete(ctx)
	return run.Labels(), err
}
