package adaptel

import (
	"image"

	"golang.org/x/exp/rand"

	"adaptels/pkg/morph"
)

// DefaultRandomSeed seeds the frontier shuffle when none is configured.
const DefaultRandomSeed uint64 = 1

// Dilator dilates a row-major boolean mask by one structuring-element
// step. dst and src hold width*height cells and do not alias.
type Dilator interface {
	Dilate(dst, src []bool, width, height int)
}

// SeedSelector picks the next growth seed on the frontier of the labeled
// territory: the unlabeled pixels that touch a labeled one.
type SeedSelector struct {
	width   int
	height  int
	random  bool
	rng     *rand.Rand
	dilator Dilator

	mask    []bool
	dilated []bool
	shell   []bool

	candidates []int
}

// NewSeedSelector returns a selector for label maps of the given size. When
// random is set the frontier is shuffled with a generator seeded by seed,
// otherwise the first frontier pixel in row-major order wins. A nil
// dilator selects the 4-neighborhood.
func NewSeedSelector(width, height int, dilator Dilator, random bool, seed uint64) *SeedSelector {
	if dilator == nil {
		dilator = morph.Cross{}
	}
	n := width * height
	return &SeedSelector{
		width:      width,
		height:     height,
		random:     random,
		rng:        rand.New(rand.NewSource(seed)),
		dilator:    dilator,
		mask:       make([]bool, n),
		dilated:    make([]bool, n),
		shell:      make([]bool, n),
		candidates: make([]int, 0, n),
	}
}

// Next returns the next seed as an (x, y) point. ok is false when the
// frontier is empty, which ends the segmentation.
func (s *SeedSelector) Next(labels *LabelMap) (seed image.Point, ok bool) {
	for i, l := range labels.Labels {
		s.mask[i] = l != 0
	}
	morph.Shell(s.dilator, s.shell, s.mask, s.dilated, s.width, s.height)

	s.candidates = s.candidates[:0]
	for i, edge := range s.shell {
		if !edge {
			continue
		}
		if !s.random {
			return s.point(i), true
		}
		s.candidates = append(s.candidates, i)
	}
	if len(s.candidates) == 0 {
		return image.Point{}, false
	}
	s.rng.Shuffle(len(s.candidates), func(i, j int) {
		s.candidates[i], s.candidates[j] = s.candidates[j], s.candidates[i]
	})
	return s.point(s.candidates[0]), true
}

// Frontier returns the frontier computed by the last call to Next, for
// inspection. The slice is overwritten by the next call and must not be
// modified.
func (s *SeedSelector) Frontier() []bool {
	return s.shell
}

func (s *SeedSelector) point(idx int) image.Point {
	return image.Point{X: idx % s.width, Y: idx / s.width}
}
