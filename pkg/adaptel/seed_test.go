package adaptel

import (
	"image"
	"testing"

	"adaptels/pkg/morph"
)

// centerLabeled returns a 3x3 label map with only the center labeled
func centerLabeled() *LabelMap {
	lm := NewLabelMap(3, 3)
	lm.Set(1, 1, 1)
	return lm
}

// TestSeedSelectorRowMajor verifies the deterministic scan order
func TestSeedSelectorRowMajor(t *testing.T) {
	s := NewSeedSelector(3, 3, nil, false, DefaultRandomSeed)

	seed, ok := s.Next(centerLabeled())
	if !ok {
		t.Fatal("Expected a seed, got none")
	}
	if seed != (image.Point{X: 1, Y: 0}) {
		t.Errorf("Expected seed (1,0), got %v", seed)
	}
}

// TestSeedSelectorFrontier verifies the shell for both structuring elements
func TestSeedSelectorFrontier(t *testing.T) {
	cases := []struct {
		name    string
		dilator Dilator
		want    int
	}{
		{"cross", morph.Cross{}, 4},
		{"square", morph.Square{}, 8},
	}

	for _, tc := range cases {
		s := NewSeedSelector(3, 3, tc.dilator, true, DefaultRandomSeed)
		seed, ok := s.Next(centerLabeled())
		if !ok {
			t.Fatalf("%s: expected a seed, got none", tc.name)
		}
		if seed == (image.Point{X: 1, Y: 1}) {
			t.Errorf("%s: seed must not be a labeled pixel", tc.name)
		}

		count := 0
		for _, edge := range s.Frontier() {
			if edge {
				count++
			}
		}
		if count != tc.want {
			t.Errorf("%s: expected %d frontier pixels, got %d", tc.name, tc.want, count)
		}
		if !s.Frontier()[seed.Y*3+seed.X] {
			t.Errorf("%s: seed %v is not on the frontier", tc.name, seed)
		}
	}
}

// TestSeedSelectorExhausted verifies the terminal condition
func TestSeedSelectorExhausted(t *testing.T) {
	full := NewLabelMap(2, 2)
	for i := range full.Labels {
		full.Labels[i] = 1
	}

	for _, random := range []bool{false, true} {
		s := NewSeedSelector(2, 2, nil, random, DefaultRandomSeed)
		if _, ok := s.Next(full); ok {
			t.Errorf("random=%v: expected no seed on a fully labeled map", random)
		}
	}
}

// TestSeedSelectorReproducible verifies that equal random seeds pick equal seeds
func TestSeedSelectorReproducible(t *testing.T) {
	lm := NewLabelMap(9, 9)
	for y := 3; y < 6; y++ {
		for x := 3; x < 6; x++ {
			lm.Set(x, y, 1)
		}
	}

	a := NewSeedSelector(9, 9, nil, true, 42)
	b := NewSeedSelector(9, 9, nil, true, 42)
	for i := 0; i < 10; i++ {
		sa, _ := a.Next(lm)
		sb, _ := b.Next(lm)
		if sa != sb {
			t.Fatalf("Call %d: expected equal seeds, got %v and %v", i, sa, sb)
		}
	}
}
