package simulate

import (
	"golang.org/x/exp/rand"
)

// sizeSampler draws request sizes from an exponential distribution shifted to
// min and truncated at max, so small requests dominate with a long tail.
type sizeSampler struct {
	rng *rand.Rand
	min uint32
	max uint32
}

func newSizeSampler(rng *rand.Rand, min uint32, max uint32) *sizeSampler {
	return &sizeSampler{
		rng: rng,
		min: min,
		max: max,
	}
}

func (s *sizeSampler) next() uint32 {
	if s.min == s.max {
		return s.min
	}
	mean := float64(s.max-s.min) / 4
	for {
		v := float64(s.min) + s.rng.ExpFloat64()*mean
		if v <= float64(s.max) {
			return uint32(v)
		}
	}
}
