package allocator

// Rational ...
type Rational struct {
	Nominator   uint64
	Denominator uint64
}

// NewRational ...
func NewRational(nominator uint64, denominator uint64) Rational {
	return Rational{
		Nominator:   nominator,
		Denominator: denominator,
	}
}

// Float64 returns the value of r, or 0 when the denominator is 0.
func (r Rational) Float64() float64 {
	if r.Denominator == 0 {
		return 0
	}
	return float64(r.Nominator) / float64(r.Denominator)
}

