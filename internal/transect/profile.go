package transect

// ProfileSummary reduces a sampled cross-section to its change totals.
//
// Areas are in station-distance times change units (a vertical slice
// through the change surface). CutArea and FillArea are both reported as
// non-negative magnitudes; NetArea is fill minus cut. Intervals touching an
// invalid sample are excluded from every accumulator: a gap, not an assumed
// flat segment, so NetArea of a profile with holes is the integral over the
// covered intervals only.
type ProfileSummary struct {
	NetArea  float64
	CutArea  float64
	FillArea float64

	MaxChange float64
	MinChange float64

	// ValidSampleCount is the number of stations with a valid change
	// value; callers use it to judge confidence in the summary. Max/Min
	// are meaningless when it is zero.
	ValidSampleCount int

	// Crossings holds the station distances where the change profile
	// crosses zero between two valid samples of opposite sign.
	Crossings []float64
}

// Summarize integrates the change profile over station distance with the
// trapezoidal rule, splitting cut (negative) and fill (positive)
// contributions. A trapezoid spanning a sign change is split at the
// interpolated zero crossing so neither accumulator absorbs the other's
// area. The input profile is never mutated.
func Summarize(p Profile) ProfileSummary {
	var s ProfileSummary
	first := true
	for _, smp := range p {
		if !smp.ChangeValid {
			continue
		}
		s.ValidSampleCount++
		if first || smp.Change > s.MaxChange {
			s.MaxChange = smp.Change
		}
		if first || smp.Change < s.MinChange {
			s.MinChange = smp.Change
		}
		first = false
	}

	for k := 1; k < len(p); k++ {
		a, b := p[k-1], p[k]
		if !a.ChangeValid || !b.ChangeValid {
			continue
		}
		dx := b.Station - a.Station
		if dx <= 0 {
			continue
		}

		c0, c1 := a.Change, b.Change
		if c0*c1 < 0 {
			// Sign change: split the trapezoid at the zero crossing.
			f := c0 / (c0 - c1)
			cross := a.Station + f*dx
			s.Crossings = append(s.Crossings, cross)
			accumulate(&s, c0, 0, f*dx)
			accumulate(&s, 0, c1, (1-f)*dx)
			continue
		}
		accumulate(&s, c0, c1, dx)
	}
	return s
}

// accumulate adds one same-sign trapezoid to the summary.
func accumulate(s *ProfileSummary, c0, c1, dx float64) {
	area := 0.5 * (c0 + c1) * dx
	s.NetArea += area
	if area >= 0 {
		s.FillArea += area
	} else {
		s.CutArea -= area
	}
}
