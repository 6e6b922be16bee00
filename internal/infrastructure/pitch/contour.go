package pitch

import "math"

// Contour is a pitch track sampled at frame times. A frequency of 0 marks an
// unvoiced frame.
type Contour struct {
	Times       []float64
	Frequencies []float64
}

// Segment is a run of voiced frames.
type Segment struct {
	Times       []float64 `json:"times"`
	Frequencies []float64 `json:"frequencies"`
}

// Start returns the first time of the segment.
func (s Segment) Start() float64 { return s.Times[0] }

// End returns the last time of the segment.
func (s Segment) End() float64 { return s.Times[len(s.Times)-1] }

// At linearly interpolates the segment frequency at t, clamped to its ends.
func (s Segment) At(t float64) float64 {
	n := len(s.Times)
	if t <= s.Times[0] {
		return s.Frequencies[0]
	}
	if t >= s.Times[n-1] {
		return s.Frequencies[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if s.Times[mid] <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	span := s.Times[hi] - s.Times[lo]
	if span == 0 {
		return s.Frequencies[lo]
	}
	frac := (t - s.Times[lo]) / span
	return s.Frequencies[lo] + frac*(s.Frequencies[hi]-s.Frequencies[lo])
}

// VoicedSegments splits the contour into runs of voiced frames. Runs with
// fewer than two frames are dropped.
func (c *Contour) VoicedSegments() []Segment {
	var (
		segments []Segment
		current  Segment
	)
	flush := func() {
		if len(current.Times) >= 2 {
			segments = append(segments, current)
		}
		current = Segment{}
	}
	for i, f := range c.Frequencies {
		if f > 0 {
			current.Times = append(current.Times, c.Times[i])
			current.Frequencies = append(current.Frequencies, f)
			continue
		}
		flush()
	}
	flush()
	return segments
}

// Resample places the segment on a uniform grid of step seconds starting at
// its first frame.
func (s Segment) Resample(step float64) Segment {
	if step <= 0 || len(s.Times) < 2 {
		return s
	}
	start, end := s.Start(), s.End()
	n := int(math.Floor((end-start)/step+1e-9)) + 1
	out := Segment{
		Times:       make([]float64, 0, n),
		Frequencies: make([]float64, 0, n),
	}
	for i := range n {
		t := start + float64(i)*step
		out.Times = append(out.Times, round(t, 6))
		out.Frequencies = append(out.Frequencies, round(s.At(t), 3))
	}
	return out
}

// InterpolatedSegments returns the voiced segments resampled on a step grid.
func (c *Contour) InterpolatedSegments(step float64) []Segment {
	raw := c.VoicedSegments()
	out := make([]Segment, 0, len(raw))
	for _, seg := range raw {
		out = append(out, seg.Resample(step))
	}
	return out
}

// Range returns the lowest and highest voiced frequency, or zeros when the
// contour has no voiced frames.
func (c *Contour) Range() (lo, hi float64) {
	for _, f := range c.Frequencies {
		if f <= 0 {
			continue
		}
		if lo == 0 || f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return lo, hi
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
