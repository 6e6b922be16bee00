package pitch

import "math"

const fadeSeconds = 0.005

// Synthesize renders a sine wave that follows the segments, silent between
// them. Phase runs continuously across the whole signal and each segment is
// faded in and out over 5 ms.
func Synthesize(segments []Segment, duration float64, sampleRate int, amplitude float64) []float64 {
	if sampleRate <= 0 || duration <= 0 {
		return nil
	}
	n := int(math.Ceil(duration * float64(sampleRate)))
	out := make([]float64, n)

	var phase float64
	seg := 0
	for i := range n {
		t := float64(i) / float64(sampleRate)
		for seg < len(segments) && t > segments[seg].End() {
			seg++
		}
		if seg >= len(segments) {
			break
		}
		s := segments[seg]
		if len(s.Times) == 0 || t < s.Start() {
			continue
		}

		f := s.At(t)
		phase += 2 * math.Pi * f / float64(sampleRate)
		if phase > 2*math.Pi {
			phase = math.Mod(phase, 2*math.Pi)
		}
		gain := math.Min(1, math.Min((t-s.Start())/fadeSeconds, (s.End()-t)/fadeSeconds))
		out[i] = amplitude * gain * math.Sin(phase)
	}
	return out
}
