package pitch

import "math"

// TrackerParams configures the autocorrelation tracker.
type TrackerParams struct {
	MinFrequency     float64
	MaxFrequency     float64
	TimeStep         float64
	VoicingThreshold float64
	SilenceThreshold float64
}

// DefaultTrackerParams mirrors Praat's default pitch range.
func DefaultTrackerParams() TrackerParams {
	return TrackerParams{
		MinFrequency:     75,
		MaxFrequency:     600,
		TimeStep:         0.01,
		VoicingThreshold: 0.45,
		SilenceThreshold: 0.03,
	}
}

const (
	analysisRate = 11025
	octaveCost   = 0.01
)

// Track estimates a pitch contour with normalised autocorrelation over
// windows three periods of the lowest frequency long. Frames that are
// quieter than SilenceThreshold of the global peak, or whose best
// correlation is below VoicingThreshold, are unvoiced (0 Hz).
func Track(sig *Signal, p TrackerParams) *Contour {
	samples, rate := downsample(sig.Samples, sig.SampleRate)
	if rate == 0 || len(samples) == 0 || p.MinFrequency <= 0 || p.MaxFrequency <= p.MinFrequency {
		return &Contour{}
	}

	window := int(math.Ceil(3 * float64(rate) / p.MinFrequency))
	hop := max(1, int(math.Round(p.TimeStep*float64(rate))))
	minLag := max(2, int(math.Floor(float64(rate)/p.MaxFrequency)))
	maxLag := int(math.Ceil(float64(rate) / p.MinFrequency))

	var globalPeak float64
	for _, s := range samples {
		globalPeak = math.Max(globalPeak, math.Abs(s))
	}

	c := &Contour{}
	if len(samples) < window {
		return c
	}
	frame := make([]float64, window)
	for start := 0; start+window <= len(samples); start += hop {
		t := (float64(start) + float64(window)/2) / float64(rate)
		c.Times = append(c.Times, t)
		c.Frequencies = append(c.Frequencies, estimate(samples[start:start+window], frame, rate, minLag, maxLag, globalPeak, p))
	}
	return c
}

func estimate(src, frame []float64, rate, minLag, maxLag int, globalPeak float64, p TrackerParams) float64 {
	var mean, localPeak float64
	for _, s := range src {
		mean += s
		localPeak = math.Max(localPeak, math.Abs(s))
	}
	if globalPeak == 0 || localPeak < p.SilenceThreshold*globalPeak {
		return 0
	}
	mean /= float64(len(src))
	for i, s := range src {
		frame[i] = s - mean
	}

	n := len(frame)
	if maxLag >= n/2 {
		maxLag = n/2 - 1
	}
	if minLag >= maxLag {
		return 0
	}

	corr := make([]float64, maxLag-minLag+3)
	for lag := minLag - 1; lag <= maxLag+1; lag++ {
		corr[lag-minLag+1] = normalisedCorrelation(frame, lag)
	}

	bestLag, bestScore, bestOffset := -1, math.Inf(-1), 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		y0, y1, y2 := corr[lag-minLag], corr[lag-minLag+1], corr[lag-minLag+2]
		if y1 < y0 || y1 < y2 {
			continue
		}
		// parabolic refinement around the peak
		offset := 0.0
		if d := y0 - 2*y1 + y2; d != 0 {
			offset = math.Max(-0.5, math.Min(0.5, 0.5*(y0-y2)/d))
		}
		peak := y1 - 0.25*(y0-y2)*offset
		if peak < p.VoicingThreshold {
			continue
		}
		// longer lags pay an octave cost so subharmonics do not win
		score := peak - octaveCost*math.Log2(float64(lag)/float64(minLag))
		if score > bestScore {
			bestLag, bestScore, bestOffset = lag, score, offset
		}
	}
	if bestLag < 0 {
		return 0
	}
	return float64(rate) / (float64(bestLag) + bestOffset)
}

func normalisedCorrelation(x []float64, lag int) float64 {
	if lag <= 0 || lag >= len(x) {
		return 0
	}
	var sum, e0, e1 float64
	for i := 0; i+lag < len(x); i++ {
		a, b := x[i], x[i+lag]
		sum += a * b
		e0 += a * a
		e1 += b * b
	}
	if e0 == 0 || e1 == 0 {
		return 0
	}
	return sum / math.Sqrt(e0*e1)
}

// downsample reduces high sample rates by an integer boxcar factor so the
// analysis rate stays near 11 kHz.
func downsample(samples []float64, rate int) ([]float64, int) {
	factor := rate / analysisRate
	if factor < 2 {
		return samples, rate
	}
	out := make([]float64, len(samples)/factor)
	for i := range out {
		var sum float64
		for _, s := range samples[i*factor : (i+1)*factor] {
			sum += s
		}
		out[i] = sum / float64(factor)
	}
	return out, rate / factor
}
