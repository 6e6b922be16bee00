// Package pitch extracts pitch contours from stimulus recordings and renders
// them as JSON and as a resynthesised sine wave.
package pitch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Params configures extraction and rendering.
type Params struct {
	Tracker           TrackerParams
	InterpolationStep float64
	SynthSampleRate   int
	SynthAmplitude    float64
}

// Analysis is the JSON document served for a stimulus.
type Analysis struct {
	FileName     string    `json:"fileName"`
	Duration     float64   `json:"duration"`
	SampleRate   int       `json:"sampleRate"`
	MinFrequency float64   `json:"minFrequency"`
	MaxFrequency float64   `json:"maxFrequency"`
	Source       string    `json:"source"`
	Times        []float64 `json:"times"`
	Frequencies  []float64 `json:"frequencies"`
	Segments     []Segment `json:"segments"`
}

const (
	SourcePraat           = "praat"
	SourceAutocorrelation = "autocorrelation"
)

// SidecarPath returns the Praat Pitch file expected next to a stimulus.
func SidecarPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".Pitch"
}

// Analyze reads the stimulus at audioPath and builds its Analysis. A Praat
// sidecar, when present and readable, supplies the contour; otherwise it is
// tracked from the audio.
func Analyze(audioPath string, p Params) (*Analysis, error) {
	sig, err := ReadWAVFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(audioPath), err)
	}

	contour, source, err := contourFor(audioPath, sig, p)
	if err != nil {
		return nil, err
	}

	lo, hi := contour.Range()
	a := &Analysis{
		FileName:     filepath.Base(audioPath),
		Duration:     round(sig.Duration(), 6),
		SampleRate:   sig.SampleRate,
		MinFrequency: round(lo, 3),
		MaxFrequency: round(hi, 3),
		Source:       source,
		Times:        make([]float64, len(contour.Times)),
		Frequencies:  make([]float64, len(contour.Frequencies)),
		Segments:     contour.InterpolatedSegments(p.InterpolationStep),
	}
	for i := range contour.Times {
		a.Times[i] = round(contour.Times[i], 6)
		a.Frequencies[i] = round(contour.Frequencies[i], 3)
	}
	return a, nil
}

func contourFor(audioPath string, sig *Signal, p Params) (*Contour, string, error) {
	sidecar := SidecarPath(audioPath)
	c, err := ReadPraatPitchFile(sidecar)
	switch {
	case err == nil:
		return c, SourcePraat, nil
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, ErrNotPraatPitch):
		// fall back to tracking
	default:
		return nil, "", fmt.Errorf("failed to read %s: %w", filepath.Base(sidecar), err)
	}
	return Track(sig, p.Tracker), SourceAutocorrelation, nil
}

// Render synthesises the audio rendering of an analysis.
func Render(a *Analysis, p Params) []float64 {
	return Synthesize(a.Segments, a.Duration, p.SynthSampleRate, p.SynthAmplitude)
}

// StimulusNewer reports whether src was modified after artifact, or the
// artifact is missing.
func StimulusNewer(src, artifact string) bool {
	a, err := os.Stat(artifact)
	if err != nil {
		return true
	}
	s, err := os.Stat(src)
	if err != nil {
		return true
	}
	if sidecar, err := os.Stat(SidecarPath(src)); err == nil && sidecar.ModTime().After(a.ModTime()) {
		return true
	}
	return s.ModTime().After(a.ModTime())
}
