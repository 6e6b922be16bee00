package pitch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNotPraatPitch is returned when a file is not a Praat Pitch text object.
var ErrNotPraatPitch = errors.New("not a Praat Pitch text file")

// ReadPraatPitchFile parses a Praat Pitch object saved as text.
func ReadPraatPitchFile(path string) (*Contour, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePraatPitch(f)
}

// ParsePraatPitch reads the short or long text serialisation of a Praat
// Pitch object. The first candidate of each frame is the selected pitch;
// candidates above the ceiling are treated as unvoiced.
func ParsePraatPitch(r io.Reader) (*Contour, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		values   []float64
		isPitch  bool
		fileType bool
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "File type"):
			fileType = strings.Contains(line, "ooTextFile")
			continue
		case strings.HasPrefix(line, "Object class"):
			isPitch = strings.Contains(line, `"Pitch`)
			continue
		case strings.HasSuffix(line, ":"):
			// "frame []:", "frame [3]:", "candidate [1]:"
			continue
		}
		if key, value, ok := strings.Cut(line, "="); ok {
			if strings.Contains(key, "[]") {
				continue
			}
			line = strings.TrimSpace(value)
		}
		line = strings.Trim(line, `"`)
		if line == "<exists>" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: unexpected token %q", ErrNotPraatPitch, line)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !fileType || !isPitch {
		return nil, ErrNotPraatPitch
	}
	return decodePitchValues(values)
}

// decodePitchValues walks xmin, xmax, nx, dx, x1, ceiling, maxnCandidates and
// then per frame: intensity, nCandidates, (frequency, strength) pairs.
func decodePitchValues(v []float64) (*Contour, error) {
	const headerLen = 7
	if len(v) < headerLen {
		return nil, fmt.Errorf("%w: truncated header", ErrNotPraatPitch)
	}
	nx := int(v[2])
	dx, x1, ceiling := v[3], v[4], v[5]
	pos := headerLen

	c := &Contour{
		Times:       make([]float64, 0, nx),
		Frequencies: make([]float64, 0, nx),
	}
	for i := range nx {
		if pos+2 > len(v) {
			return nil, fmt.Errorf("%w: truncated at frame %d", ErrNotPraatPitch, i+1)
		}
		nCandidates := int(v[pos+1])
		pos += 2
		if nCandidates < 0 || pos+2*nCandidates > len(v) {
			return nil, fmt.Errorf("%w: bad candidate count at frame %d", ErrNotPraatPitch, i+1)
		}
		freq := 0.0
		if nCandidates > 0 {
			freq = v[pos]
		}
		if freq < 0 || (ceiling > 0 && freq > ceiling) {
			freq = 0
		}
		pos += 2 * nCandidates

		c.Times = append(c.Times, round(x1+float64(i)*dx, 6))
		c.Frequencies = append(c.Frequencies, freq)
	}
	return c, nil
}
