// Package corpus defines the stimulus playlist served to participants.
package corpus

import (
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"
)

// Playlist is the ordered, immutable list of stimulus filenames for the
// lifetime of the process. Only a session's position in it changes.
type Playlist struct {
	dir   string
	files []string
}

// NewPlaylist wraps an already ordered list of filenames found in dir.
func NewPlaylist(dir string, files []string) *Playlist {
	owned := make([]string, len(files))
	copy(owned, files)
	return &Playlist{dir: dir, files: owned}
}

// Len returns the number of stimuli.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.files)
}

// At returns the filename at index i.
func (p *Playlist) At(i int) (string, bool) {
	if p == nil || i < 0 || i >= len(p.files) {
		return "", false
	}
	return p.files[i], true
}

// Files returns a copy of the ordered filenames.
func (p *Playlist) Files() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.files))
	copy(out, p.files)
	return out
}

// Dir returns the corpus directory.
func (p *Playlist) Dir() string {
	if p == nil {
		return ""
	}
	return p.dir
}

// Path returns the on-disk path of a stimulus filename.
func (p *Playlist) Path(name string) string {
	return filepath.Join(p.Dir(), name)
}

// Order arranges stimulus filenames for playback. Names starting with prefix
// come first in lexicographic order. Of the remaining names, when there are
// more than fixedHead of them the first fixedHead keep their given order and
// the rest are shuffled; otherwise all of them are shuffled.
func Order(names []string, prefix string, fixedHead int, rng *rand.Rand) []string {
	var prefixed, others []string
	for _, name := range names {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			prefixed = append(prefixed, name)
		} else {
			others = append(others, name)
		}
	}
	sort.Strings(prefixed)

	shuffleFrom := 0
	if len(others) > fixedHead {
		shuffleFrom = fixedHead
	}
	tail := others[shuffleFrom:]
	rng.Shuffle(len(tail), func(i, j int) { tail[i], tail[j] = tail[j], tail[i] })

	ordered := make([]string, 0, len(names))
	ordered = append(ordered, prefixed...)
	ordered = append(ordered, others...)
	return ordered
}
