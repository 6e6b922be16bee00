// Package corpus scans the stimulus directory and builds the playlist.
package corpus

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/corpus"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

// Options control playlist ordering.
type Options struct {
	Prefix    string
	FixedHead int
	Seed      int64 // zero seeds from the clock
}

// NewRand returns the generator used for shuffling.
func (o Options) NewRand() *rand.Rand {
	seed := uint64(o.Seed)
	if o.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x5bd1e9955bd1e995))
}

// ListStimuli returns the .wav filenames in dir in directory-listing order.
// A missing directory yields no names and no error.
func ListStimuli(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(extOf(entry.Name()), ".wav") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// LoadPlaylist scans dir and orders its stimuli. Unreadable or empty
// directories produce an empty playlist so the server can still start.
func LoadPlaylist(dir string, opts Options, logger *logging.ChanneledLogger) *corpus.Playlist {
	start := time.Now()
	names, err := ListStimuli(dir)
	if err != nil {
		logger.Corpus().Error("Failed to read corpus directory", "dir", dir, "error", err)
		return corpus.NewPlaylist(dir, nil)
	}
	if len(names) == 0 {
		logger.Corpus().Warn("Corpus directory has no .wav stimuli", "dir", dir)
		return corpus.NewPlaylist(dir, nil)
	}

	ordered := corpus.Order(names, opts.Prefix, opts.FixedHead, opts.NewRand())
	logger.Corpus().Info("Playlist loaded",
		"dir", dir, "files", len(ordered), "prefix", opts.Prefix, "seeded", opts.Seed != 0, "duration", time.Since(start))
	return corpus.NewPlaylist(dir, ordered)
}
