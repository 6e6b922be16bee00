package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644))
}

func TestLoadPlaylistOrdersWavFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"AA2.wav", "AA1.wav", "B.wav", "C.wav", "D.wav", "E.WAV", "notes.txt"} {
		touch(t, dir, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755))

	p := LoadPlaylist(dir, Options{Prefix: "AA", FixedHead: 2, Seed: 42}, logging.NewDiscardLogger())
	files := p.Files()
	require.Len(t, files, 6)
	assert.Equal(t, []string{"AA1.wav", "AA2.wav", "B.wav", "C.wav"}, files[:4])
	assert.ElementsMatch(t, []string{"D.wav", "E.WAV"}, files[4:])
	assert.Equal(t, dir, p.Dir())
}

func TestLoadPlaylistSameSeedSameOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav", "f.wav", "g.wav"} {
		touch(t, dir, name)
	}
	opts := Options{Prefix: "AA", FixedHead: 2, Seed: 7}
	first := LoadPlaylist(dir, opts, logging.NewDiscardLogger()).Files()
	second := LoadPlaylist(dir, opts, logging.NewDiscardLogger()).Files()
	assert.Equal(t, first, second)
}

func TestLoadPlaylistMissingOrEmptyDir(t *testing.T) {
	logger := logging.NewDiscardLogger()
	assert.Zero(t, LoadPlaylist(filepath.Join(t.TempDir(), "nope"), Options{}, logger).Len())
	assert.Zero(t, LoadPlaylist(t.TempDir(), Options{}, logger).Len())
}
