package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(t.TempDir(), logging.NewDiscardLogger())
}

func TestSaveNumbersFromExistingCount(t *testing.T) {
	repo := newRepo(t)
	userDir := repo.UserDir("p01")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	for _, name := range []string{"old1.wav", "old2.webm", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(userDir, name), []byte("x"), 0o644))
	}

	saved, err := repo.Save("p01", "", "clip.webm", strings.NewReader("audio"))
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Sequence)
	assert.Equal(t, "p01_recording_3.webm", saved.File)
	assert.Equal(t, int64(5), saved.Size)
	assert.FileExists(t, saved.Path)

	next, err := repo.Save("p01", "", "clip.webm", strings.NewReader("audio"))
	require.NoError(t, err)
	assert.Equal(t, 4, next.Sequence)
}

func TestSaveUsesBaseAndDefaultExtension(t *testing.T) {
	repo := newRepo(t)
	saved, err := repo.Save("p02", "p02_20260412_1430", "blob", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "p02_20260412_1430_recording_1.wav", saved.File)
	assert.Equal(t, filepath.Join(repo.UserDir("p02"), saved.File), saved.Path)
}

func TestSaveRejectsEmptyPayload(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Save("p03", "", "empty.wav", strings.NewReader(""))
	assert.ErrorIs(t, err, record.ErrEmptyUpload)

	entries, err := os.ReadDir(repo.UserDir("p03"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsInvalidUser(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Save("../x", "", "a.wav", strings.NewReader("data"))
	assert.ErrorIs(t, err, record.ErrInvalidUserID)
}

func TestConcurrentSavesGetDistinctSequences(t *testing.T) {
	repo := newRepo(t)

	const n = 20
	var wg sync.WaitGroup
	seqs := make(chan int, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := repo.Save("p04", "", "take.ogg", strings.NewReader("payload"))
			if assert.NoError(t, err) {
				seqs <- saved.Sequence
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := map[int]bool{}
	for s := range seqs {
		assert.False(t, seen[s], "duplicate sequence %d", s)
		seen[s] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".mp3", Extension("a.MP3"))
	assert.Equal(t, ".m4a", Extension("voice.m4a"))
	assert.Equal(t, ".wav", Extension("x.flac"))
	assert.Equal(t, ".wav", Extension(""))
}
