package records

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

var fixedNow = time.Date(2026, 4, 12, 14, 30, 0, 0, time.UTC)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo := NewRepository(t.TempDir(), logging.NewDiscardLogger())
	repo.SetClock(func() time.Time { return fixedNow })
	return repo
}

func yamlFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	return matches
}

func writeRecord(t *testing.T, dir, name, userID string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("user_id: "+userID+"\ncreated_at: \"20250101_0000\"\n"), 0o644))
	return path
}

func TestResolveCreatesOnceAndReuses(t *testing.T) {
	repo := newRepo(t)

	first, err := repo.Resolve("p01")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, filepath.Join(repo.Dir(), "p01_20260412_1430.yaml"), first.Path)

	second, err := repo.Resolve("p01")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Path, second.Path)

	repo.SetClock(func() time.Time { return fixedNow.Add(48 * time.Hour) })
	third, err := repo.Resolve("p01")
	require.NoError(t, err)
	assert.Equal(t, first.Path, third.Path)

	assert.Len(t, yamlFiles(t, repo.Dir()), 1)

	rec, err := repo.Load(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "p01", rec.UserID)
	assert.Equal(t, "20260412_1430", rec.CreatedAt)
}

func TestResolveConcurrentCallsCreateOneFile(t *testing.T) {
	repo := newRepo(t)

	var wg sync.WaitGroup
	paths := make([]string, 16)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := repo.Resolve("p02")
			if assert.NoError(t, err) {
				paths[i] = res.Path
			}
		}(i)
	}
	wg.Wait()

	for _, p := range paths {
		assert.Equal(t, paths[0], p)
	}
	assert.Len(t, yamlFiles(t, repo.Dir()), 1)
}

func TestResolvePrefersExactFile(t *testing.T) {
	repo := newRepo(t)
	writeRecord(t, repo.Dir(), "p03_20260101_0900.yaml", "p03")
	exact := writeRecord(t, repo.Dir(), "p03.yaml", "p03")

	res, err := repo.Resolve("p03")
	require.NoError(t, err)
	assert.Equal(t, exact, res.Path)
	assert.False(t, res.Created)
}

func TestResolvePicksMostRecentTimestampedFile(t *testing.T) {
	repo := newRepo(t)
	writeRecord(t, repo.Dir(), "p04_20260101_0900.yaml", "p04")
	latest := writeRecord(t, repo.Dir(), "p04_20260301_0800.yaml", "p04")
	writeRecord(t, repo.Dir(), "p04_20260201_1000.yaml", "p04")

	res, err := repo.Resolve("p04")
	require.NoError(t, err)
	assert.Equal(t, latest, res.Path)
}

func TestResolveIgnoresFilesOwnedByOtherUsers(t *testing.T) {
	repo := newRepo(t)
	// "p05_20260101_0900" is itself a valid user id; its record must not be
	// mistaken for p05's.
	writeRecord(t, repo.Dir(), "p05_20260101_0900.yaml", "p05_20260101_0900")
	writeRecord(t, repo.Dir(), "p05.yaml", "someone-else")

	res, err := repo.Resolve("p05")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "p05_20260412_1430.yaml", filepath.Base(res.Path))
}

func TestResolveRejectsInvalidIDs(t *testing.T) {
	repo := newRepo(t)
	for _, id := range []string{"", "..", "../escape", "a/b"} {
		_, err := repo.Resolve(id)
		assert.ErrorIs(t, err, record.ErrInvalidUserID, id)
	}
	assert.Empty(t, yamlFiles(t, repo.Dir()))
}

func TestAppendEvents(t *testing.T) {
	repo := newRepo(t)
	res, err := repo.Resolve("p06")
	require.NoError(t, err)

	require.NoError(t, repo.Append(res.Path, "p06", record.TraceEvent{
		Timestamp: fixedNow,
		SessionID: "default",
		Index:     2,
		FileName:  "B.wav",
		Trace:     map[string]any{"points": []any{1, 2, 3}},
	}))
	require.NoError(t, repo.Append(res.Path, "p06", record.ButtonEvent{
		Timestamp:  fixedNow,
		SessionID:  "default",
		Index:      2,
		FileName:   "B.wav",
		ButtonName: "replay",
	}))

	rec, err := repo.Load(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "p06", rec.UserID)
	require.Len(t, rec.Traces, 1)
	assert.Equal(t, 2, rec.Traces[0].Index)
	assert.Equal(t, "B.wav", rec.Traces[0].FileName)
	require.Len(t, rec.ButtonLogs, 1)
	assert.Equal(t, "replay", rec.ButtonLogs[0].ButtonName)
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	repo := newRepo(t)
	res, err := repo.Resolve("p07")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 25 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(res.Path, "p07", record.ButtonEvent{Index: i, ButtonName: "next"}))
		}(i)
	}
	wg.Wait()

	rec, err := repo.Load(res.Path)
	require.NoError(t, err)
	assert.Len(t, rec.ButtonLogs, 25)
}

func TestAppendRecreatesMissingRecordForSameUser(t *testing.T) {
	repo := newRepo(t)
	res, err := repo.Resolve("p08")
	require.NoError(t, err)
	require.NoError(t, os.Remove(res.Path))

	require.NoError(t, repo.Append(res.Path, "p08", record.ButtonEvent{ButtonName: "next"}))

	rec, err := repo.Load(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "p08", rec.UserID)
	assert.Equal(t, "20260412_1430", rec.CreatedAt)
	assert.Len(t, rec.ButtonLogs, 1)

	again, err := repo.Resolve("p08")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Path, again.Path)
	assert.Len(t, yamlFiles(t, repo.Dir()), 1)
}
