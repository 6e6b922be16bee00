package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/corpus"
)

func playlist(names ...string) *corpus.Playlist {
	return corpus.NewPlaylist("/corpus", names)
}

func TestAdvanceNTimesReturnsToStart(t *testing.T) {
	p := playlist("a.wav", "b.wav", "c.wav", "d.wav")
	s := New("s1", 0, time.Now())

	_, err := s.Advance(p)
	require.NoError(t, err)
	start := s.Progress(p).CurrentIndex

	for range p.Len() {
		_, err := s.Advance(p)
		require.NoError(t, err)
	}
	assert.Equal(t, start, s.Progress(p).CurrentIndex)
}

func TestAdvanceWraps(t *testing.T) {
	p := playlist("a.wav", "b.wav")
	s := New("s1", 0, time.Now())

	idx, err := s.Advance(p)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = s.Advance(p)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestEmptyPlaylist(t *testing.T) {
	p := playlist()
	s := New("s1", 0, time.Now())

	_, err := s.Advance(p)
	assert.ErrorIs(t, err, ErrEmptyPlaylist)

	_, _, err = s.Current(p)
	assert.ErrorIs(t, err, ErrEmptyPlaylist)

	assert.Equal(t, Progress{TotalFiles: 0, CurrentIndex: 0}, s.Progress(p))

	idx, name := s.Position(p)
	assert.Zero(t, idx)
	assert.Empty(t, name)
}

func TestProgressStaysInRange(t *testing.T) {
	p := playlist("a.wav", "b.wav", "c.wav")
	s := New("s1", 0, time.Now())
	for range 10 {
		_, _ = s.Advance(p)
		prog := s.Progress(p)
		assert.Equal(t, 3, prog.TotalFiles)
		assert.GreaterOrEqual(t, prog.CurrentIndex, 0)
		assert.Less(t, prog.CurrentIndex, prog.TotalFiles)
	}
}

func TestConcurrentAdvanceIsAtomic(t *testing.T) {
	p := playlist("a.wav", "b.wav", "c.wav", "d.wav", "e.wav")
	s := New("s1", 0, time.Now())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Advance(p)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50%5, s.Progress(p).CurrentIndex)
}

func TestRequireUser(t *testing.T) {
	s := New("s1", 0, time.Now())
	_, _, err := s.RequireUser()
	assert.ErrorIs(t, err, ErrNoActiveUser)

	s.BindUser("p01", "/data/p01.yaml")
	user, file, err := s.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, "p01", user)
	assert.Equal(t, "/data/p01.yaml", file)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New("s1", time.Minute, now)
	assert.False(t, s.Expired(now.Add(30*time.Second)))
	assert.True(t, s.Expired(now.Add(2*time.Minute)))

	s.Touch(now.Add(50*time.Second), time.Minute)
	assert.False(t, s.Expired(now.Add(100*time.Second)))

	permanent := New(DefaultID, 0, now)
	assert.False(t, permanent.Expired(now.Add(24*365*time.Hour)))
	assert.True(t, permanent.ExpiresAt().IsZero())
}

func TestSnapshot(t *testing.T) {
	p := playlist("a.wav", "b.wav")
	s := New("s1", 0, time.Now())
	s.BindUser("p01", "/data/p01.yaml")
	_, _ = s.Advance(p)

	snap := s.Snapshot(p)
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, "p01", snap.UserID)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Equal(t, 2, snap.TotalFiles)
	assert.Equal(t, "b.wav", snap.FileName)
}
