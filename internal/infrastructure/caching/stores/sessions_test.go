package stores

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newStore(t *testing.T, ttl time.Duration) (*SessionsStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	ss := NewSessionsStore(ttl, logging.NewDiscardLogger())
	ss.SetClock(clock.now)
	return ss, clock
}

func TestDefaultSessionAlwaysPresent(t *testing.T) {
	ss, clock := newStore(t, time.Minute)
	def := ss.Default()
	require.NotNil(t, def)
	assert.Equal(t, session.DefaultID, def.ID)

	clock.t = clock.t.Add(1000 * time.Hour)
	assert.Zero(t, ss.PurgeExpired())

	got, err := ss.Get(session.DefaultID)
	require.NoError(t, err)
	assert.Same(t, def, got)
}

func TestCreateAndGet(t *testing.T) {
	ss, _ := newStore(t, time.Minute)
	s := ss.Create()

	got, err := ss.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = ss.Get("missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestExpiredSessionsArePurged(t *testing.T) {
	ss, clock := newStore(t, time.Minute)
	stale := ss.Create()
	clock.t = clock.t.Add(30 * time.Second)
	fresh := ss.Create()

	clock.t = clock.t.Add(45 * time.Second)
	_, err := ss.Get(stale.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	assert.Equal(t, 1, ss.PurgeExpired())
	assert.Equal(t, 2, ss.Len())

	_, err = ss.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestGetSlidesExpiry(t *testing.T) {
	ss, clock := newStore(t, time.Minute)
	s := ss.Create()

	for range 5 {
		clock.t = clock.t.Add(40 * time.Second)
		_, err := ss.Get(s.ID)
		require.NoError(t, err)
	}
	assert.Zero(t, ss.PurgeExpired())
}

func TestListOrdersDefaultFirst(t *testing.T) {
	ss, clock := newStore(t, time.Hour)
	a := ss.Create()
	clock.t = clock.t.Add(time.Second)
	b := ss.Create()

	list := ss.List()
	require.Len(t, list, 3)
	assert.Equal(t, session.DefaultID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, b.ID, list[2].ID)
}
