package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

type staticSource struct {
	index atomic.Int32
}

func (s *staticSource) Snapshots() []session.Snapshot {
	return []session.Snapshot{
		{SessionID: session.DefaultID, UserID: "p01", CurrentIndex: int(s.index.Load()), TotalFiles: 4},
		{SessionID: "other"},
	}
}

func startServer(t *testing.T, b *ProgressBroadcaster) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.Serve(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPayload(t *testing.T, conn *websocket.Conn) ProgressPayload {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var p ProgressPayload
	require.NoError(t, json.Unmarshal(data, &p))
	return p
}

func TestSnapshotOnConnectAndNotify(t *testing.T) {
	source := &staticSource{}
	b := NewProgressBroadcaster(source, time.Hour, logging.NewDiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)

	conn := startServer(t, b)

	first := readPayload(t, conn)
	assert.Equal(t, 2, first.TotalCount)
	assert.Equal(t, 1, first.ActiveCount)
	assert.Equal(t, 0, first.Sessions[0].CurrentIndex)

	source.index.Store(3)
	b.Notify()
	second := readPayload(t, conn)
	assert.Equal(t, 3, second.Sessions[0].CurrentIndex)
}

func TestPeriodicBroadcast(t *testing.T) {
	b := NewProgressBroadcaster(&staticSource{}, 20*time.Millisecond, logging.NewDiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)

	conn := startServer(t, b)
	readPayload(t, conn)
	readPayload(t, conn)
	assert.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRegisterAfterStopFails(t *testing.T) {
	b := NewProgressBroadcaster(&staticSource{}, time.Hour, logging.NewDiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, b.Register(&ProgressClient{Send: make(chan []byte, 1)}))
	b.Notify()
}
