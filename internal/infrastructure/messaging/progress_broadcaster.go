// Package messaging pushes live session progress to experimenter dashboards
// over websockets.
package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 8
)

// SnapshotSource supplies the sessions to report.
type SnapshotSource interface {
	Snapshots() []session.Snapshot
}

// SnapshotFunc adapts a function to SnapshotSource.
type SnapshotFunc func() []session.Snapshot

func (f SnapshotFunc) Snapshots() []session.Snapshot { return f() }

// ProgressClient represents a single connected monitor client.
type ProgressClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// ProgressPayload is the message sent to clients on every tick or change.
type ProgressPayload struct {
	Sessions    []session.Snapshot `json:"sessions"`
	TotalCount  int                `json:"totalCount"`
	ActiveCount int                `json:"activeCount"` // sessions with a bound user
	GeneratedAt time.Time          `json:"generatedAt"`
}

// ProgressBroadcaster manages all connected monitor clients and broadcasts data.
type ProgressBroadcaster struct {
	clients    map[*ProgressClient]bool
	register   chan *ProgressClient
	unregister chan *ProgressClient
	notify     chan struct{}
	done       chan struct{}
	source     SnapshotSource
	interval   time.Duration
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewProgressBroadcaster creates a new broadcaster instance.
func NewProgressBroadcaster(source SnapshotSource, interval time.Duration, logger *logging.ChanneledLogger) *ProgressBroadcaster {
	return &ProgressBroadcaster{
		clients:    make(map[*ProgressClient]bool),
		register:   make(chan *ProgressClient),
		unregister: make(chan *ProgressClient),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		source:     source,
		interval:   interval,
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *ProgressBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Monitor().Info("Progress broadcaster stopped")
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Monitor().Debug("Monitor client registered", "clients", count)
			b.sendTo(client, b.payload())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Monitor().Debug("Monitor client unregistered", "clients", count)

		case <-b.notify:
			b.broadcast()

		case <-ticker.C:
			b.broadcast()
		}
	}
}

// Register queues a client for registration. It returns false once the
// broadcaster has stopped.
func (b *ProgressBroadcaster) Register(client *ProgressClient) bool {
	select {
	case b.register <- client:
		return true
	case <-b.done:
		return false
	}
}

// Unregister queues a client for unregistration.
func (b *ProgressBroadcaster) Unregister(client *ProgressClient) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// Notify requests an immediate broadcast. Calls coalesce.
func (b *ProgressBroadcaster) Notify() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (b *ProgressBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *ProgressBroadcaster) payload() []byte {
	snapshots := b.source.Snapshots()
	p := ProgressPayload{
		Sessions:    snapshots,
		TotalCount:  len(snapshots),
		GeneratedAt: time.Now().UTC(),
	}
	for _, s := range snapshots {
		if s.UserID != "" {
			p.ActiveCount++
		}
	}
	message, err := json.Marshal(p)
	if err != nil {
		b.logger.Monitor().Error("Error marshaling progress payload", "error", err)
		return nil
	}
	return message
}

func (b *ProgressBroadcaster) broadcast() {
	if b.ClientCount() == 0 {
		return
	}
	message := b.payload()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		b.sendTo(client, message)
	}
}

// sendTo drops the message when the client is not keeping up.
func (b *ProgressBroadcaster) sendTo(client *ProgressClient, message []byte) {
	if message == nil {
		return
	}
	select {
	case client.Send <- message:
	default:
	}
}

// Serve registers conn and pumps messages until either side goes away.
func (b *ProgressBroadcaster) Serve(conn *websocket.Conn) {
	client := &ProgressClient{Conn: conn, Send: make(chan []byte, sendBufferSize)}
	if !b.Register(client) {
		conn.Close()
		return
	}
	go b.writePump(client)
	b.readPump(client)
}

// readPump discards inbound messages and detects disconnects.
func (b *ProgressBroadcaster) readPump(client *ProgressClient) {
	defer func() {
		b.Unregister(client)
		client.Conn.Close()
	}()
	client.Conn.SetReadLimit(512)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *ProgressBroadcaster) writePump(client *ProgressClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
