package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/inventario-app/inventario-api/models"
	"github.com/inventario-app/inventario-api/snapshot"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the API is consumed cross-origin by the web frontend
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream pushes every new equipment snapshot to connected websocket clients
type Stream struct {
	snapshot *snapshot.Cache

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewStream builds the push hub over the given snapshot cache
func NewStream(cache *snapshot.Cache) *Stream {
	return &Stream{
		snapshot: cache,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// SubscribeHandler upgrades the connection and registers it for snapshot
// pushes. The current snapshot is sent immediately so a new client never
// starts empty.
func (s *Stream) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().With(err).Error("failed to upgrade websocket connection")
		return
	}

	// Send the initial snapshot before registering: once the connection is
	// in s.clients the refresh loop may write to it via Broadcast, and the
	// websocket allows only one concurrent writer.
	if s.snapshot != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(s.snapshot.Equipments()); err != nil {
			_ = conn.Close()
			return
		}
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// the hub only writes; reads exist to notice the client going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

// Broadcast sends the snapshot to every connected client, dropping the ones
// that fail to keep up
func (s *Stream) Broadcast(equipments []models.Equipment) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(equipments); err != nil {
			s.drop(conn)
		}
	}
}

func (s *Stream) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	_ = conn.Close()
}
