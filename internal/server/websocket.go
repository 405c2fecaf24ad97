// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vireolabs/cyclegc/internal/snapshot"
	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

// upgrader mirrors the teacher's services/orchestrator/handlers/websocket.go:
// CheckOrigin always true (this is an operator debug surface, not
// internet-facing) with generous read/write buffers for large snapshots.
var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1 << 20,
	WriteBufferSize: 1 << 20,
}

// liveHub fans a snapshot out to every connected /ws/live client,
// matching the teacher's one-goroutine-per-connection websocket shape.
type liveHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *liveHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *liveHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

func (h *liveHub) broadcastSnapshot(ctx *cyclegc.Context) {
	snap := snapshot.Capture(ctx, "collect_cycles")

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(snap); err != nil {
			slog.Warn("failed to push snapshot to live client", slog.String("error", err.Error()))
			h.remove(conn)
			conn.Close()
		}
	}
}

// handleLive upgrades the connection and keeps it registered with the
// hub until the client disconnects. It sends one snapshot immediately on
// connect, then waits for NotifyCollected pushes.
func (s *Server) handleLive(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	s.hub.add(conn)
	defer s.hub.remove(conn)

	if err := conn.WriteJSON(snapshot.Capture(s.ctx, "connected")); err != nil {
		return
	}

	// Drain and discard client messages so Gorilla's control-frame
	// handling (ping/pong/close) keeps running; this endpoint is
	// push-only from the server's side.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
