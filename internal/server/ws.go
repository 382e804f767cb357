package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/scene"
)

// BroadcastInterval is the period between frame messages, about 15 Hz.
const BroadcastInterval = 66 * time.Millisecond

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameMessage is one broadcast over /api/frames.
type FrameMessage struct {
	scene.Summary
	Started   bool         `json:"started"`
	Gesture   gesture.Kind `json:"gesture"`
	Hand      bool         `json:"hand"`
	Palm      gesture.Palm `json:"palm"`
	Timestamp int64        `json:"timestamp"`
}

// FramesHandler broadcasts scene summaries via WebSocket.
type FramesHandler struct {
	controller Controller
	logger     *log.Logger
	clients    map[*websocket.Conn]bool
	mu         sync.RWMutex
}

// NewFramesHandler creates a FramesHandler reading from c. Call Run to
// start broadcasting.
func NewFramesHandler(c Controller, logger *log.Logger) *FramesHandler {
	return &FramesHandler{
		controller: c,
		logger:     logger,
		clients:    make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *FramesHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Message builds the current frame message.
func (h *FramesHandler) Message() FrameMessage {
	st := h.controller.Status()
	return FrameMessage{
		Summary:   h.controller.Summary(),
		Started:   st.Started,
		Gesture:   st.Gesture,
		Hand:      st.Hand,
		Palm:      st.Palm,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Run broadcasts until ctx is cancelled, then closes every client.
func (h *FramesHandler) Run(ctx context.Context) {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

func (h *FramesHandler) broadcast() {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	h.mu.RUnlock()

	msg, err := json.Marshal(h.Message())
	if err != nil {
		h.logger.Debug("encode frame message", "err", err)
		return
	}

	h.mu.RLock()
	var failed []*websocket.Conn
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	// Closing unblocks the reader in ServeHTTP, which unregisters the client.
	for _, conn := range failed {
		conn.Close()
	}
}

func (h *FramesHandler) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		conn.Close()
	}
}
