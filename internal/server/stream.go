package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Preview exposes the latest JPEG-encoded camera frame. The version grows
// with every new frame and is zero before the first.
type Preview interface {
	Preview() ([]byte, uint64)
}

// StreamHandler serves MJPEG frames from the camera preview.
type StreamHandler struct {
	preview  Preview
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewStreamHandler creates a new StreamHandler with the given preview.
func NewStreamHandler(preview Preview) *StreamHandler {
	return &StreamHandler{
		preview:  preview,
		interval: BroadcastInterval,
		done:     make(chan struct{}),
	}
}

// Close ends every active stream. http.Server.Shutdown waits for handlers
// but does not cancel their request contexts, so Run calls this on shutdown.
func (h *StreamHandler) Close() {
	h.once.Do(func() { close(h.done) })
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
		}

		data, version := h.preview.Preview()
		if version == last || len(data) == 0 {
			continue
		}
		last = version

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
