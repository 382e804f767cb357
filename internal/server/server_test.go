package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/noel/internal/animate"
	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/mode"
	"github.com/ayusman/noel/internal/scene"
)

// fakeController is a session with a settable status.
type fakeController struct {
	mu     sync.Mutex
	status Status
	starts int
}

func (f *fakeController) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeController) Summary() scene.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return scene.Summary{
		Elapsed:     1.5,
		Mode:        f.status.Mode,
		Intro:       !f.status.Started,
		Group:       animate.Identity(),
		ActivePhoto: f.status.ActivePhoto,
	}
}

func (f *fakeController) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.status.Started = true
}

func (f *fakeController) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// fakePreview serves a fixed payload with a fixed version.
type fakePreview struct {
	data []byte
}

func (f *fakePreview) Preview() ([]byte, uint64) {
	return f.data, 1
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	paths := []string{"/api/nonexistent", "/api/status", "/api/photos", "/api/stream", "/"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_StatusAndStart(t *testing.T) {
	ctrl := &fakeController{status: Status{
		Mode:        mode.Scattered,
		Gesture:     gesture.Open,
		Hand:        true,
		Palm:        gesture.Palm{X: 0.25, Y: -0.5},
		ActivePhoto: 2,
	}}
	s := New(Config{Controller: ctrl})

	t.Run("status reports the session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var got map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		want := map[string]any{
			"started":      false,
			"mode":         "SCATTERED",
			"gesture":      "OPEN",
			"hand":         true,
			"active_photo": float64(2),
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("%s = %v, want %v", k, got[k], v)
			}
		}
		palm, _ := got["palm"].(map[string]any)
		if palm["x"] != 0.25 || palm["y"] != -0.5 {
			t.Errorf("palm = %v", got["palm"])
		}
	})

	t.Run("start requires POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/start", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
		if ctrl.Starts() != 0 {
			t.Error("GET must not start the session")
		}
	})

	t.Run("start opens the gate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/start", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ctrl.Starts() != 1 {
			t.Errorf("expected 1 start, got %d", ctrl.Starts())
		}

		var got Status
		json.NewDecoder(rec.Body).Decode(&got)
		if !got.Started {
			t.Error("expected started=true in response")
		}
	})
}

func TestServer_Frames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping websocket test in short mode")
	}

	ctrl := &fakeController{status: Status{Mode: mode.PhotoView, Gesture: gesture.Grab, Hand: true, Started: true}}
	s := New(Config{Controller: ctrl})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.frames.Run(ctx)

	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid frame message: %v", err)
	}
	if msg["mode"] != "PHOTO_VIEW" || msg["gesture"] != "GRAB" || msg["started"] != true {
		t.Errorf("unexpected message: %s", data)
	}
	if _, ok := msg["group"]; !ok {
		t.Error("expected group transform in message")
	}

	cancel()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.frames.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not unregistered after shutdown")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServer_Stream(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stream test in short mode")
	}

	payload := []byte{0xff, 0xd8, 0xff, 0xd9}
	s := New(Config{Preview: &fakePreview{data: payload}})
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %s", ct)
	}

	r := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 3 {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	want := []string{"--frame", "Content-Type: image/jpeg", "Content-Length: 4"}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestServer_RunShutdown(t *testing.T) {
	s := New(Config{Controller: &fakeController{}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_ShutdownEndsStreams(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stream test in short mode")
	}

	s := New(Config{Preview: &fakePreview{data: []byte{0xff, 0xd8, 0xff, 0xd9}}})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "--frame" {
		t.Fatalf("first line = %q, err = %v", line, err)
	}

	cancel()
	start := time.Now()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want clean shutdown", err)
		}
		if elapsed := time.Since(start); elapsed >= ShutdownTimeout {
			t.Errorf("shutdown took %v with an open stream", elapsed)
		}
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_RunBadAddr(t *testing.T) {
	s := New(Config{})
	if err := s.Run(context.Background(), "127.0.0.1:-1"); err == nil {
		t.Error("expected listen error")
	}
}
