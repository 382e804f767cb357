package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/noel/internal/app"
	"github.com/ayusman/noel/internal/config"
	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/store"
)

type status struct {
	Started     bool   `json:"started"`
	Mode        string `json:"mode"`
	Gesture     string `json:"gesture"`
	ActivePhoto int    `json:"active_photo"`
}

func getStatus(t *testing.T, client *http.Client, url string) status {
	t.Helper()
	resp, err := client.Get(url + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status error = %v", err)
	}
	defer resp.Body.Close()

	var st status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return st
}

func waitStatus(t *testing.T, client *http.Client, url string, cond func(status) bool) status {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		st := getStatus(t, client, url)
		if cond(st) {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out, last status %+v", st)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	if err := s.Photos().Create(&store.Photo{URL: "https://example.com/extra.jpg"}); err != nil {
		t.Fatalf("add photo: %v", err)
	}

	cfg := config.Default()
	cfg.Camera.Enabled = false
	cfg.Render.Backend = config.BackendNone
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Scene.Particles = 300
	cfg.Scene.Seed = 1

	application, err := app.New(cfg, app.Options{Store: s})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer application.Close()

	if got := len(application.Scene().Layout().Photos); got != len(store.DefaultPhotoURLs)+1 {
		t.Fatalf("layout photos = %d, want catalog size %d", got, len(store.DefaultPhotoURLs)+1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- application.Run(ctx)
	}()

	ts := httptest.NewServer(application.Server())
	defer ts.Close()
	client := ts.Client()

	t.Run("IntroGate", func(t *testing.T) {
		application.Slot().Publish(gesture.Sample{Gesture: gesture.Open, Hand: true})
		time.Sleep(100 * time.Millisecond)

		st := getStatus(t, client, ts.URL)
		if st.Started || st.Mode != "TREE" {
			t.Errorf("before start: %+v, want TREE and not started", st)
		}
		if st.Gesture != "OPEN" {
			t.Errorf("gesture = %s, want OPEN", st.Gesture)
		}
	})

	t.Run("StartAndScatter", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/start", "application/json", strings.NewReader(""))
		if err != nil {
			t.Fatalf("POST /api/start error = %v", err)
		}
		resp.Body.Close()

		waitStatus(t, client, ts.URL, func(st status) bool {
			return st.Started && st.Mode == "SCATTERED"
		})
	})

	t.Run("FrameBroadcast", func(t *testing.T) {
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
		json.Unmarshal(data, &msg)
		if msg["mode"] != "SCATTERED" {
			t.Errorf("frame mode = %v, want SCATTERED", msg["mode"])
		}
	})

	t.Run("PhotoView", func(t *testing.T) {
		application.Slot().Publish(gesture.Sample{Gesture: gesture.Grab, Hand: true})
		st := waitStatus(t, client, ts.URL, func(st status) bool {
			return st.Mode == "PHOTO_VIEW"
		})
		if st.ActivePhoto != 1 {
			t.Errorf("active photo = %d, want 1", st.ActivePhoto)
		}

		application.Slot().Publish(gesture.NoHand)
		time.Sleep(100 * time.Millisecond)
		if st := getStatus(t, client, ts.URL); st.Mode != "PHOTO_VIEW" {
			t.Errorf("losing the hand changed mode to %s", st.Mode)
		}
	})

	t.Run("BackToTree", func(t *testing.T) {
		application.Slot().Publish(gesture.Sample{Gesture: gesture.Fist, Hand: true})
		waitStatus(t, client, ts.URL, func(st status) bool {
			return st.Mode == "TREE"
		})
	})

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
