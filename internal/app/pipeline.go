package app

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/noel/internal/capture"
	"github.com/ayusman/noel/internal/detector"
	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/logging"
)

// Pipeline timing constants.
const (
	// ReadRetryDelay is the pause after a failed camera read.
	ReadRetryDelay = 100 * time.Millisecond
	// PreviewInterval is the minimum time between preview updates.
	PreviewInterval = 66 * time.Millisecond
	// StopTimeout bounds how long Run waits for a blocked camera read after
	// cancellation.
	StopTimeout = time.Second
)

// DetectorFactory builds the hand detector when the adapter starts, so a
// missing model surfaces as an inert feature rather than a startup error.
type DetectorFactory func() (detector.Detector, error)

// AdapterConfig wires an Adapter.
type AdapterConfig struct {
	Camera      capture.Camera
	NewDetector DetectorFactory
	Slot        *gesture.Slot
	Logger      *log.Logger
	// Preview keeps a JPEG of the latest frame for the MJPEG endpoint.
	Preview bool
}

// Adapter turns camera frames into gesture samples.
type Adapter struct {
	config  AdapterConfig
	logger  *log.Logger
	release sync.Once

	previewMu   sync.RWMutex
	preview     []byte
	version     uint64
	lastPreview time.Time
}

// NewAdapter creates an adapter publishing to config.Slot.
func NewAdapter(config AdapterConfig) *Adapter {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Adapter{config: config, logger: logger}
}

// Run reads frames until ctx is cancelled. Each frame is classified and
// published; frames without a hand publish NoHand. The camera read is the
// cadence, there is no timer.
//
// A camera or detector that cannot start leaves the slot untouched and Run
// returns nil: the visualization keeps running without gestures.
//
// Cancelling ctx closes the camera, which unblocks a pending read on most
// devices. If the read stays blocked, Run gives up after StopTimeout and the
// loop releases the devices once the read returns.
func (a *Adapter) Run(ctx context.Context) error {
	cam := a.config.Camera
	if err := cam.Open(); err != nil {
		a.logger.Error("camera unavailable, gestures disabled", "err", err)
		return nil
	}

	det, err := a.config.NewDetector()
	if err != nil {
		a.logger.Error("hand detector unavailable, gestures disabled", "err", err)
		a.close(cam, nil)
		return nil
	}

	stop := context.AfterFunc(ctx, func() { a.close(cam, det) })
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer a.close(cam, det)
		a.loop(ctx, cam, det)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	select {
	case <-done:
	case <-time.After(StopTimeout):
		a.logger.Warn("camera read did not return, abandoning detection loop")
	}
	return nil
}

func (a *Adapter) loop(ctx context.Context, cam capture.Camera, det detector.Detector) {
	a.logger.Info("detection loop started")

	start := time.Now()
	var last time.Duration
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("detection loop stopped")
			return
		default:
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			a.logger.Debug("read frame", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(ReadRetryDelay):
			}
			continue
		}

		// The landmark model needs strictly increasing timestamps.
		ts := time.Since(start)
		if ts <= last {
			ts = last + time.Millisecond
		}
		last = ts

		a.process(det, frame, ts)
		frame.Close()
	}
}

// process encodes one frame, classifies it and publishes the result.
func (a *Adapter) process(det detector.Detector, frame *gocv.Mat, ts time.Duration) {
	if frame.Cols() == 0 || frame.Rows() == 0 {
		return
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		a.logger.Debug("encode frame", "err", err)
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	if a.config.Preview {
		a.updatePreview(data)
	}

	hands, err := det.Detect(data, ts)
	if err != nil {
		a.logger.Debug("detect hands", "err", err)
		return
	}

	if len(hands) == 0 {
		a.config.Slot.Publish(gesture.NoHand)
		return
	}
	a.config.Slot.Publish(gesture.FromHand(&hands[0]))
}

// updatePreview keeps data as the preview at most once per PreviewInterval.
func (a *Adapter) updatePreview(data []byte) {
	if time.Since(a.lastPreview) < PreviewInterval {
		return
	}
	a.lastPreview = time.Now()

	a.previewMu.Lock()
	a.preview = data
	a.version++
	a.previewMu.Unlock()
}

// Preview returns the latest JPEG frame and its version.
func (a *Adapter) Preview() ([]byte, uint64) {
	a.previewMu.RLock()
	defer a.previewMu.RUnlock()
	return a.preview, a.version
}

// close releases the camera and detector. Later calls do nothing.
func (a *Adapter) close(cam capture.Camera, det detector.Detector) {
	a.release.Do(func() {
		if err := cam.Close(); err != nil {
			a.logger.Warn("close camera", "err", err)
		}
		if det != nil {
			if err := det.Close(); err != nil {
				a.logger.Warn("close detector", "err", err)
			}
		}
	})
}
