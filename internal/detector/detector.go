package detector

import (
	"errors"
	"time"
)

// ErrScriptNotFound is returned when the MediaPipe service script cannot be located.
var ErrScriptNotFound = errors.New("mediapipe_service.py not found")

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a JPEG-encoded video frame captured at ts (monotonic,
	// since stream start) and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame []byte, ts time.Duration) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64
	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
	// ScriptPath overrides the service script lookup when non-empty.
	ScriptPath string
	// PythonPath overrides the interpreter lookup when non-empty.
	PythonPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
