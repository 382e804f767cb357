// Package gesture classifies hand poses into the discrete gestures that drive
// the visualization and carries the latest result between loops.
package gesture

// Kind is a discrete gesture label.
type Kind int

const (
	// None is an absent hand or an ambiguous pose.
	None Kind = iota
	// Fist is at most one finger extended.
	Fist
	// Open is three or more fingers extended.
	Open
	// Grab is the thumb tip pinched against the index tip.
	Grab
)

// String returns the wire name of the gesture.
func (k Kind) String() string {
	switch k {
	case Fist:
		return "FIST"
	case Open:
		return "OPEN"
	case Grab:
		return "GRAB"
	default:
		return "NONE"
	}
}

// Label returns the status text shown to the user for the gesture.
func (k Kind) Label() string {
	switch k {
	case Fist:
		return "Fist"
	case Open:
		return "Open (rotating)"
	case Grab:
		return "Grab"
	default:
		return "Moving"
	}
}

// ParseKind converts a wire name back to a Kind. Unknown names map to None.
func ParseKind(s string) Kind {
	switch s {
	case "FIST":
		return Fist
	case "OPEN":
		return Open
	case "GRAB":
		return Grab
	default:
		return None
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// Palm is the wrist position in screen space, both axes in [-1,1].
// Positive X is to the user's right, positive Y is up.
type Palm struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is one processed video frame's result. A new sample replaces the
// previous one; no history is kept.
type Sample struct {
	Gesture Kind `json:"gesture"`
	Palm    Palm `json:"palm"`
	// Hand is false when no hand was in view.
	Hand bool `json:"hand"`
}

// NoHand is the sample published for frames without a detected hand.
var NoHand = Sample{Gesture: None}

// StatusText is the user-facing description of the sample.
func (s Sample) StatusText() string {
	if !s.Hand {
		return "Show your hand to the camera"
	}
	return s.Gesture.Label()
}
