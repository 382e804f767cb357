package gesture

import (
	"github.com/ayusman/noel/internal/detector"
)

// GrabDistance is the thumb-to-index tip distance, in normalized landmark
// units, below which a hand is considered pinching.
const GrabDistance = 0.08

// fingers pairs each non-thumb fingertip with its middle (PIP) joint.
var fingers = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// Classify maps one hand's landmarks to a gesture.
//
// A pinch (thumb tip within GrabDistance of the index tip) is Grab regardless
// of the other fingers. Otherwise a finger counts as open when its tip is
// higher on screen than its PIP joint (smaller y); three or more open fingers
// is Open, one or none is Fist, and exactly two is None.
func Classify(hand *detector.HandLandmarks) Kind {
	if !hand.Valid() {
		return None
	}

	if detector.Distance(hand.Points[detector.ThumbTip], hand.Points[detector.IndexTip]) < GrabDistance {
		return Grab
	}

	open := OpenFingers(hand)
	switch {
	case open >= 3:
		return Open
	case open <= 1:
		return Fist
	default:
		return None
	}
}

// OpenFingers counts the extended non-thumb fingers.
func OpenFingers(hand *detector.HandLandmarks) int {
	if hand == nil {
		return 0
	}

	n := 0
	for _, f := range fingers {
		if hand.Points[f[0]].Y < hand.Points[f[1]].Y {
			n++
		}
	}
	return n
}

// PalmPosition converts the wrist landmark from image space ([0,1], y down,
// mirrored by the front camera) into screen space [-1,1] with both axes
// inverted, so moving the hand right moves content right.
func PalmPosition(hand *detector.HandLandmarks) Palm {
	if hand == nil {
		return Palm{}
	}
	wrist := hand.Points[detector.Wrist]
	return Palm{
		X: -(wrist.X*2 - 1),
		Y: -(wrist.Y*2 - 1),
	}
}

// FromHand builds the sample for a detected hand.
func FromHand(hand *detector.HandLandmarks) Sample {
	if !hand.Valid() {
		return NoHand
	}
	return Sample{
		Gesture: Classify(hand),
		Palm:    PalmPosition(hand),
		Hand:    true,
	}
}
