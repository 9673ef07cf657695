package domain

import (
	"image"
	"time"
)

// Event classifies why a payload was emitted.
const (
	// EventFrame marks a keyframe: the first frame of a session, or a
	// forced emission after the keyframe interval elapsed with no change.
	EventFrame = "Frame"
	// EventChange marks a frame whose change ratio crossed the threshold.
	EventChange = "Change"
	// EventNoChange is reported by the detector for suppressed frames.
	// It never appears on an emitted payload.
	EventNoChange = "No Change"
)

// TargetInfo is a snapshot of the tracked target's metadata at capture time.
type TargetInfo struct {
	Title  string          `json:"title,omitempty"`
	Bounds image.Rectangle `json:"-"`
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
}

// NewTargetInfo builds a TargetInfo from a title and bounding box.
func NewTargetInfo(title string, bounds image.Rectangle) TargetInfo {
	return TargetInfo{
		Title:  title,
		Bounds: bounds,
		X:      bounds.Min.X,
		Y:      bounds.Min.Y,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
}

// Payload is one emitted snapshot. Immutable once constructed.
type Payload struct {
	Type          string     `json:"type"`          // "frame"
	SchemaVersion int        `json:"schemaVersion"` // 1
	SessionID     string     `json:"session_id"`
	Event         string     `json:"event"` // EventFrame or EventChange
	HasChange     bool       `json:"has_change"`
	RelativeTime  float64    `json:"relative_time"` // seconds since session start
	Timestamp     time.Time  `json:"timestamp"`     // wall clock at observation
	Target        TargetInfo `json:"target"`
	Data          []byte     `json:"-"` // encoded image bytes
}

// NewPayload constructs an emitted snapshot. observed is the instant the
// visual state was captured and encoded; start is the session's creation
// instant, the zero point of the relative timeline.
func NewPayload(sessionID, event string, observed, start time.Time, target TargetInfo, data []byte) *Payload {
	return &Payload{
		Type:          "frame",
		SchemaVersion: 1,
		SessionID:     sessionID,
		Event:         event,
		HasChange:     event == EventChange,
		RelativeTime:  observed.Sub(start).Seconds(),
		Timestamp:     observed,
		Target:        target,
		Data:          data,
	}
}
