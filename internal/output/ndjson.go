// Package output renders session events for machine consumers. Payload
// image bytes never go to stdout; NDJSON carries metadata plus the path
// the frame was saved to, so an agent can fetch exactly the frames it
// wants.
package output

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/vburojevic/scw/internal/domain"
)

const schemaVersion = 1

// NDJSONWriter emits newline-delimited JSON events. Safe for concurrent
// use; each event is written as one line.
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer emitting to w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

func (w *NDJSONWriter) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// readyEvent announces a started session.
type readyEvent struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	SessionID     string `json:"session_id"`
	Target        string `json:"target"`
	FPS           int    `json:"fps"`
	Timestamp     string `json:"timestamp"`
}

// WriteReady announces that a capture session is live.
func (w *NDJSONWriter) WriteReady(sessionID, target string, fps int) error {
	return w.write(readyEvent{
		Type:          "ready",
		SchemaVersion: schemaVersion,
		SessionID:     sessionID,
		Target:        target,
		FPS:           fps,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// payloadEvent is the metadata line for one emitted frame.
type payloadEvent struct {
	*domain.Payload
	Bytes int    `json:"bytes"`
	File  string `json:"file,omitempty"`
}

// WritePayload emits a frame's metadata. file is the saved image path,
// empty if frames are not being persisted.
func (w *NDJSONWriter) WritePayload(p *domain.Payload, file string) error {
	return w.write(payloadEvent{Payload: p, Bytes: len(p.Data), File: file})
}

// sessionEndEvent closes out a session.
type sessionEndEvent struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	SessionID     string `json:"session_id"`
	Reason        string `json:"reason"`
	Frames        int    `json:"frames"`
}

// WriteSessionEnd reports why a session ended and how many frames it
// emitted.
func (w *NDJSONWriter) WriteSessionEnd(sessionID, reason string, frames int) error {
	return w.write(sessionEndEvent{
		Type:          "session_end",
		SchemaVersion: schemaVersion,
		SessionID:     sessionID,
		Reason:        reason,
		Frames:        frames,
	})
}

// errorEvent is a machine-readable failure.
type errorEvent struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// WriteError emits a machine-readable error line.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	e := errorEvent{
		Type:          "error",
		SchemaVersion: schemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		e.Hint = hint[0]
	}
	return w.write(e)
}
