package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/scw/internal/domain"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(buf)
	var m map[string]interface{}
	require.NoError(t, dec.Decode(&m))
	return m
}

func TestWriteReady(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteReady("sess-1", "display:0", 15))

	m := decodeLine(t, buf)
	assert.Equal(t, "ready", m["type"])
	assert.EqualValues(t, 1, m["schemaVersion"])
	assert.Equal(t, "sess-1", m["session_id"])
	assert.Equal(t, "display:0", m["target"])
	assert.EqualValues(t, 15, m["fps"])
	assert.NotEmpty(t, m["timestamp"])
}

func TestWritePayloadOmitsImageBytes(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	p := domain.NewPayload("sess-1", domain.EventChange,
		time.Unix(100, 0), time.Unix(90, 0),
		domain.TargetInfo{Title: "Editor", Width: 640, Height: 480},
		[]byte{0xff, 0xd8, 0x01})

	require.NoError(t, w.WritePayload(p, "/tmp/frames/000001.jpg"))

	m := decodeLine(t, buf)
	assert.Equal(t, "frame", m["type"])
	assert.Equal(t, "Change", m["event"])
	assert.Equal(t, true, m["has_change"])
	assert.EqualValues(t, 10, m["relative_time"])
	assert.EqualValues(t, 3, m["bytes"])
	assert.Equal(t, "/tmp/frames/000001.jpg", m["file"])
	assert.NotContains(t, buf.String(), "data", "raw bytes never hit stdout")
}

func TestWriteSessionEnd(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteSessionEnd("sess-1", "target_lost", 42))

	m := decodeLine(t, buf)
	assert.Equal(t, "session_end", m["type"])
	assert.Equal(t, "target_lost", m["reason"])
	assert.EqualValues(t, 42, m["frames"])
}

func TestWriteError(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteError("INVALID_CONFIG", "fps must be positive", "use --fps with a value >= 1"))

	m := decodeLine(t, buf)
	assert.Equal(t, "error", m["type"])
	assert.Equal(t, "INVALID_CONFIG", m["code"])
	assert.Equal(t, "fps must be positive", m["message"])
	assert.Equal(t, "use --fps with a value >= 1", m["hint"])
}
