package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/scw/internal/config"
)

func parseCLI(t *testing.T, args ...string) *CLI {
	t.Helper()
	cfg := config.Default()
	var c CLI
	parser, err := kong.New(&c, kong.Vars{
		"config_format":           cfg.Format,
		"config_target":           cfg.Defaults.Target,
		"config_fps":              "2",
		"config_quality":          "65",
		"config_max_width":        "1024",
		"config_grid_size":        "16",
		"config_change_threshold": "0.08",
		"config_sample_tolerance": "16",
		"config_keyframe_every":   cfg.Defaults.KeyframeEvery,
	})
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &c
}

func TestStreamFlagDefaultsComeFromConfig(t *testing.T) {
	c := parseCLI(t, "stream")

	assert.Equal(t, "display:0", c.Stream.Target)
	assert.Equal(t, 2, c.Stream.FPS)
	assert.Equal(t, 65, c.Stream.Quality)
	assert.Equal(t, 1024, c.Stream.MaxWidth)
	assert.Equal(t, 16, c.Stream.GridSize)
	assert.InDelta(t, 0.08, c.Stream.Threshold, 1e-9)
	assert.Equal(t, 16, c.Stream.Tolerance)
	assert.Equal(t, "10s", c.Stream.KeyframeEvery)
	assert.Equal(t, "0", c.Stream.Duration)
	assert.Empty(t, c.Stream.OutputDir)
}

func TestStreamFlagsOverrideDefaults(t *testing.T) {
	c := parseCLI(t, "stream", "-t", "display:1", "--fps", "15", "--max-width", "640", "--threshold", "0.2", "-o", "/tmp/frames")

	assert.Equal(t, "display:1", c.Stream.Target)
	assert.Equal(t, 15, c.Stream.FPS)
	assert.Equal(t, 640, c.Stream.MaxWidth)
	assert.InDelta(t, 0.2, c.Stream.Threshold, 1e-9)
	assert.Equal(t, "/tmp/frames", c.Stream.OutputDir)
}

func TestInvalidConfigEmitsMachineReadableError(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	globals := &Globals{Format: "ndjson", Stdout: stdout, Stderr: stderr, logger: &agentLogger{}}

	cmd := &StreamCmd{Target: "display:0", FPS: 0, KeyframeEvery: "10s", Duration: "0"}
	err := cmd.Run(globals)
	require.Error(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &m))
	assert.Equal(t, "error", m["type"])
	assert.Equal(t, "INVALID_CONFIG", m["code"])
}

func TestInvalidDurationRejected(t *testing.T) {
	stdout := &bytes.Buffer{}
	globals := &Globals{Format: "ndjson", Stdout: stdout, Stderr: &bytes.Buffer{}, logger: &agentLogger{}}

	cmd := &StreamCmd{Target: "display:0", FPS: 2, KeyframeEvery: "10s", Duration: "soon"}
	err := cmd.Run(globals)
	require.Error(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &m))
	assert.Equal(t, "INVALID_DURATION", m["code"])
}
