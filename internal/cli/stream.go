package cli

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/vburojevic/scw/internal/capture"
	"github.com/vburojevic/scw/internal/detector"
	"github.com/vburojevic/scw/internal/domain"
	"github.com/vburojevic/scw/internal/encode"
	"github.com/vburojevic/scw/internal/output"
	"github.com/vburojevic/scw/internal/registry"
)

// StreamCmd captures a target at a bounded cadence and emits only frames
// that changed (plus periodic keyframes).
type StreamCmd struct {
	Target        string  `short:"t" default:"${config_target}" help:"Capture target, e.g. 'display:0'"`
	FPS           int     `default:"${config_fps}" help:"Target frame rate"`
	Quality       int     `default:"${config_quality}" help:"JPEG quality (1-100)"`
	MaxWidth      int     `default:"${config_max_width}" help:"Downscale frames to at most this width (0 = original size)"`
	GridSize      int     `default:"${config_grid_size}" help:"Change-detection grid cells per axis"`
	Threshold     float64 `default:"${config_change_threshold}" help:"Fraction of changed cells that triggers emission"`
	Tolerance     int     `default:"${config_sample_tolerance}" help:"Per-channel color delta treated as capture noise"`
	KeyframeEvery string  `default:"${config_keyframe_every}" help:"Force a frame at least this often, e.g. 10s"`
	Duration      string  `default:"0" help:"Stop after this long, e.g. 30s (0 = run until interrupted)"`
	OutputDir     string  `short:"o" help:"Directory to save emitted frames as JPEG (empty = metadata only)"`
}

// sessionGonePollInterval is how often the command checks whether the
// session terminated on its own (target lost).
const sessionGonePollInterval = 250 * time.Millisecond

// Run executes the stream command.
func (c *StreamCmd) Run(globals *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	keyframeEvery, err := time.ParseDuration(c.KeyframeEvery)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_KEYFRAME_INTERVAL", fmt.Sprintf("invalid keyframe interval: %s", err))
	}
	var runFor time.Duration
	if c.Duration != "0" && c.Duration != "" {
		runFor, err = time.ParseDuration(c.Duration)
		if err != nil {
			return outputErrorCommon(globals, "INVALID_DURATION", fmt.Sprintf("invalid duration: %s", err))
		}
	}

	var sink *output.FrameSink
	if c.OutputDir != "" {
		sink, err = output.NewFrameSink(c.OutputDir)
		if err != nil {
			return outputErrorCommon(globals, "OUTPUT_DIR_FAILED", err.Error())
		}
	}

	writer := output.NewNDJSONWriter(globals.Stdout)
	var emitted atomic.Int64

	deliver := func(p *domain.Payload) error {
		emitted.Add(1)
		path := ""
		if sink != nil {
			var serr error
			if path, serr = sink.Save(p); serr != nil {
				return serr
			}
		}
		if globals.Format == "ndjson" {
			return writer.WritePayload(p, path)
		}
		line := fmt.Sprintf("%8.3fs  %-9s %dx%d  %s", p.RelativeTime, p.Event, p.Target.Width, p.Target.Height, formatBytes(len(p.Data)))
		if path != "" {
			line += "  " + path
		}
		_, werr := fmt.Fprintln(globals.Stdout, line)
		return werr
	}

	reg := registry.New(registry.Deps{
		Source:  capture.DisplaySource{},
		Locator: capture.DisplayLocator{},
		Encoder: encode.JPEG{},
		Logger:  globals.logger.Zap(),
	})

	id, err := reg.Start(registry.Options{
		Target:   c.Target,
		FPS:      c.FPS,
		Quality:  c.Quality,
		MaxWidth: c.MaxWidth,
		Detection: detector.Config{
			GridSize:        c.GridSize,
			ChangeThreshold: c.Threshold,
			SampleTolerance: uint8(c.Tolerance),
		},
		KeyframePeriod: keyframeEvery,
		Deliver:        deliver,
	})
	if err != nil {
		return outputErrorCommon(globals, "INVALID_CONFIG", err.Error(), "check --fps, --quality and --target values")
	}
	globals.Debug("session %s started for %s at %d fps", id, c.Target, c.FPS)

	if globals.Format == "ndjson" {
		writer.WriteReady(id, c.Target, c.FPS)
	} else if !globals.Quiet {
		fmt.Fprintf(globals.Stderr, "Streaming %s at %d fps (session %s)\n", c.Target, c.FPS, id)
		fmt.Fprintln(globals.Stderr, "Press Ctrl+C to stop")
	}

	reason := c.await(ctx, reg, id, runFor)

	reg.Stop(id)

	if globals.Format == "ndjson" {
		writer.WriteSessionEnd(id, reason, int(emitted.Load()))
	} else if !globals.Quiet {
		fmt.Fprintf(globals.Stderr, "Session ended (%s) after %d frames\n", reason, emitted.Load())
	}
	return nil
}

// await blocks until interruption, duration expiry, or the session ending
// on its own, and names which happened.
func (c *StreamCmd) await(ctx context.Context, reg *registry.Registry, id string, runFor time.Duration) string {
	var expiry <-chan time.Time
	if runFor > 0 {
		t := time.NewTimer(runFor)
		defer t.Stop()
		expiry = t.C
	}

	poll := time.NewTicker(sessionGonePollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return "interrupted"
		case <-expiry:
			return "duration_elapsed"
		case <-poll.C:
			if _, err := reg.GetLatest(id); err != nil {
				return "target_lost"
			}
		}
	}
}

func formatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	return fmt.Sprintf("%.1fKB", float64(n)/1024)
}
