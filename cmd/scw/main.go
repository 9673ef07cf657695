package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/vburojevic/scw/internal/cli"
	"github.com/vburojevic/scw/internal/config"
)

const quickStart = `scw - change-aware screen capture for AI agents

Quick start:
  scw displays                          List capture targets
  scw stream -t display:0               Stream change events (NDJSON when piped)
  scw stream -t display:0 -o ./frames   Also save emitted frames as JPEG

For help:
  scw --help                            All commands and flags
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":           cfg.Format,
		"config_target":           cfg.Defaults.Target,
		"config_fps":              strconv.Itoa(cfg.Defaults.FPS),
		"config_quality":          strconv.Itoa(cfg.Defaults.Quality),
		"config_max_width":        strconv.Itoa(cfg.Defaults.MaxWidth),
		"config_grid_size":        strconv.Itoa(cfg.Defaults.GridSize),
		"config_change_threshold": strconv.FormatFloat(cfg.Defaults.ChangeThreshold, 'f', -1, 64),
		"config_sample_tolerance": strconv.Itoa(cfg.Defaults.SampleTolerance),
		"config_keyframe_every":   cfg.Defaults.KeyframeEvery,
	}

	ctx := kong.Parse(&c,
		kong.Name("scw"),
		kong.Description("ScreenCaptureWatcher: stream what changed on screen to AI agents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}
