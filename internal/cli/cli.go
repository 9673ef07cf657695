// Package cli wires the capture engine to a kong-driven command surface
// aimed at AI agents: NDJSON by default when piped, human text on a TTY.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/vburojevic/scw/internal/config"
)

// CLI is the root command tree.
type CLI struct {
	Format  string `help:"Output format: ndjson, text, or auto (ndjson when piped)" enum:"ndjson,text,auto" default:"${config_format}"`
	Quiet   bool   `short:"q" help:"Suppress informational output"`
	Verbose bool   `help:"Enable verbose debug logging (JSON to stderr)"`

	Stream   StreamCmd   `cmd:"" help:"Capture a target at a bounded cadence, emitting only changed frames"`
	Displays DisplaysCmd `cmd:"" help:"List attached displays"`
}

// Globals carries resolved global flags and IO into commands.
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config

	logger *agentLogger
}

// NewGlobalsWithConfig resolves global flags against loaded configuration.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  c.Format,
		Quiet:   c.Quiet || cfg.Quiet,
		Verbose: c.Verbose || cfg.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
	if g.Format == "" || g.Format == "auto" {
		// Agents pipe; humans get a terminal.
		if isatty.IsTerminal(os.Stdout.Fd()) {
			g.Format = "text"
		} else {
			g.Format = "ndjson"
		}
	}
	g.logger = newAgentLogger(g)
	return g
}

// Debug logs a verbose diagnostic line. No-op unless --verbose.
func (g *Globals) Debug(format string, args ...interface{}) {
	g.logger.Debug(format, args...)
}
