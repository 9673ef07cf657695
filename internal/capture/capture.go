// Package capture defines the contracts for pixel acquisition and target
// tracking, plus the built-in whole-display adapter. The scheduling core
// only depends on the interfaces; anything that can produce an RGBA
// buffer for a named target can feed a session.
package capture

import (
	"context"

	"github.com/vburojevic/scw/internal/domain"
)

// FrameSource acquires pixels for a resolved target. Capture may fail
// transiently; the scheduler skips the tick and keeps its cadence. A nil
// frame with a nil error is treated the same as a transient failure.
type FrameSource interface {
	// Capture grabs the target's current pixels, downscaled to at most
	// maxWidth. maxWidth <= 0 means no scaling.
	Capture(ctx context.Context, target string, maxWidth int) (*domain.Frame, error)
}

// TargetLocator resolves a target reference into its current metadata.
// Returning an error wrapping domain.ErrTargetLost ends the session.
type TargetLocator interface {
	Resolve(ctx context.Context, target string) (domain.TargetInfo, error)
}
