package detector

import (
	"github.com/vburojevic/scw/internal/domain"
)

// Config holds per-session detection tuning. All fields are fixed for the
// lifetime of a session.
type Config struct {
	// GridSize is the number of sample cells per axis (GridSize² total).
	GridSize int
	// ChangeThreshold is the minimum fraction of changed cells that makes
	// a frame worth emitting. Compared with >=.
	ChangeThreshold float64
	// SampleTolerance is the per-channel delta below which two samples are
	// considered equal. Non-zero by default to absorb capture noise from
	// compression and dithering.
	SampleTolerance uint8
	// KeyframeTicks forces an emission after this many consecutive
	// suppressed frames, so a consumer joining late still converges.
	KeyframeTicks int
}

// DefaultConfig returns the detection tuning used when a session does not
// override it.
func DefaultConfig() Config {
	return Config{
		GridSize:        16,
		ChangeThreshold: 0.08,
		SampleTolerance: 16,
		KeyframeTicks:   20,
	}
}

type sample struct {
	r, g, b uint8
}

// State is the per-session detection memory. The zero value is the state
// before the first frame. State is owned exclusively by the session's
// scheduler and never shared.
type State struct {
	// samples holds one representative color per grid cell from the last
	// *emitted* frame. Suppressed frames never advance this baseline, so
	// gradual sub-threshold drift accumulates against the last frame the
	// consumer actually saw.
	samples []sample
	// ticksSinceKeyframe counts suppressed frames since the last emission.
	ticksSinceKeyframe int
}

// TicksSinceKeyframe reports the suppressed-frame streak, for logging.
func (s State) TicksSinceKeyframe() int { return s.ticksSinceKeyframe }

// Result is the outcome of analyzing one frame.
type Result struct {
	ShouldSend   bool
	Event        string
	ChangedCells int
	ChangedRatio float64
}

// Detector decides whether a frame represents a meaningful visual change.
// It is pure between calls; all memory lives in State.
type Detector struct {
	cfg Config
}

// New creates a detector with the given tuning.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Analyze samples the frame on the configured grid and compares it against
// the last emitted frame's samples. Callers must reject invalid frames
// before calling; Analyze is total for any frame with pixels.
func (d *Detector) Analyze(frame *domain.Frame, st State) (Result, State) {
	cur := d.sampleGrid(frame)

	// First frame of the session is always a keyframe.
	if st.samples == nil {
		return Result{ShouldSend: true, Event: domain.EventFrame},
			State{samples: cur}
	}

	changed := 0
	for i := range cur {
		if d.cellDiffers(cur[i], st.samples[i]) {
			changed++
		}
	}
	ratio := float64(changed) / float64(len(cur))

	if ratio >= d.cfg.ChangeThreshold {
		return Result{ShouldSend: true, Event: domain.EventChange, ChangedCells: changed, ChangedRatio: ratio},
			State{samples: cur}
	}

	st.ticksSinceKeyframe++
	if st.ticksSinceKeyframe >= d.cfg.KeyframeTicks {
		// Forced keyframe: content is unchanged but the consumer gets a
		// periodic refresh anyway.
		return Result{ShouldSend: true, Event: domain.EventFrame, ChangedCells: changed, ChangedRatio: ratio},
			State{samples: cur}
	}

	return Result{ShouldSend: false, Event: domain.EventNoChange, ChangedCells: changed, ChangedRatio: ratio}, st
}

// sampleGrid takes one representative pixel per cell, at the cell's
// geometric center. Cell boundaries are computed by integer scaling so
// remainder pixels fold into the edge cells.
func (d *Detector) sampleGrid(frame *domain.Frame) []sample {
	grid := d.cfg.GridSize
	img := frame.Image
	min := img.Bounds().Min

	out := make([]sample, 0, grid*grid)
	for cy := 0; cy < grid; cy++ {
		y0 := cy * frame.Height / grid
		y1 := (cy + 1) * frame.Height / grid
		py := min.Y + (y0+y1)/2
		for cx := 0; cx < grid; cx++ {
			x0 := cx * frame.Width / grid
			x1 := (cx + 1) * frame.Width / grid
			px := min.X + (x0+x1)/2

			off := img.PixOffset(px, py)
			out = append(out, sample{
				r: img.Pix[off],
				g: img.Pix[off+1],
				b: img.Pix[off+2],
			})
		}
	}
	return out
}

// cellDiffers reports whether any channel moved by more than the tolerance.
func (d *Detector) cellDiffers(a, b sample) bool {
	tol := d.cfg.SampleTolerance
	return absDiff(a.r, b.r) > tol || absDiff(a.g, b.g) > tol || absDiff(a.b, b.b) > tol
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
