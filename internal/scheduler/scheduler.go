// Package scheduler runs the per-session capture loop: a drift-free
// periodic schedule that acquires frames, gates them through the change
// detector, and publishes emitted payloads.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/vburojevic/scw/internal/capture"
	"github.com/vburojevic/scw/internal/detector"
	"github.com/vburojevic/scw/internal/domain"
	"github.com/vburojevic/scw/internal/encode"
	"github.com/vburojevic/scw/internal/slot"
)

// DeliveryFunc receives each emitted payload. Best-effort: a returned
// error is logged and the loop continues.
type DeliveryFunc func(*domain.Payload) error

// driftSlack is how far behind schedule a tick may run before a warning
// is logged. The deadline is never rebased either way; a slow tick only
// densifies the catch-up schedule.
const driftSlack = 500 * time.Millisecond

// Config fixes a session's cadence and tuning. Immutable once the loop
// starts.
type Config struct {
	SessionID string
	Target    string
	Interval  time.Duration
	Quality   int
	MaxWidth  int
	Detection detector.Config
}

// Deps are the collaborators a scheduler drives. Clock, Logger and
// Deliver may be nil.
type Deps struct {
	Source  capture.FrameSource
	Locator capture.TargetLocator
	Encoder encode.Encoder
	Slot    *slot.Slot
	Deliver DeliveryFunc
	Clock   clock.Clock
	Logger  *zap.Logger
}

// Scheduler is one session's control loop. All mutable state (deadline,
// detector memory) is owned by the goroutine running Run; nothing here
// needs locking.
type Scheduler struct {
	cfg     Config
	source  capture.FrameSource
	locator capture.TargetLocator
	encoder encode.Encoder
	deliver DeliveryFunc
	out     *slot.Slot
	clk     clock.Clock
	log     *zap.Logger

	det   *detector.Detector
	state detector.State

	start    time.Time
	deadline time.Time
}

// New builds a scheduler. Run must be called exactly once.
func New(cfg Config, deps Deps) *Scheduler {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:     cfg,
		source:  deps.Source,
		locator: deps.Locator,
		encoder: deps.Encoder,
		deliver: deps.Deliver,
		out:     deps.Slot,
		clk:     deps.Clock,
		log:     deps.Logger.With(zap.String("session_id", cfg.SessionID), zap.String("target", cfg.Target)),
	}
}

// Run executes the capture loop until ctx is cancelled or the target is
// lost. The session's slot is closed on every exit path so a blocked
// reader unblocks. Returns nil on cancellation, domain.ErrTargetLost when
// the target disappeared.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.out.Close()

	s.start = s.clk.Now()
	s.deadline = s.start.Add(s.cfg.Interval)
	s.det = detector.New(s.cfg.Detection)

	s.log.Info("capture session started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Int("max_width", s.cfg.MaxWidth),
		zap.Int("quality", s.cfg.Quality))

	for {
		if err := s.awaitDeadline(ctx); err != nil {
			s.log.Info("capture session stopped")
			return nil
		}

		err := s.tick(ctx)

		// The deadline advances by exactly one interval on every branch,
		// from its own prior value. Never rebased to "now": transient
		// slowness densifies the catch-up ticks instead of compounding.
		s.deadline = s.deadline.Add(s.cfg.Interval)

		if errors.Is(err, domain.ErrTargetLost) {
			s.log.Info("target lost, ending session")
			return err
		}
	}
}

// awaitDeadline suspends until the next deadline or cancellation. Returns
// the context error when cancelled.
func (s *Scheduler) awaitDeadline(ctx context.Context) error {
	wait := s.deadline.Sub(s.clk.Now())
	if wait <= 0 {
		if wait < -driftSlack {
			s.log.Warn("capture loop behind schedule", zap.Duration("behind", -wait))
		}
		return ctx.Err()
	}

	t := s.clk.Timer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// tick performs one capture attempt. Only target loss propagates; every
// other failure is contained here and the tick is skipped with the
// schedule preserved.
func (s *Scheduler) tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("capture tick panicked", zap.Any("panic", r))
			err = nil
		}
	}()

	target, err := s.locator.Resolve(ctx, s.cfg.Target)
	if err != nil {
		if errors.Is(err, domain.ErrTargetLost) {
			return err
		}
		s.log.Warn("target resolution failed, skipping tick", zap.Error(err))
		return nil
	}

	frame, err := s.source.Capture(ctx, s.cfg.Target, s.cfg.MaxWidth)
	if err != nil {
		if errors.Is(err, domain.ErrTargetLost) {
			return err
		}
		s.log.Warn("frame capture failed, skipping tick", zap.Error(err))
		return nil
	}
	if !frame.Valid() {
		s.log.Warn("frame source returned no frame, skipping tick")
		return nil
	}

	res, next := s.det.Analyze(frame, s.state)
	if !res.ShouldSend {
		// Suppressed: keep the baseline, advance the keyframe streak.
		s.state = next
		s.log.Debug("frame suppressed",
			zap.Float64("changed_ratio", res.ChangedRatio),
			zap.Int("streak", next.TicksSinceKeyframe()))
		return nil
	}

	data, encErr := s.encoder.Encode(frame, s.cfg.Quality)
	if encErr != nil {
		// Treated as a skipped tick: the detector baseline must not
		// advance for a frame the consumer never received.
		s.log.Warn("encode failed, skipping tick", zap.Error(encErr))
		return nil
	}
	s.state = next

	// Timestamp after encoding: it reflects when the visual state was
	// actually observed, not when the tick began.
	observed := s.clk.Now()
	p := domain.NewPayload(s.cfg.SessionID, res.Event, observed, s.start, target, data)

	s.out.Publish(p)
	if s.deliver != nil {
		if derr := s.deliver(p); derr != nil {
			s.log.Warn("delivery failed", zap.Error(derr))
		}
	}

	s.log.Debug("frame emitted",
		zap.String("event", res.Event),
		zap.Float64("relative_time", p.RelativeTime),
		zap.Int("bytes", len(data)),
		zap.Float64("changed_ratio", res.ChangedRatio))
	return nil
}
