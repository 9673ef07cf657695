// Package registry owns the set of live capture sessions: creation,
// lookup, and teardown. The mutex guards only the session table; capture,
// encoding and delivery all run outside it.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/vburojevic/scw/internal/capture"
	"github.com/vburojevic/scw/internal/detector"
	"github.com/vburojevic/scw/internal/domain"
	"github.com/vburojevic/scw/internal/encode"
	"github.com/vburojevic/scw/internal/scheduler"
	"github.com/vburojevic/scw/internal/slot"
)

// Options describes one start request.
type Options struct {
	// Target is the reference the locator and source resolve, e.g.
	// "display:0".
	Target string
	// FPS is the requested capture rate. Must be positive.
	FPS int
	// Quality is the encoder quality, 1-100. 0 selects the default.
	Quality int
	// MaxWidth bounds the captured frame width. 0 disables scaling.
	MaxWidth int
	// Detection overrides the change-detection tuning. Zero fields fall
	// back to detector defaults.
	Detection detector.Config
	// KeyframePeriod forces an emission at least this often. Used to
	// derive the keyframe tick count when Detection.KeyframeTicks is
	// unset. 0 keeps the detector default.
	KeyframePeriod time.Duration
	// Deliver receives emitted payloads. Optional; GetLatest works
	// either way.
	Deliver scheduler.DeliveryFunc
}

const defaultQuality = 65

// Deps are the collaborators shared by every session. Clock and Logger
// may be nil.
type Deps struct {
	Source  capture.FrameSource
	Locator capture.TargetLocator
	Encoder encode.Encoder
	Clock   clock.Clock
	Logger  *zap.Logger
}

type session struct {
	id     string
	target string
	out    *slot.Slot
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry is safe for concurrent use. Operations on different sessions
// never block each other; only table mutation is serialized.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session

	source  capture.FrameSource
	locator capture.TargetLocator
	encoder encode.Encoder
	clk     clock.Clock
	log     *zap.Logger
}

// New creates an empty registry.
func New(deps Deps) *Registry {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*session),
		source:   deps.Source,
		locator:  deps.Locator,
		encoder:  deps.Encoder,
		clk:      deps.Clock,
		log:      deps.Logger,
	}
}

// Start validates the request and spawns one independent capture loop.
// Returns the new session id.
func (r *Registry) Start(opts Options) (string, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	cfg.SessionID = id

	out := slot.New()
	ctx, cancel := context.WithCancel(context.Background())
	sch := scheduler.New(cfg, scheduler.Deps{
		Source:  r.source,
		Locator: r.locator,
		Encoder: r.encoder,
		Slot:    out,
		Deliver: opts.Deliver,
		Clock:   r.clk,
		Logger:  r.log,
	})

	sess := &session{
		id:     id,
		target: opts.Target,
		out:    out,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	go func() {
		defer close(sess.done)
		if err := sch.Run(ctx); err != nil {
			r.log.Info("session ended", zap.String("session_id", id), zap.Error(err))
		}
		// Terminal failure (target lost) removes the session itself;
		// after that it simply disappears from ListActive.
		r.remove(id)
	}()

	return id, nil
}

// Stop cancels a session and waits for its loop to exit, so no further
// payload is emitted after Stop returns. Returns false for unknown (or
// already stopped) ids; stopping twice is a harmless no-op, never an
// error.
func (r *Registry) Stop(id string) bool {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return false
	}

	sess.cancel()
	<-sess.done
	return true
}

// StopAll stops every live session. Used at process shutdown.
func (r *Registry) StopAll() {
	for _, id := range r.ListActive() {
		r.Stop(id)
	}
}

// GetLatest returns the most recent payload for a session, or (nil, nil)
// when nothing has been emitted yet.
func (r *Registry) GetLatest(id string) (*domain.Payload, error) {
	sess, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	p, ok := sess.out.Latest()
	if !ok {
		return nil, nil
	}
	return p, nil
}

// Stats returns the session's slot drop counters.
func (r *Registry) Stats(id string) (slot.Stats, error) {
	sess, err := r.lookup(id)
	if err != nil {
		return slot.Stats{}, err
	}
	return sess.out.Stats(), nil
}

// ListActive returns the live session ids, sorted.
func (r *Registry) ListActive() []string {
	r.mu.Lock()
	ids := lo.Keys(r.sessions)
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}

func (r *Registry) lookup(id string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return sess, nil
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// buildConfig validates a start request and fills in defaults.
func buildConfig(opts Options) (scheduler.Config, error) {
	if opts.FPS <= 0 {
		return scheduler.Config{}, fmt.Errorf("%w: fps must be positive, got %d", domain.ErrInvalidConfiguration, opts.FPS)
	}
	if opts.Quality < 0 || opts.Quality > 100 {
		return scheduler.Config{}, fmt.Errorf("%w: quality must be 1-100, got %d", domain.ErrInvalidConfiguration, opts.Quality)
	}
	if opts.MaxWidth < 0 {
		return scheduler.Config{}, fmt.Errorf("%w: max width must not be negative, got %d", domain.ErrInvalidConfiguration, opts.MaxWidth)
	}
	if opts.Target == "" {
		return scheduler.Config{}, fmt.Errorf("%w: target is required", domain.ErrInvalidConfiguration)
	}

	interval := time.Second / time.Duration(opts.FPS)

	det := opts.Detection
	def := detector.DefaultConfig()
	if det.GridSize == 0 {
		det.GridSize = def.GridSize
	}
	if det.GridSize < 0 {
		return scheduler.Config{}, fmt.Errorf("%w: grid size must be positive, got %d", domain.ErrInvalidConfiguration, det.GridSize)
	}
	if det.ChangeThreshold == 0 {
		det.ChangeThreshold = def.ChangeThreshold
	}
	if det.ChangeThreshold < 0 || det.ChangeThreshold > 1 {
		return scheduler.Config{}, fmt.Errorf("%w: change threshold must be within [0,1], got %g", domain.ErrInvalidConfiguration, det.ChangeThreshold)
	}
	if det.SampleTolerance == 0 {
		det.SampleTolerance = def.SampleTolerance
	}
	if det.KeyframeTicks == 0 {
		if opts.KeyframePeriod > 0 {
			ticks := int(opts.KeyframePeriod / interval)
			if ticks < 1 {
				ticks = 1
			}
			det.KeyframeTicks = ticks
		} else {
			det.KeyframeTicks = def.KeyframeTicks
		}
	}

	quality := opts.Quality
	if quality == 0 {
		quality = defaultQuality
	}

	return scheduler.Config{
		Target:    opts.Target,
		Interval:  interval,
		Quality:   quality,
		MaxWidth:  opts.MaxWidth,
		Detection: det,
	}, nil
}
