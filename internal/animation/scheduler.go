package animation

import (
	"Crystal3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MeshTarget receives the crystal transform every tick.
type MeshTarget interface {
	SetTransform(t Transform)
}

// LightTarget receives an orbiting light's position every tick.
type LightTarget interface {
	SetPosition(p mgl32.Vec3)
}

// Orbiter is a non-ambient light animated around Base. Lane selects its
// orbit and must stay the same for as long as the light exists.
type Orbiter struct {
	Base   mgl32.Vec3
	Lane   int
	Target LightTarget
}

// Scheduler advances the clock once per display frame and applies the pose
// functions to its targets. Cancel is terminal.
type Scheduler struct {
	clock    Clock
	frames   FrameSource
	mesh     MeshTarget
	origin   mgl32.Vec3
	orbiters []Orbiter
	onTick   func(t float32)

	pending   FrameID
	hasFrame  bool
	running   bool
	cancelled bool
	ticks     int
}

// NewScheduler returns an idle scheduler. A nil clock selects a FixedClock
// with the nominal step.
func NewScheduler(clock Clock, frames FrameSource) *Scheduler {
	if clock == nil {
		clock = NewFixedClock(NominalStep)
	}
	return &Scheduler{clock: clock, frames: frames}
}

// SetMesh sets the animated mesh and its resting position.
func (s *Scheduler) SetMesh(m MeshTarget, origin mgl32.Vec3) {
	s.mesh = m
	s.origin = origin
}

// SetOrbiters replaces the animated lights, e.g. after a rig is applied.
func (s *Scheduler) SetOrbiters(o []Orbiter) {
	s.orbiters = append([]Orbiter(nil), o...)
}

// OnTick registers a hook called after targets are updated.
func (s *Scheduler) OnTick(fn func(t float32)) {
	s.onTick = fn
}

// Start begins requesting frames. Starting a running or cancelled scheduler is a no-op.
func (s *Scheduler) Start() {
	if s.cancelled {
		logger.Log.Warn("Start called on cancelled scheduler")
		return
	}
	if s.running {
		return
	}
	s.running = true
	s.request()
}

// Cancel stops the schedule. No tick runs after Cancel returns, including a
// callback the frame source had already queued.
func (s *Scheduler) Cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	s.running = false
	if s.hasFrame {
		s.frames.Cancel(s.pending)
		s.hasFrame = false
	}
	logger.Log.Debug("Scheduler cancelled", zap.Int("ticks", s.ticks), zap.Float32("t", s.clock.Now()))
}

// Running reports whether frames are being requested.
func (s *Scheduler) Running() bool {
	return s.running
}

// Cancelled reports whether Cancel was called.
func (s *Scheduler) Cancelled() bool {
	return s.cancelled
}

// Ticks returns how many ticks have been applied.
func (s *Scheduler) Ticks() int {
	return s.ticks
}

// Time returns the current virtual time.
func (s *Scheduler) Time() float32 {
	return s.clock.Now()
}

func (s *Scheduler) request() {
	s.pending = s.frames.Request(s.tick)
	s.hasFrame = true
}

func (s *Scheduler) tick() {
	s.hasFrame = false
	if s.cancelled || !s.running {
		return
	}
	t := s.clock.Advance()
	s.apply(t)
	s.ticks++
	s.request()
}

func (s *Scheduler) apply(t float32) {
	if s.mesh != nil {
		s.mesh.SetTransform(FromPose(s.origin, CrystalPose(t)))
	}
	for _, o := range s.orbiters {
		if o.Target != nil {
			o.Target.SetPosition(LightOrbit(o.Base, t, o.Lane))
		}
	}
	if s.onTick != nil {
		s.onTick(t)
	}
}
