// Package scene owns the per-viewport crystal scene: its surface, camera,
// compiled mesh and material, lights, environment binding and animation.
package scene

import (
	"errors"
	"fmt"

	"Crystal3D/internal/animation"
	"Crystal3D/internal/crystal"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/logger"
	"Crystal3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrDisposed is the panic value of any operation on a disposed handle.
	ErrDisposed   = errors.New("scene: handle disposed")
	ErrNotMounted = errors.New("scene: handle not mounted")
	ErrMounted    = errors.New("scene: handle already mounted")
)

type State int

const (
	Uninitialized State = iota
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	}
	return "uninitialized"
}

// CrystalRadius is the gem's radius in world units.
const CrystalRadius float32 = 1

// Option configures a Handle.
type Option func(*Handle)

// WithClock injects the animation clock.
func WithClock(c animation.Clock) Option {
	return func(h *Handle) {
		h.clock = c
	}
}

// WithFrames injects the host frame source. Without one the handle owns a
// ManualFrames stepped by Frame.
func WithFrames(f animation.FrameSource) Option {
	return func(h *Handle) {
		h.frames = f
	}
}

// WithRig sets the light rig applied at mount.
func WithRig(s lighting.Snapshot) Option {
	return func(h *Handle) {
		h.rig = s
	}
}

// WithOrigin sets the crystal's resting position.
func WithOrigin(p mgl32.Vec3) Option {
	return func(h *Handle) {
		h.origin = p
	}
}

// Handle is one viewport's scene. It is driven from a single goroutine.
type Handle struct {
	backend      renderer.Backend
	resolver     *environment.Resolver
	ownsResolver bool
	ownsFrames   bool
	clock        animation.Clock
	frames       animation.FrameSource
	origin       mgl32.Vec3

	state     State
	params    crystal.Params
	rig       lighting.Snapshot
	camera    *renderer.Camera
	surface   renderer.Surface
	geometry  *renderer.Geometry
	mesh      renderer.Mesh
	material  renderer.Material
	env       *environment.Source
	binding   *environment.Binding
	lights    []renderer.Light
	lanes     orbitLanes
	scheduler *animation.Scheduler
}

// New returns an unmounted handle. A nil resolver gives the handle its own
// fallback-only resolver.
func New(backend renderer.Backend, resolver *environment.Resolver, opts ...Option) *Handle {
	h := &Handle{backend: backend, resolver: resolver, rig: lighting.DefaultSnapshot(), lanes: orbitLanes{}}
	for _, o := range opts {
		o(h)
	}
	if h.resolver == nil {
		h.resolver = environment.NewResolver(nil)
		h.ownsResolver = true
	}
	if h.frames == nil {
		h.frames = animation.NewManualFrames()
		h.ownsFrames = true
	}
	return h
}

func (h *Handle) check() {
	if h.state == Disposed {
		panic(ErrDisposed)
	}
}

func (h *Handle) State() State {
	return h.state
}

// Mount allocates every resource of the scene and starts the animation. On
// failure whatever was acquired is released and the handle stays unmounted.
func (h *Handle) Mount(vp renderer.Viewport, params crystal.Params) (err error) {
	h.check()
	if h.state == Ready {
		return ErrMounted
	}

	var undo renderer.Unwind
	defer func() {
		if err != nil {
			undo.Unwind()
			logger.Log.Error("Scene mount failed", zap.String("viewport", vp.ID), zap.Error(err))
		}
	}()

	surface, err := h.backend.NewSurface(vp)
	if err != nil {
		return fmt.Errorf("mount %s: %w", vp.ID, err)
	}
	h.surface = surface
	undo.Add(func() {
		surface.Dispose()
		h.surface = nil
	})

	h.params = params
	h.camera = renderer.NewDefaultCamera(vp.Height, vp.Width)
	h.geometry = renderer.CrystalGeometry(CrystalRadius)

	h.binding = h.resolver.Resolve(h)
	undo.Add(h.releaseEnvironment)

	if err := h.buildMesh(&undo); err != nil {
		return fmt.Errorf("mount %s: %w", vp.ID, err)
	}

	lights, err := h.createLights(h.rig)
	if err != nil {
		return fmt.Errorf("mount %s: %w", vp.ID, err)
	}
	h.attachLights(lights)
	undo.Add(h.detachLights)

	h.scheduler = animation.NewScheduler(h.clock, h.frames)
	h.scheduler.SetMesh(h.mesh, h.origin)
	h.scheduler.SetOrbiters(h.orbiters())
	h.scheduler.Start()

	h.state = Ready
	undo.Discard()
	logger.Log.Info("Scene mounted",
		zap.String("viewport", vp.ID),
		zap.String("backend", string(h.backend.Kind())),
		zap.Stringer("environment", h.env.Kind))
	return nil
}

// buildMesh compiles the material for the current environment and attaches a
// new mesh to the surface.
func (h *Handle) buildMesh(undo *renderer.Unwind) error {
	mat, err := renderer.Compile(h.params, h.env, h.backend)
	if err != nil {
		return err
	}
	h.material = mat
	undo.Add(h.releaseMaterial)

	mesh, err := h.backend.NewMesh(h.geometry, mat)
	if err != nil {
		return fmt.Errorf("create mesh: %w", err)
	}
	h.mesh = mesh
	h.surface.AddMesh(mesh)
	undo.Add(h.releaseMesh)
	return nil
}

// SetEnvironment installs src and recompiles the material against it. The
// resolver calls it with the fallback during Mount and again from the
// mailbox once a real environment loaded.
func (h *Handle) SetEnvironment(src *environment.Source) {
	if h.state == Disposed {
		return
	}
	h.env = src
	if h.surface != nil {
		h.surface.SetEnvironment(src)
	}
	if h.mesh == nil {
		return
	}
	mat, err := renderer.Compile(h.params, src, h.backend)
	if err != nil {
		logger.Log.Error("Recompile for new environment failed", zap.Error(err))
		return
	}
	h.swapMaterial(mat)
}

func (h *Handle) swapMaterial(mat renderer.Material) {
	prev := h.material
	h.mesh.SetMaterial(mat)
	h.material = mat
	if prev != nil {
		prev.Dispose()
	}
}

// Environment returns the installed environment source.
func (h *Handle) Environment() *environment.Source {
	h.check()
	return h.env
}

func (h *Handle) Binding() *environment.Binding {
	h.check()
	return h.binding
}

func (h *Handle) Material() renderer.Material {
	h.check()
	return h.material
}

func (h *Handle) Mesh() renderer.Mesh {
	h.check()
	return h.mesh
}

func (h *Handle) Surface() renderer.Surface {
	h.check()
	return h.surface
}

func (h *Handle) Camera() *renderer.Camera {
	h.check()
	return h.camera
}

func (h *Handle) Lights() []renderer.Light {
	h.check()
	return append([]renderer.Light(nil), h.lights...)
}

func (h *Handle) Scheduler() *animation.Scheduler {
	h.check()
	return h.scheduler
}

func (h *Handle) Params() crystal.Params {
	h.check()
	return h.params
}

// UpdateParameters recompiles the material in place. Only the previous
// material is released; mesh, lights and environment are kept.
func (h *Handle) UpdateParameters(params crystal.Params) error {
	h.check()
	if h.state != Ready {
		return ErrNotMounted
	}
	mat, err := renderer.Compile(params, h.env, h.backend)
	if err != nil {
		return fmt.Errorf("update parameters: %w", err)
	}
	h.params = params
	h.swapMaterial(mat)
	for _, l := range h.lights {
		l.SetIntensityScale(params.LightIntensity)
	}
	return nil
}

// Rebuild tears down mesh, material and environment and creates them again.
// The camera, surface and lights survive.
func (h *Handle) Rebuild(params crystal.Params) error {
	h.check()
	if h.state != Ready {
		return ErrNotMounted
	}
	h.releaseMesh()
	h.releaseMaterial()
	h.releaseEnvironment()

	h.params = params
	h.binding = h.resolver.Resolve(h)
	var undo renderer.Unwind
	if err := h.buildMesh(&undo); err != nil {
		undo.Unwind()
		return fmt.Errorf("rebuild: %w", err)
	}
	for _, l := range h.lights {
		l.SetIntensityScale(params.LightIntensity)
	}
	h.scheduler.SetMesh(h.mesh, h.origin)
	logger.Log.Debug("Scene rebuilt", zap.String("viewport", h.surface.Viewport().ID))
	return nil
}

// ApplyRig replaces the scene lights with the snapshot's. The new set is
// created before the old one is released, so a failure leaves the scene as it was.
func (h *Handle) ApplyRig(s lighting.Snapshot) error {
	h.check()
	if h.state != Ready {
		h.rig = s
		return nil
	}
	lights, err := h.createLights(s)
	if err != nil {
		return fmt.Errorf("apply rig: %w", err)
	}
	h.detachLights()
	h.rig = s
	h.attachLights(lights)
	h.scheduler.SetOrbiters(h.orbiters())
	logger.Log.Debug("Rig applied", zap.Int("lights", len(lights)))
	return nil
}

// Rig returns the applied rig snapshot.
func (h *Handle) Rig() lighting.Snapshot {
	h.check()
	return h.rig
}

// Resize follows a viewport size change.
func (h *Handle) Resize(width, height int32) {
	h.check()
	if h.state != Ready {
		return
	}
	h.surface.Resize(width, height)
	h.camera.Resize(width, height)
}

// Frame is the host's per-frame callback: it applies finished environment
// loads, advances the animation when the handle owns its frame source, and
// renders.
func (h *Handle) Frame() {
	h.check()
	if h.state != Ready {
		return
	}
	h.resolver.Mailbox().Drain()
	if h.state != Ready {
		return
	}
	if h.ownsFrames {
		h.frames.(*animation.ManualFrames).Step()
	}
	h.surface.Render(h.camera)
}

// Dispose cancels the animation and the environment binding, then releases
// lights, mesh, material, environment and surface in that order. Idempotent.
func (h *Handle) Dispose() {
	if h.state == Disposed {
		return
	}
	mounted := h.state == Ready
	h.state = Disposed
	if h.scheduler != nil {
		h.scheduler.Cancel()
	}
	if h.binding != nil {
		h.binding.Cancel()
		h.resolver.Mailbox().Drain()
	}
	h.detachLights()
	h.releaseMesh()
	h.releaseMaterial()
	h.releaseEnvironment()
	if h.surface != nil {
		h.surface.Dispose()
		h.surface = nil
	}
	if h.ownsResolver {
		h.resolver.Close()
		h.resolver.Mailbox().Drain()
	}
	if mounted {
		logger.Log.Info("Scene disposed")
	}
}

func (h *Handle) createLights(s lighting.Snapshot) (lights []renderer.Light, err error) {
	var undo renderer.Unwind
	defer func() {
		if err != nil {
			undo.Unwind()
		}
	}()
	for _, src := range s.Lights() {
		l, err := h.backend.NewLight(src, h.params.LightIntensity)
		if err != nil {
			return nil, fmt.Errorf("light %s: %w", src.ID, err)
		}
		undo.Add(l.Dispose)
		lights = append(lights, l)
	}
	return lights, nil
}

func (h *Handle) attachLights(lights []renderer.Light) {
	for _, l := range lights {
		h.surface.AddLight(l)
	}
	h.lights = lights
}

func (h *Handle) detachLights() {
	for _, l := range h.lights {
		if h.surface != nil {
			h.surface.RemoveLight(l)
		}
		l.Dispose()
	}
	h.lights = nil
}

func (h *Handle) orbiters() []animation.Orbiter {
	var (
		out []animation.Orbiter
		ids []string
	)
	for _, l := range h.lights {
		if src := l.Source(); src.Positional() {
			out = append(out, animation.Orbiter{Base: src.Position, Target: l})
			ids = append(ids, src.ID)
		}
	}
	for i, lane := range h.lanes.assign(ids) {
		out[i].Lane = lane
	}
	return out
}

func (h *Handle) releaseMesh() {
	if h.mesh == nil {
		return
	}
	if h.surface != nil {
		h.surface.RemoveMesh(h.mesh)
	}
	h.mesh.Dispose()
	h.mesh = nil
}

func (h *Handle) releaseMaterial() {
	if h.material == nil {
		return
	}
	h.material.Dispose()
	h.material = nil
}

func (h *Handle) releaseEnvironment() {
	if h.binding != nil {
		h.binding.Cancel()
		h.binding = nil
	}
	if h.env != nil {
		h.env.Dispose()
		h.env = nil
	}
}
