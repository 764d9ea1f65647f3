package scene

import (
	"fmt"

	"Crystal3D/internal/crystal"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/logger"
	"Crystal3D/internal/renderer"

	"go.uber.org/zap"
)

// BackendFactory creates a backend for a selector value.
type BackendFactory func(kind renderer.BackendKind) (renderer.Backend, error)

// Manager is the host facing side of one viewport. It keeps the parameters,
// rig and backend selector across mounts and owns at most one live Handle.
type Manager struct {
	factory  BackendFactory
	resolver *environment.Resolver
	opts     []Option

	kind     renderer.BackendKind
	params   crystal.Params
	rig      lighting.Snapshot
	viewport renderer.Viewport
	handle   *Handle
}

func NewManager(factory BackendFactory, kind renderer.BackendKind, resolver *environment.Resolver, opts ...Option) *Manager {
	return &Manager{
		factory:  factory,
		resolver: resolver,
		opts:     opts,
		kind:     kind,
		params:   crystal.DefaultParams(),
		rig:      lighting.DefaultSnapshot(),
	}
}

// Mount creates a handle for vp with the current parameters and rig. A
// live handle is replaced only once the new one has mounted; on error it
// stays in place.
func (m *Manager) Mount(vp renderer.Viewport) error {
	h, err := m.build(m.kind, vp)
	if err != nil {
		return err
	}
	m.swap(h, vp)
	return nil
}

func (m *Manager) build(kind renderer.BackendKind, vp renderer.Viewport) (*Handle, error) {
	backend, err := m.factory(kind)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", vp.ID, err)
	}
	opts := append(append([]Option(nil), m.opts...), WithRig(m.rig))
	h := New(backend, m.resolver, opts...)
	if err := h.Mount(vp, m.params); err != nil {
		h.Dispose()
		return nil, err
	}
	return h, nil
}

func (m *Manager) swap(h *Handle, vp renderer.Viewport) {
	m.Unmount()
	m.viewport = vp
	m.handle = h
}

// Mounted reports whether a live handle exists.
func (m *Manager) Mounted() bool {
	return m.handle != nil
}

// Handle returns the live handle, nil when unmounted.
func (m *Manager) Handle() *Handle {
	return m.handle
}

func (m *Manager) Params() crystal.Params {
	return m.params
}

func (m *Manager) Backend() renderer.BackendKind {
	return m.kind
}

// UpdateParameters records params and recompiles the live material.
func (m *Manager) UpdateParameters(p crystal.Params) error {
	m.params = p
	if m.handle == nil {
		return nil
	}
	return m.handle.UpdateParameters(p)
}

// SetBackend switches the backend selector. A mounted scene is rebuilt on the
// new backend; if that fails the old scene and selector are kept.
func (m *Manager) SetBackend(kind renderer.BackendKind) error {
	if kind == m.kind {
		return nil
	}
	if m.handle == nil {
		k, err := renderer.ParseBackendKind(string(kind))
		if err != nil {
			return err
		}
		m.kind = k
		return nil
	}
	h, err := m.build(kind, m.viewport)
	if err != nil {
		logger.Log.Warn("Backend switch failed, keeping current scene",
			zap.String("viewport", m.viewport.ID),
			zap.String("backend", string(kind)),
			zap.Error(err))
		return err
	}
	logger.Log.Info("Switching backend",
		zap.String("viewport", m.viewport.ID),
		zap.String("from", string(m.kind)),
		zap.String("to", string(kind)))
	m.swap(h, m.viewport)
	m.kind = kind
	return nil
}

// ApplyRig commits a rig snapshot to the scene.
func (m *Manager) ApplyRig(s lighting.Snapshot) error {
	m.rig = s
	if m.handle == nil {
		return nil
	}
	return m.handle.ApplyRig(s)
}

// Resize forwards a viewport size change.
func (m *Manager) Resize(width, height int32) {
	m.viewport.Width, m.viewport.Height = width, height
	if m.handle != nil {
		m.handle.Resize(width, height)
	}
}

// Frame drives the live handle, if any.
func (m *Manager) Frame() {
	if m.handle != nil {
		m.handle.Frame()
	}
}

// Unmount disposes the live handle. Safe to call when unmounted.
func (m *Manager) Unmount() {
	if m.handle == nil {
		return
	}
	m.handle.Dispose()
	m.handle = nil
}
