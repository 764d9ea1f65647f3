package scene

import (
	"errors"
	"fmt"

	"Crystal3D/internal/crystal"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrDuplicateViewport = errors.New("scene: viewport already registered")

// Hub keeps every mounted viewport in sync with the editor: parameter edits
// and rig commits are fanned out to all registered managers.
type Hub struct {
	managers map[string]*Manager
	order    []string
}

func NewHub() *Hub {
	return &Hub{managers: make(map[string]*Manager)}
}

func (h *Hub) Register(id string, m *Manager) error {
	if _, ok := h.managers[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateViewport, id)
	}
	h.managers[id] = m
	h.order = append(h.order, id)
	return nil
}

// Unregister unmounts and forgets the viewport's manager.
func (h *Hub) Unregister(id string) {
	m, ok := h.managers[id]
	if !ok {
		return
	}
	m.Unmount()
	delete(h.managers, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

func (h *Hub) Get(id string) (*Manager, bool) {
	m, ok := h.managers[id]
	return m, ok
}

func (h *Hub) Len() int {
	return len(h.managers)
}

// Publish sends params to every manager. One failing viewport does not stop
// the others; failures are combined.
func (h *Hub) Publish(p crystal.Params) error {
	var errs error
	for _, id := range h.order {
		if err := h.managers[id].UpdateParameters(p); err != nil {
			logger.Log.Warn("Viewport rejected parameters", zap.String("viewport", id), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errs
}

// ApplyRig commits s to every manager.
func (h *Hub) ApplyRig(s lighting.Snapshot) error {
	var errs error
	for _, id := range h.order {
		if err := h.managers[id].ApplyRig(s); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errs
}

// Frame drives every mounted viewport in registration order.
func (h *Hub) Frame() {
	for _, id := range h.order {
		h.managers[id].Frame()
	}
}

// Close unregisters every viewport.
func (h *Hub) Close() {
	for len(h.order) > 0 {
		h.Unregister(h.order[len(h.order)-1])
	}
}
