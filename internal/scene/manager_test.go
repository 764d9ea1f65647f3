package scene

import (
	"errors"
	"testing"

	"Crystal3D/internal/crystal"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/renderer"
)

func testFactory(d renderer.Device) BackendFactory {
	return func(kind renderer.BackendKind) (renderer.Backend, error) {
		switch kind {
		case renderer.OpenGL:
			return renderer.NewOpenGLBackend(d), nil
		case renderer.G3N:
			return renderer.NewG3NBackend(), nil
		}
		return nil, renderer.ErrUnknownBackend
	}
}

func TestManagerKeepsParametersAcrossMounts(t *testing.T) {
	m := NewManager(testFactory(newCountingDevice()), renderer.G3N, nil)
	p := crystal.DefaultParams()
	p.Iridescence = 0.7
	if err := m.UpdateParameters(p); err != nil {
		t.Fatalf("Update before mount should only record params: %v", err)
	}
	if err := m.Mount(preview); err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()

	if got := m.Handle().Material().Spec().Iridescence; got != 0.7 {
		t.Errorf("Expected iridescence 0.7, got %v", got)
	}
}

func TestManagerSwitchesBackend(t *testing.T) {
	d := newCountingDevice()
	m := NewManager(testFactory(d), renderer.G3N, nil)
	if err := m.Mount(preview); err != nil {
		t.Fatal(err)
	}
	old := m.Handle()

	if err := m.SetBackend(renderer.OpenGL); err != nil {
		t.Fatal(err)
	}
	if old.State() != Disposed {
		t.Error("Previous handle should be disposed on backend switch")
	}
	if kind := m.Handle().Material().Kind(); kind != renderer.OpenGL {
		t.Errorf("Expected opengl material, got %s", kind)
	}

	m.Unmount()
	m.Unmount()
	if m.Mounted() {
		t.Error("Expected unmounted")
	}
	if len(d.live) != 0 {
		t.Errorf("Expected GPU objects freed, still live: %v", d.live)
	}
}

func TestManagerUnknownBackend(t *testing.T) {
	m := NewManager(testFactory(newCountingDevice()), "vulkan", nil)
	if err := m.Mount(preview); !errors.Is(err, renderer.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
	if m.Mounted() {
		t.Error("Failed mount must not leave a handle")
	}
}

func TestFailedBackendSwitchKeepsScene(t *testing.T) {
	d := newCountingDevice()
	m := NewManager(testFactory(d), renderer.G3N, nil)
	if err := m.Mount(preview); err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()
	live := m.Handle()

	if err := m.SetBackend("vulkan"); !errors.Is(err, renderer.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
	if m.Handle() != live || live.State() != Ready {
		t.Error("Failed switch must keep the mounted scene")
	}
	if m.Backend() != renderer.G3N {
		t.Errorf("Expected selector to stay g3n, got %s", m.Backend())
	}

	// A backend that fails while mounting is rejected the same way.
	d.failProg = true
	if err := m.SetBackend(renderer.OpenGL); err == nil {
		t.Error("Expected mount error from failing OpenGL backend")
	}
	if m.Handle() != live || m.Backend() != renderer.G3N {
		t.Error("Failed mount must keep the previous scene and selector")
	}
	if len(d.live) != 0 {
		t.Errorf("Expected partial OpenGL mount released, still live: %v", d.live)
	}

	if err := m.Mount(preview); err != nil {
		t.Errorf("Remount after failed switch should succeed: %v", err)
	}
}

func TestSetBackendBeforeMount(t *testing.T) {
	m := NewManager(testFactory(newCountingDevice()), renderer.G3N, nil)
	if err := m.SetBackend("vulkan"); !errors.Is(err, renderer.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
	if err := m.SetBackend(renderer.OpenGL); err != nil {
		t.Fatal(err)
	}
	if m.Backend() != renderer.OpenGL || m.Mounted() {
		t.Errorf("Expected unmounted opengl selector, got %s mounted=%v", m.Backend(), m.Mounted())
	}
}

func TestManagerRigSurvivesRemount(t *testing.T) {
	m := NewManager(testFactory(newCountingDevice()), renderer.G3N, nil)
	rig := lighting.NewRig()
	rig.Add(lighting.Point)
	rig.Add(lighting.Point)
	if err := m.ApplyRig(rig.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if err := m.Mount(preview); err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()
	if n := len(m.Handle().Lights()); n != 4 {
		t.Errorf("Expected 4 lights from the committed rig, got %d", n)
	}
}

func TestHubFansOutEdits(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	for _, id := range []string{"hero", "admin"} {
		m := NewManager(testFactory(newCountingDevice()), renderer.G3N, nil)
		if err := m.Mount(renderer.Viewport{ID: id, Width: 100, Height: 100}); err != nil {
			t.Fatal(err)
		}
		if err := hub.Register(id, m); err != nil {
			t.Fatal(err)
		}
	}
	if err := hub.Register("hero", NewManager(nil, renderer.G3N, nil)); !errors.Is(err, ErrDuplicateViewport) {
		t.Errorf("Expected ErrDuplicateViewport, got %v", err)
	}

	p := crystal.DefaultParams()
	p.Color = "#00ff00"
	if err := hub.Publish(p); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"hero", "admin"} {
		m, _ := hub.Get(id)
		if c := m.Handle().Material().Spec().BaseColor; c.Y() != 1 || c.X() != 0 {
			t.Errorf("%s: expected green base color, got %v", id, c)
		}
	}
	hub.Frame()

	admin, _ := hub.Get("admin")
	h := admin.Handle()
	hub.Unregister("admin")
	if h.State() != Disposed {
		t.Error("Unregister should unmount the viewport")
	}
	if hub.Len() != 1 {
		t.Errorf("Expected 1 viewport, got %d", hub.Len())
	}
}
