package engine

import (
	"Crystal3D/internal/crystal"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/logger"
	"Crystal3D/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Keys:
//
//	Tab / Shift+Tab  next / previous preset
//	B                switch backend
//	L                add a point light to the rig and commit it
//	Backspace        remove the last light (the last ambient light stays)
//	W                toggle wireframe
//	Escape           quit
func (v *Viewer) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyTab:
		if mods&glfw.ModShift != 0 {
			v.cyclePreset(-1)
		} else {
			v.cyclePreset(1)
		}
	case glfw.KeyB:
		v.toggleBackend()
	case glfw.KeyL:
		v.addLight(lighting.Point)
	case glfw.KeyBackspace:
		v.removeLastLight()
	case glfw.KeyW:
		v.toggleWireframe()
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	}
}

func (v *Viewer) indexOf(id string) int {
	for i, p := range v.catalog.List() {
		if p.ID == id {
			return i
		}
	}
	return 0
}

func (v *Viewer) cyclePreset(step int) {
	n := v.catalog.Len()
	if n == 0 {
		return
	}
	v.selectPreset(((v.preset+step)%n + n) % n)
}

func (v *Viewer) selectPreset(i int) {
	presets := v.catalog.List()
	if i < 0 || i >= len(presets) {
		return
	}
	v.preset = i
	params := crystal.ApplyPreset(crystal.DefaultParams(), presets[i])
	if err := v.manager.UpdateParameters(params); err != nil {
		logger.Log.Error("Failed to apply preset", zap.String("preset", presets[i].ID), zap.Error(err))
		return
	}
	logger.Log.Info("Preset selected", zap.String("preset", presets[i].ID), zap.String("name", presets[i].Name))
}

// setCatalog swaps in a reloaded catalog and reapplies the current preset by id.
func (v *Viewer) setCatalog(c *crystal.Catalog) {
	current := ""
	if presets := v.catalog.List(); v.preset < len(presets) {
		current = presets[v.preset].ID
	}
	v.catalog = c
	v.selectPreset(v.indexOf(current))
}

func (v *Viewer) toggleBackend() {
	next := renderer.G3N
	if v.manager.Backend() == renderer.G3N {
		next = renderer.OpenGL
	}
	if err := v.manager.SetBackend(next); err != nil {
		logger.Log.Error("Backend switch failed", zap.String("backend", string(next)), zap.Error(err))
	}
}

func (v *Viewer) addLight(t lighting.LightType) {
	if _, err := v.rig.Add(t); err != nil {
		logger.Log.Warn("Light not added", zap.Error(err))
		return
	}
	v.commitRig()
}

func (v *Viewer) removeLastLight() {
	lights := v.rig.Lights()
	if len(lights) == 0 {
		return
	}
	if err := v.rig.Remove(lights[len(lights)-1].ID); err != nil {
		logger.Log.Warn("Light not removed", zap.Error(err))
		return
	}
	v.commitRig()
}

func (v *Viewer) commitRig() {
	if err := v.manager.ApplyRig(v.rig.Snapshot()); err != nil {
		logger.Log.Error("Failed to apply rig", zap.Error(err))
	}
}

func (v *Viewer) toggleWireframe() {
	p := v.manager.Params()
	p.Wireframe = !p.Wireframe
	if err := v.manager.UpdateParameters(p); err != nil {
		logger.Log.Error("Failed to toggle wireframe", zap.Error(err))
	}
}
