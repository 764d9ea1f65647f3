package lighting

import (
	"fmt"
	"strconv"

	"Crystal3D/internal/crystal"
	"Crystal3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// Snapshot is an immutable view of a rig's lights in order.
type Snapshot struct {
	lights []Light
}

// Lights returns a copy of the snapshot's lights.
func (s Snapshot) Lights() []Light {
	return cloneLights(s.lights)
}

// Len returns the number of lights.
func (s Snapshot) Len() int {
	return len(s.lights)
}

// Ambient returns the number of ambient lights.
func (s Snapshot) Ambient() int {
	n := 0
	for _, l := range s.lights {
		if l.Type == Ambient {
			n++
		}
	}
	return n
}

// Find returns the light with id.
func (s Snapshot) Find(id string) (Light, bool) {
	for _, l := range s.lights {
		if l.ID == id {
			return l, true
		}
	}
	return Light{}, false
}

// NewSnapshot builds a snapshot from lights, typically restored from a saved
// scene. It must contain at least one ambient light.
func NewSnapshot(lights []Light) (Snapshot, error) {
	s := Snapshot{lights: cloneLights(lights)}
	if s.Ambient() == 0 {
		return Snapshot{}, &InvariantViolation{Op: "restore", Reason: "rig needs at least one ambient light"}
	}
	seen := make(map[string]bool, len(lights))
	for _, l := range lights {
		if !l.Type.Valid() {
			return Snapshot{}, &InvariantViolation{Op: "restore", ID: l.ID, Reason: "unknown light type " + string(l.Type)}
		}
		if seen[l.ID] || l.ID == "" {
			return Snapshot{}, &InvariantViolation{Op: "restore", ID: l.ID, Reason: "light ids must be unique and non-empty"}
		}
		seen[l.ID] = true
	}
	return s, nil
}

// DefaultSnapshot is the light set a scene uses before any rig is applied.
func DefaultSnapshot() Snapshot {
	return NewRig().Snapshot()
}

func cloneLights(in []Light) []Light {
	out := make([]Light, 0, len(in))
	if err := copier.CopyWithOption(&out, &in, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen here
		out = append(out[:0], in...)
	}
	return out
}

// LightPatch is a partial update. Nil fields are left unchanged.
type LightPatch struct {
	Color     *crystal.RGBHex
	Intensity *float32
	Position  *mgl32.Vec3
}

// Field names an editable light property for SetField.
type Field string

const (
	FieldColor     Field = "color"
	FieldIntensity Field = "intensity"
	FieldPosition  Field = "position"
)

// Rig is the editor-side light collection. Every mutation replaces the rig's
// current snapshot; scenes only observe the rig through Snapshot.
type Rig struct {
	current  Snapshot
	nextID   int
	selected string
}

// NewRig returns a rig seeded with one ambient and one directional light.
func NewRig() *Rig {
	r := &Rig{}
	r.current = Snapshot{lights: []Light{r.fresh(Ambient), r.fresh(Directional)}}
	return r
}

// NewRigFrom restores a rig from a snapshot. New ids continue after the
// highest numeric id present.
func NewRigFrom(s Snapshot) *Rig {
	r := &Rig{current: Snapshot{lights: s.Lights()}}
	for _, l := range s.lights {
		var n int
		if _, err := fmt.Sscanf(l.ID, "light-%d", &n); err == nil && n > r.nextID {
			r.nextID = n
		}
	}
	return r
}

func (r *Rig) fresh(t LightType) Light {
	r.nextID++
	l := defaultLight(t)
	l.ID = "light-" + strconv.Itoa(r.nextID)
	return l
}

// Snapshot returns the current immutable light set.
func (r *Rig) Snapshot() Snapshot {
	return Snapshot{lights: cloneLights(r.current.lights)}
}

// Lights is shorthand for Snapshot().Lights().
func (r *Rig) Lights() []Light {
	return r.current.Lights()
}

// Len returns the number of lights.
func (r *Rig) Len() int {
	return r.current.Len()
}

// Add appends a light of type t with type specific defaults.
func (r *Rig) Add(t LightType) (Light, error) {
	if !t.Valid() {
		return Light{}, &InvariantViolation{Op: "add", Reason: "unknown light type " + string(t)}
	}
	l := r.fresh(t)
	lights := r.current.Lights()
	r.current = Snapshot{lights: append(lights, l)}
	logger.Log.Debug("Light added", zap.String("id", l.ID), zap.String("type", string(t)))
	return l, nil
}

// Remove deletes light id. Removing the last ambient light is rejected.
func (r *Rig) Remove(id string) error {
	idx := r.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLightNotFound, id)
	}
	if r.current.lights[idx].Type == Ambient && r.current.Ambient() == 1 {
		return &InvariantViolation{Op: "remove", ID: id, Reason: "rig must keep at least one ambient light"}
	}

	lights := r.current.Lights()
	r.current = Snapshot{lights: append(lights[:idx], lights[idx+1:]...)}
	if r.selected == id {
		r.selected = ""
	}
	logger.Log.Debug("Light removed", zap.String("id", id))
	return nil
}

// Update applies a partial patch to light id and returns the updated light.
func (r *Rig) Update(id string, patch LightPatch) (Light, error) {
	idx := r.index(id)
	if idx < 0 {
		return Light{}, fmt.Errorf("%w: %s", ErrLightNotFound, id)
	}
	if patch.Color != nil && !patch.Color.Valid() {
		return Light{}, &InvariantViolation{Op: "update", ID: id, Reason: "invalid color " + string(*patch.Color)}
	}
	if patch.Intensity != nil && !(*patch.Intensity >= 0) {
		return Light{}, &InvariantViolation{Op: "update", ID: id, Reason: "intensity must be >= 0"}
	}

	lights := r.current.Lights()
	l := &lights[idx]
	if patch.Color != nil {
		l.Color = *patch.Color
	}
	if patch.Intensity != nil {
		l.Intensity = *patch.Intensity
	}
	if patch.Position != nil {
		l.Position = *patch.Position
	}
	r.current = Snapshot{lights: lights}
	return *l, nil
}

// SetField is the editor form of Update: value must be a crystal.RGBHex or
// string for color, a float32/float64 for intensity and an mgl32.Vec3 or
// [3]float32 for position.
func (r *Rig) SetField(id string, f Field, value interface{}) (Light, error) {
	var patch LightPatch
	bad := func() (Light, error) {
		return Light{}, &InvariantViolation{Op: "update", ID: id, Reason: fmt.Sprintf("bad value %v for %s", value, f)}
	}
	switch f {
	case FieldColor:
		switch v := value.(type) {
		case crystal.RGBHex:
			patch.Color = &v
		case string:
			patch.Color = crystal.Hex(crystal.RGBHex(v))
		default:
			return bad()
		}
	case FieldIntensity:
		switch v := value.(type) {
		case float32:
			patch.Intensity = &v
		case float64:
			patch.Intensity = crystal.F32(float32(v))
		default:
			return bad()
		}
	case FieldPosition:
		switch v := value.(type) {
		case mgl32.Vec3:
			patch.Position = &v
		case [3]float32:
			p := mgl32.Vec3(v)
			patch.Position = &p
		default:
			return bad()
		}
	default:
		return bad()
	}
	return r.Update(id, patch)
}

// Select moves the editor focus to light id. It does not modify the rig.
func (r *Rig) Select(id string) error {
	if r.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrLightNotFound, id)
	}
	r.selected = id
	return nil
}

// Deselect clears the editor focus.
func (r *Rig) Deselect() {
	r.selected = ""
}

// Selected returns the focused light, if any.
func (r *Rig) Selected() (Light, bool) {
	if r.selected == "" {
		return Light{}, false
	}
	return r.current.Find(r.selected)
}

func (r *Rig) index(id string) int {
	for i, l := range r.current.lights {
		if l.ID == id {
			return i
		}
	}
	return -1
}
