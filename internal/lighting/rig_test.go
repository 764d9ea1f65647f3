package lighting

import (
	"errors"
	"testing"

	"Crystal3D/internal/crystal"

	"github.com/go-gl/mathgl/mgl32"
)

func firstAmbient(t *testing.T, r *Rig) Light {
	t.Helper()
	for _, l := range r.Lights() {
		if l.Type == Ambient {
			return l
		}
	}
	t.Fatal("rig has no ambient light")
	return Light{}
}

func TestNewRigHasAmbient(t *testing.T) {
	r := NewRig()
	if r.Snapshot().Ambient() != 1 {
		t.Errorf("Expected 1 ambient light, got %d", r.Snapshot().Ambient())
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 seeded lights, got %d", r.Len())
	}
}

func TestRemoveLastAmbientRejected(t *testing.T) {
	r := NewRig()
	amb := firstAmbient(t, r)
	before := r.Len()

	err := r.Remove(amb.ID)
	if err == nil {
		t.Fatal("Removing the last ambient light should fail")
	}
	var iv *InvariantViolation
	if !errors.As(err, &iv) {
		t.Fatalf("Expected *InvariantViolation, got %T", err)
	}
	if r.Len() != before {
		t.Errorf("Rig changed after rejected remove: %d -> %d", before, r.Len())
	}
}

func TestAddTwoAmbientsThenRemove(t *testing.T) {
	r := NewRig()
	seed := firstAmbient(t, r)

	a1, err := r.Add(Ambient)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	a2, err := r.Add(Ambient)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if a1.ID == a2.ID {
		t.Fatal("Added lights must have unique ids")
	}

	if err := r.Remove(a1.ID); err != nil {
		t.Fatalf("Removing one of several ambients should succeed: %v", err)
	}
	if err := r.Remove(seed.ID); err != nil {
		t.Fatalf("Removing the seeded ambient should succeed while another exists: %v", err)
	}
	if err := r.Remove(a2.ID); !IsInvariantViolation(err) {
		t.Fatalf("Removing the remaining ambient should be rejected, got %v", err)
	}
	if r.Snapshot().Ambient() != 1 {
		t.Errorf("Expected one ambient to remain, got %d", r.Snapshot().Ambient())
	}
}

func TestTwoAmbientRigRejectsSecondRemove(t *testing.T) {
	snap, err := NewSnapshot([]Light{
		{ID: "light-1", Type: Directional, Color: "#ffffff", Intensity: 1.5, Position: mgl32.Vec3{5, 5, 5}},
		{ID: "light-2", Type: Ambient, Color: "#ffffff", Intensity: 0.4},
		{ID: "light-3", Type: Ambient, Color: "#ffeedd", Intensity: 0.2},
	})
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	r := NewRigFrom(snap)

	if err := r.Remove("light-2"); err != nil {
		t.Fatalf("Removing the first of two ambients should succeed: %v", err)
	}
	if err := r.Remove("light-3"); !IsInvariantViolation(err) {
		t.Fatalf("Removing the remaining ambient should be rejected, got %v", err)
	}
	if r.Len() != 2 || r.Snapshot().Ambient() != 1 {
		t.Errorf("Expected 2 lights with 1 ambient, got %d lights with %d ambient", r.Len(), r.Snapshot().Ambient())
	}
	if l, _ := r.Add(Point); l.ID != "light-4" {
		t.Errorf("Expected new ids to continue at light-4, got %s", l.ID)
	}
}

func TestAddDefaults(t *testing.T) {
	r := NewRig()
	amb, _ := r.Add(Ambient)
	pt, _ := r.Add(Point)
	dir, _ := r.Add(Directional)

	if amb.Intensity >= pt.Intensity || amb.Intensity >= dir.Intensity {
		t.Error("Ambient default should be dimmer than key lights")
	}
	if pt.Position == (mgl32.Vec3{}) || dir.Position == (mgl32.Vec3{}) {
		t.Error("Non-ambient defaults should be offset from the origin")
	}
	if _, err := r.Add("spot"); !IsInvariantViolation(err) {
		t.Errorf("Unknown type should be rejected, got %v", err)
	}
}

func TestRemoveUnknown(t *testing.T) {
	r := NewRig()
	if err := r.Remove("light-99"); !errors.Is(err, ErrLightNotFound) {
		t.Errorf("Expected ErrLightNotFound, got %v", err)
	}
}

func TestUpdatePatch(t *testing.T) {
	r := NewRig()
	pt, _ := r.Add(Point)

	got, err := r.Update(pt.ID, LightPatch{Intensity: crystal.F32(3)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Intensity != 3 || got.Color != pt.Color || got.Position != pt.Position {
		t.Errorf("Patch should only change intensity, got %+v", got)
	}

	if _, err := r.Update(pt.ID, LightPatch{Intensity: crystal.F32(-1)}); !IsInvariantViolation(err) {
		t.Errorf("Negative intensity should be rejected, got %v", err)
	}
	if _, err := r.Update(pt.ID, LightPatch{Color: crystal.Hex("blue")}); !IsInvariantViolation(err) {
		t.Errorf("Invalid color should be rejected, got %v", err)
	}
	l, _ := r.Snapshot().Find(pt.ID)
	if l.Intensity != 3 {
		t.Errorf("Rejected updates must not change the rig, intensity=%v", l.Intensity)
	}
}

func TestSetField(t *testing.T) {
	r := NewRig()
	pt, _ := r.Add(Point)

	if _, err := r.SetField(pt.ID, FieldColor, "#ff8800"); err != nil {
		t.Fatalf("SetField color failed: %v", err)
	}
	if _, err := r.SetField(pt.ID, FieldIntensity, 0.5); err != nil {
		t.Fatalf("SetField intensity failed: %v", err)
	}
	if _, err := r.SetField(pt.ID, FieldPosition, [3]float32{1, 2, 3}); err != nil {
		t.Fatalf("SetField position failed: %v", err)
	}
	l, _ := r.Snapshot().Find(pt.ID)
	if l.Color != "#ff8800" || l.Intensity != 0.5 || l.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("Unexpected light after SetField: %+v", l)
	}
	if _, err := r.SetField(pt.ID, FieldIntensity, "bright"); !IsInvariantViolation(err) {
		t.Errorf("Wrong value type should be rejected, got %v", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	r := NewRig()
	snap := r.Snapshot()
	pt, _ := r.Add(Point)

	if _, ok := snap.Find(pt.ID); ok {
		t.Error("Earlier snapshot must not observe later mutations")
	}
	lights := snap.Lights()
	lights[0].Intensity = 42
	if snap.Lights()[0].Intensity == 42 {
		t.Error("Snapshot lights must be copies")
	}
}

func TestSelection(t *testing.T) {
	r := NewRig()
	pt, _ := r.Add(Point)
	snap := r.Snapshot()

	if err := r.Select(pt.ID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if sel, ok := r.Selected(); !ok || sel.ID != pt.ID {
		t.Errorf("Expected %s selected", pt.ID)
	}
	if r.Snapshot().Len() != snap.Len() {
		t.Error("Select must not mutate the rig")
	}

	if err := r.Remove(pt.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := r.Selected(); ok {
		t.Error("Removing the selected light should clear selection")
	}

	if err := r.Select("light-404"); !errors.Is(err, ErrLightNotFound) {
		t.Errorf("Expected ErrLightNotFound, got %v", err)
	}
	r.Deselect()
}

func TestNewSnapshotValidation(t *testing.T) {
	if _, err := NewSnapshot([]Light{{ID: "a", Type: Point}}); !IsInvariantViolation(err) {
		t.Errorf("Snapshot without ambient should be rejected, got %v", err)
	}
	if _, err := NewSnapshot([]Light{{ID: "a", Type: Ambient}, {ID: "a", Type: Point}}); !IsInvariantViolation(err) {
		t.Errorf("Duplicate ids should be rejected, got %v", err)
	}

	s, err := NewSnapshot([]Light{{ID: "light-7", Type: Ambient, Color: "#fff", Intensity: 0.3}})
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	r := NewRigFrom(s)
	l, _ := r.Add(Point)
	if l.ID != "light-8" {
		t.Errorf("Expected ids to continue at light-8, got %s", l.ID)
	}
}
