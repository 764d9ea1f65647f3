// Package lighting implements the editable light rig used by the lighting editor.
package lighting

import (
	"Crystal3D/internal/crystal"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType is the kind of a rig light.
type LightType string

const (
	Directional LightType = "directional"
	Point       LightType = "point"
	Ambient     LightType = "ambient"
)

// Valid reports whether t is one of the known light types.
func (t LightType) Valid() bool {
	switch t {
	case Directional, Point, Ambient:
		return true
	}
	return false
}

// Light is one entry of a rig. Position is ignored for ambient lights.
type Light struct {
	ID        string         `json:"id"`
	Type      LightType      `json:"type"`
	Color     crystal.RGBHex `json:"color"`
	Intensity float32        `json:"intensity"`
	Position  mgl32.Vec3     `json:"position"`
}

// Positional reports whether the light's position affects shading.
func (l Light) Positional() bool {
	return l.Type != Ambient
}

// defaultLight returns the type specific defaults for a new light. Ambient
// lights are dim and centered, key lights brighter and offset from the origin.
func defaultLight(t LightType) Light {
	switch t {
	case Ambient:
		return Light{Type: Ambient, Color: "#ffffff", Intensity: 0.4}
	case Directional:
		return Light{Type: Directional, Color: "#ffffff", Intensity: 1.5, Position: mgl32.Vec3{5, 5, 5}}
	default:
		return Light{Type: Point, Color: "#ffffff", Intensity: 2.0, Position: mgl32.Vec3{-4, 3, 4}}
	}
}
