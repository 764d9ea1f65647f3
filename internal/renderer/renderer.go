// Package renderer compiles crystal parameters into backend materials and
// defines the backend abstraction a scene renders through. Two backends are
// provided: a native OpenGL PBR pipeline and a g3n scene-graph backend.
package renderer

import (
	"errors"
	"fmt"
	"strings"

	"Crystal3D/internal/animation"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/lighting"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnresolvedEnvironment is the panic value of Compile when no
	// environment was resolved. A scene always installs a fallback first.
	ErrUnresolvedEnvironment = errors.New("renderer: compile without environment")
	ErrUnknownBackend        = errors.New("renderer: unknown backend")
)

// BackendKind selects a backend implementation.
type BackendKind string

const (
	OpenGL BackendKind = "opengl"
	G3N    BackendKind = "g3n"
)

// ParseBackendKind accepts the backend names case-insensitively. An empty
// name selects OpenGL.
func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", OpenGL:
		return OpenGL, nil
	case G3N:
		return G3N, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Viewport describes the host canvas a surface renders into.
type Viewport struct {
	ID     string
	Width  int32
	Height int32
}

// Aspect returns width/height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// MaterialFactory turns a backend neutral material spec into a native material.
type MaterialFactory interface {
	Kind() BackendKind
	NewMaterial(spec MaterialSpec, env *environment.Source) (Material, error)
}

// Backend creates every native resource a scene handle owns. Resources are
// never shared between handles.
type Backend interface {
	MaterialFactory
	NewSurface(vp Viewport) (Surface, error)
	NewMesh(geom *Geometry, mat Material) (Mesh, error)
	NewLight(l lighting.Light, scale float32) (Light, error)
}

// Surface is one viewport's render target and scene container.
type Surface interface {
	Viewport() Viewport
	Resize(width, height int32)
	SetEnvironment(env *environment.Source)
	AddMesh(m Mesh)
	RemoveMesh(m Mesh)
	AddLight(l Light)
	RemoveLight(l Light)
	Render(cam *Camera)
	Dispose()
}

// Mesh is a drawable crystal. It is an animation.MeshTarget.
type Mesh interface {
	SetTransform(t animation.Transform)
	Transform() animation.Transform
	SetMaterial(m Material)
	Material() Material
	Dispose()
}

// Light is a native light. It is an animation.LightTarget.
type Light interface {
	SetPosition(p mgl32.Vec3)
	// SetIntensityScale multiplies the rig intensity, e.g. by the crystal's lightIntensity.
	SetIntensityScale(s float32)
	Source() lighting.Light
	Dispose()
}

// Material is a compiled crystal material.
type Material interface {
	Kind() BackendKind
	Spec() MaterialSpec
	// Appearance reduces the native material to backend independent terms.
	Appearance() Appearance
	// Scalars exposes the native scalar fields by name.
	Scalars() map[string]float32
	Dispose()
	Disposed() bool
}

var (
	_ animation.MeshTarget  = Mesh(nil)
	_ animation.LightTarget = Light(nil)
)
