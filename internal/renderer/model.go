package renderer

import (
	"Crystal3D/internal/animation"

	"github.com/go-gl/mathgl/mgl32"
)

// Model is the OpenGL side of a mesh: GPU buffers plus the transform the
// shader's model matrix is built from.
type Model struct {
	ModelMatrix mgl32.Mat4
	Position    mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Quat
	Material    *GLMaterial
	Buffers     BufferSet

	BoundingSphereCenter mgl32.Vec3
	BoundingSphereRadius float32
	CustomUniforms       map[string]interface{}

	Name string
}

// NewModel wraps uploaded buffers for geom with an identity transform.
func NewModel(name string, geom *Geometry, buffers BufferSet) *Model {
	center, radius := geom.BoundingSphere()
	m := &Model{
		Name:                 name,
		Position:             mgl32.Vec3{0, 0, 0},
		Rotation:             mgl32.QuatIdent(),
		Scale:                mgl32.Vec3{1, 1, 1},
		Buffers:              buffers,
		BoundingSphereCenter: center,
		BoundingSphereRadius: radius,
		CustomUniforms:       make(map[string]interface{}),
	}
	m.updateModelMatrix()
	return m
}

// SetTransform applies an animation transform.
func (m *Model) SetTransform(t animation.Transform) {
	m.Position = t.Position
	m.Rotation = t.Rotation
	m.Scale = t.Scale
	m.updateModelMatrix()
}

func (m *Model) Transform() animation.Transform {
	return animation.Transform{Position: m.Position, Rotation: m.Rotation, Scale: m.Scale}
}

// WorldBounds returns the bounding sphere in world space.
func (m *Model) WorldBounds() (mgl32.Vec3, float32) {
	center := m.ModelMatrix.Mul4x1(m.BoundingSphereCenter.Vec4(1)).Vec3()
	s := m.Scale.X()
	if m.Scale.Y() > s {
		s = m.Scale.Y()
	}
	if m.Scale.Z() > s {
		s = m.Scale.Z()
	}
	return center, m.BoundingSphereRadius * s
}

func (m *Model) updateModelMatrix() {
	// translation * rotation * scale
	scaleMatrix := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	rotationMatrix := m.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	m.ModelMatrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
}
