package animation

import "github.com/go-gl/mathgl/mgl32"

// Transform is a TRS transform applied to an animated mesh.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// Identity returns a transform with no translation, rotation or scaling.
func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// FromPose builds the crystal transform for p, keeping position.
func FromPose(position mgl32.Vec3, p Pose) Transform {
	return Transform{
		Position: position,
		Rotation: p.Rotation(),
		Scale:    mgl32.Vec3{p.Scale, p.Scale, p.Scale},
	}
}

// Matrix returns the model matrix in translation * rotation * scale order.
func (t Transform) Matrix() mgl32.Mat4 {
	scale := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	translation := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	return translation.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

func (t Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (t Transform) Up() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}
