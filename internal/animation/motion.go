package animation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Motion envelope. The crystal never tilts or pulses beyond these amplitudes.
const (
	YawSpeed       float32 = 0.3
	MaxPitch       float32 = 0.15
	MaxRoll        float32 = 0.1
	PulseAmplitude float32 = 0.05
	OrbitAmplitude float32 = 1.5
	OrbitLaneGap   float32 = 0.25

	goldenAngle float32 = 2.39996323
)

// Pose is the crystal's animated orientation (radians) and uniform scale.
type Pose struct {
	Yaw, Pitch, Roll float32
	Scale            float32
}

// Rotation returns the pose as a quaternion, yaw about Y then pitch about X
// then roll about Z.
func (p Pose) Rotation() mgl32.Quat {
	yaw := mgl32.QuatRotate(p.Yaw, mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(p.Pitch, mgl32.Vec3{1, 0, 0})
	roll := mgl32.QuatRotate(p.Roll, mgl32.Vec3{0, 0, 1})
	return yaw.Mul(pitch).Mul(roll)
}

// CrystalPose is the crystal's pose at virtual time t. Yaw grows monotonically
// with t; pitch, roll and scale stay within the motion envelope.
func CrystalPose(t float32) Pose {
	return Pose{
		Yaw:   YawSpeed * t,
		Pitch: MaxPitch * math32.Sin(0.7*t),
		Roll:  MaxRoll * math32.Cos(0.5*t),
		Scale: 1 + PulseAmplitude*math32.Sin(1.3*t),
	}
}

// OrbitRadius is the orbit radius of lane i. Lanes get distinct radii, so two
// lights sharing a base position stay at least OrbitLaneGap*OrbitAmplitude apart.
func OrbitRadius(i int) float32 {
	return OrbitAmplitude * (1 + OrbitLaneGap*float32(i))
}

// LightOrbit moves the light in lane i around its base position in the
// horizontal plane. Each lane gets its own radius, frequency and a
// golden-angle phase offset, so lights never move in lockstep. Height is preserved.
func LightOrbit(base mgl32.Vec3, t float32, i int) mgl32.Vec3 {
	freq := 0.4 + 0.17*float32(i)
	phase := goldenAngle * float32(i)
	a := freq*t + phase
	r := OrbitRadius(i)
	return mgl32.Vec3{
		base[0] + r*math32.Sin(a),
		base[1],
		base[2] + r*math32.Cos(a),
	}
}
