package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AppearanceTolerance is the largest per-field difference allowed between the
// appearances two backends produce for the same parameters.
const AppearanceTolerance = 1e-4

const (
	refractionAlphaWeight = 0.6
	thinFilmStrength      = 0.12
)

// Appearance is what a compiled material looks like, independent of how the
// backend represents it.
type Appearance struct {
	BaseColor       mgl32.Vec3
	Alpha           float32
	Metalness       float32
	Roughness       float32
	Emissive        mgl32.Vec3
	Specular        float32
	EnvContribution float32
	Refraction      float32
	Wireframe       bool
}

// Diff returns the largest absolute difference between two appearances, or 1
// if their wireframe flags differ.
func (a Appearance) Diff(b Appearance) float32 {
	if a.Wireframe != b.Wireframe {
		return 1
	}
	d := float32(0)
	cmp := func(x, y float32) {
		d = math32.Max(d, math32.Abs(x-y))
	}
	for i := 0; i < 3; i++ {
		cmp(a.BaseColor[i], b.BaseColor[i])
		cmp(a.Emissive[i], b.Emissive[i])
	}
	cmp(a.Alpha, b.Alpha)
	cmp(a.Metalness, b.Metalness)
	cmp(a.Roughness, b.Roughness)
	cmp(a.Specular, b.Specular)
	cmp(a.EnvContribution, b.EnvContribution)
	cmp(a.Refraction, b.Refraction)
	return d
}

// Equivalent reports whether two appearances match within AppearanceTolerance.
func (a Appearance) Equivalent(b Appearance) bool {
	return a.Diff(b) <= AppearanceTolerance
}

// RefractionIntensity folds transmission and thickness into one factor:
// thicker crystals let less light through.
func RefractionIntensity(transmission, thickness float32) float32 {
	return transmission / (1 + 0.5*thickness)
}

// SurfaceAlpha is the coverage of a crystal with the given refraction.
func SurfaceAlpha(transparent bool, opacity, refraction float32) float32 {
	if !transparent {
		return 1
	}
	return clamp01(opacity * (1 - refractionAlphaWeight*refraction))
}

// SpecularF0 is the dielectric reflectance at normal incidence, scaled by
// reflectivity so that 0.5 gives the plain Fresnel value of ior.
func SpecularF0(ior, reflectivity float32) float32 {
	r := (ior - 1) / (ior + 1)
	return math32.Min(r*r*reflectivity*2, 1)
}

// EffectiveRoughness blends the base roughness towards the clearcoat layer's
// roughness by the clearcoat weight.
func EffectiveRoughness(roughness, clearcoat, clearcoatRoughness float32) float32 {
	return clamp01(roughness + 0.5*clearcoat*(clearcoatRoughness-roughness))
}

// ThinFilmTint approximates iridescence as an additive tint whose hue follows
// the film's index of refraction.
func ThinFilmTint(iridescence, filmIOR float32) mgl32.Vec3 {
	if iridescence <= 0 {
		return mgl32.Vec3{}
	}
	phase := 2 * math32.Pi * (filmIOR - 1)
	k := iridescence * thinFilmStrength
	return mgl32.Vec3{
		k * (0.5 + 0.5*math32.Cos(phase)),
		k * (0.5 + 0.5*math32.Cos(phase+2*math32.Pi/3)),
		k * (0.5 + 0.5*math32.Cos(phase+4*math32.Pi/3)),
	}
}
