package renderer

import (
	"image"

	"Crystal3D/internal/environment"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSkyColor is the clear color used before any environment is installed.
var DefaultSkyColor = mgl32.Vec3{0.05, 0.04, 0.08}

// Skybox is the solid background a surface clears to, derived from its
// environment so the crystal sits in a matching tone.
type Skybox struct {
	Color mgl32.Vec3
}

// SkyboxFor averages the environment's irradiance, or its hemisphere colors
// when no image is available.
func SkyboxFor(env *environment.Source) Skybox {
	if env == nil || env.Disposed() {
		return Skybox{Color: DefaultSkyColor}
	}
	if len(env.Irradiance) > 0 {
		var sum mgl32.Vec3
		for _, img := range env.Irradiance {
			sum = sum.Add(averageColor(img))
		}
		return Skybox{Color: sum.Mul(0.35 / float32(len(env.Irradiance)))}
	}
	h := env.Hemisphere
	return Skybox{Color: h.Sky.Add(h.Ground).Mul(0.175)}
}

func averageColor(img *image.RGBA) mgl32.Vec3 {
	if img == nil {
		return mgl32.Vec3{}
	}
	var r, g, b float64
	n := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r += float64(img.Pix[i])
		g += float64(img.Pix[i+1])
		b += float64(img.Pix[i+2])
		n++
	}
	if n == 0 {
		return mgl32.Vec3{}
	}
	d := 255 * float64(n)
	return mgl32.Vec3{float32(r / d), float32(g / d), float32(b / d)}
}
