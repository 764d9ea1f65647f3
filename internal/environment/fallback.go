package environment

import (
	"image"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	fallbackWidth  = 64
	fallbackHeight = 32
	fallbackSeed   = 0x5eed
)

// Studio approximation: a cool bright sky over a dim violet floor, tuned to
// roughly the average brightness of the studio map.
var (
	studioSky    = mgl32.Vec3{0.86, 0.88, 1.0}
	studioGround = mgl32.Vec3{0.22, 0.2, 0.28}
)

// Fallback builds the synthetic environment. intensity <= 0 selects 1.
// The result is deterministic.
func Fallback(intensity float32) *Source {
	if intensity <= 0 {
		intensity = 1
	}
	hemi := Hemisphere{Sky: studioSky, Ground: studioGround, Intensity: intensity}
	radiance := gradient(hemi)
	return &Source{
		Kind:       KindFallback,
		Origin:     "fallback",
		Intensity:  hemi.Equivalent(),
		Equirect:   radiance,
		Irradiance: []*image.RGBA{irradiance(radiance, 16, 8)},
		Hemisphere: hemi,
	}
}

// gradient renders an equirect sky-to-ground gradient with a little perlin
// noise so reflections are not perfectly flat.
func gradient(h Hemisphere) *image.RGBA {
	noise := perlin.NewPerlin(2, 2, 3, fallbackSeed)
	img := image.NewRGBA(image.Rect(0, 0, fallbackWidth, fallbackHeight))
	for y := 0; y < fallbackHeight; y++ {
		// elevation from +1 (zenith) to -1 (nadir)
		elev := 1 - 2*(float64(y)+0.5)/fallbackHeight
		t := float32(0.5 + 0.5*math.Tanh(elev*4))
		base := h.Ground.Mul(1 - t).Add(h.Sky.Mul(t))
		for x := 0; x < fallbackWidth; x++ {
			n := float32(noise.Noise2D(float64(x)/16, float64(y)/16)) * 0.08
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(base[0] + n),
				G: toByte(base[1] + n),
				B: toByte(base[2] + n),
				A: 255,
			})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
