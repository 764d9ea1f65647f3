// Package environment resolves the image-based lighting environment of a
// crystal scene. A procedural fallback is always available immediately; a real
// studio map replaces it once it has been loaded off the UI goroutine.
package environment

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind tells a real loaded environment apart from the synthetic fallback.
type Kind int

const (
	KindFallback Kind = iota
	KindReal
)

func (k Kind) String() string {
	if k == KindReal {
		return "real"
	}
	return "fallback"
}

// CubeFaces is the face order used by cube maps, matching the GL cube map targets.
var CubeFaces = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

// Hemisphere is the sky/ground light a fallback environment contributes.
type Hemisphere struct {
	Sky       mgl32.Vec3
	Ground    mgl32.Vec3
	Intensity float32
}

// Equivalent returns the intensity the hemisphere light is worth when used in
// place of an environment map.
func (h Hemisphere) Equivalent() float32 {
	return h.Intensity * (luminance(h.Sky) + luminance(h.Ground)) / 2
}

// Source is a resolved environment. Radiance is either six cube faces or one
// equirectangular panorama; Irradiance is a blurred low resolution copy for
// diffuse lighting. Sources are owned by the UI goroutine.
type Source struct {
	Kind       Kind
	Origin     string
	Intensity  float32
	Faces      []*image.RGBA
	Equirect   *image.RGBA
	Irradiance []*image.RGBA
	Hemisphere Hemisphere

	releasers []func()
	disposed  bool
}

// Cube reports whether the radiance is a six face cube map.
func (s *Source) Cube() bool {
	return len(s.Faces) == 6
}

// Radiance returns the radiance images in upload order.
func (s *Source) Radiance() []*image.RGBA {
	if s.Cube() {
		return s.Faces
	}
	if s.Equirect != nil {
		return []*image.RGBA{s.Equirect}
	}
	return nil
}

// OnDispose registers fn to run when the source is disposed. Backends use it
// to release the GPU textures created from the source's images.
func (s *Source) OnDispose(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.releasers = append(s.releasers, fn)
}

// Dispose releases images and registered GPU resources. It is idempotent.
func (s *Source) Dispose() {
	if s == nil || s.disposed {
		return
	}
	s.disposed = true
	for i := len(s.releasers) - 1; i >= 0; i-- {
		s.releasers[i]()
	}
	s.releasers = nil
	s.Faces = nil
	s.Equirect = nil
	s.Irradiance = nil
}

func (s *Source) Disposed() bool {
	return s.disposed
}

func luminance(c mgl32.Vec3) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}
