package renderer

import (
	"fmt"

	"Crystal3D/internal/crystal"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaterialSpec is the backend neutral form of a crystal material. Every
// scalar is within its documented domain.
type MaterialSpec struct {
	BaseColor          mgl32.Vec3
	Metalness          float32
	Roughness          float32
	Transmission       float32
	Thickness          float32
	Clearcoat          float32
	ClearcoatRoughness float32
	IOR                float32
	Reflectivity       float32
	Iridescence        float32
	IridescenceIOR     float32
	Emissive           mgl32.Vec3
	EnvIntensity       float32
	Transparent        bool
	Opacity            float32
	Wireframe          bool
	Maps               crystal.TextureMaps
	DisplacementScale  float32
	LightIntensity     float32

	// Clamped lists the parameter fields that were pulled back into range.
	Clamped []string
}

// BuildSpec maps params onto a material spec for env. It is deterministic.
func BuildSpec(params crystal.Params, env *environment.Source) MaterialSpec {
	p, clamped := crystal.Clamp(params)
	if len(clamped) > 0 {
		logger.Log.Debug("Clamped out of range parameters", zap.Strings("fields", clamped))
	}
	color, ok := p.Color.Parse()
	if !ok {
		logger.Log.Debug("Unparsable color, using black", zap.String("color", string(p.Color)))
	}
	emissive := p.EmissiveColor.RGB().Mul(p.EmissiveIntensity)

	return MaterialSpec{
		BaseColor:          color,
		Metalness:          p.Metalness,
		Roughness:          p.Roughness,
		Transmission:       p.Transmission,
		Thickness:          p.Thickness,
		Clearcoat:          p.Clearcoat,
		ClearcoatRoughness: p.ClearcoatRoughness,
		IOR:                p.IOR,
		Reflectivity:       p.Reflectivity,
		Iridescence:        p.Iridescence,
		IridescenceIOR:     p.IridescenceIOR,
		Emissive:           emissive,
		EnvIntensity:       p.EnvMapIntensity * env.Intensity,
		Transparent:        p.Transparent,
		Opacity:            p.Opacity,
		Wireframe:          p.Wireframe,
		Maps:               p.Maps,
		DisplacementScale:  p.DisplacementScale,
		LightIntensity:     p.LightIntensity,
		Clamped:            clamped,
	}
}

// Appearance is the reference reduction of a MaterialSpec. Backends must produce
// an equivalent appearance from their native representation.
func (s MaterialSpec) Appearance() Appearance {
	refraction := RefractionIntensity(s.Transmission, s.Thickness)
	return Appearance{
		BaseColor:       s.BaseColor,
		Alpha:           SurfaceAlpha(s.Transparent, s.Opacity, refraction),
		Metalness:       s.Metalness,
		Roughness:       EffectiveRoughness(s.Roughness, s.Clearcoat, s.ClearcoatRoughness),
		Specular:        SpecularF0(s.IOR, s.Reflectivity),
		Emissive:        s.Emissive.Add(ThinFilmTint(s.Iridescence, s.IridescenceIOR)),
		EnvContribution: s.EnvIntensity,
		Refraction:      refraction,
		Wireframe:       s.Wireframe,
	}
}

// Compile builds a fresh native material for params. Nothing is cached
// between calls. A nil env is a programmer error and panics.
func Compile(params crystal.Params, env *environment.Source, backend MaterialFactory) (Material, error) {
	if env == nil {
		panic(ErrUnresolvedEnvironment)
	}
	spec := BuildSpec(params, env)
	mat, err := backend.NewMaterial(spec, env)
	if err != nil {
		return nil, fmt.Errorf("compile %s material: %w", backend.Kind(), err)
	}
	logger.Log.Debug("Material compiled",
		zap.String("backend", string(backend.Kind())),
		zap.Stringer("environment", env.Kind),
		zap.Float32("envIntensity", spec.EnvIntensity))
	return mat, nil
}
