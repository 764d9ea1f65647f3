package renderer

import (
	"fmt"

	"Crystal3D/internal/animation"
	"Crystal3D/internal/assets"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/logger"

	"github.com/g3n/engine/core"
	"github.com/g3n/engine/geometry"
	"github.com/g3n/engine/gls"
	"github.com/g3n/engine/graphic"
	"github.com/g3n/engine/light"
	"github.com/g3n/engine/material"
	g3nmath "github.com/g3n/engine/math32"
	"github.com/g3n/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// RenderFunc draws a g3n scene graph. Hosts running a g3n renderer supply it;
// without one a G3N surface only keeps its scene graph current.
type RenderFunc func(scene core.INode, cam *Camera, background mgl32.Vec3)

// G3NOption configures a G3NBackend.
type G3NOption func(*G3NBackend)

func WithG3NAssets(r assets.Resolver) G3NOption {
	return func(b *G3NBackend) {
		b.assets = r
	}
}

func WithRenderFunc(fn RenderFunc) G3NOption {
	return func(b *G3NBackend) {
		b.render = fn
	}
}

// G3NBackend maps crystals onto g3n's metallic-roughness Physical material.
// Physical has no transmission, clearcoat, iridescence or IOR, so they are
// folded into alpha, roughness, emissive and the environment light, which
// stands in for the environment map.
type G3NBackend struct {
	assets assets.Resolver
	render RenderFunc
}

func NewG3NBackend(opts ...G3NOption) *G3NBackend {
	b := &G3NBackend{assets: assets.Dir(".")}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *G3NBackend) Kind() BackendKind {
	return G3N
}

// G3NMaterial is a compiled Physical material plus the ambient light standing
// in for the environment.
type G3NMaterial struct {
	Physical *material.Physical
	EnvLight *light.Ambient
	spec     MaterialSpec
	native   g3nNative
	textures []*texture.Texture2D
	disposed bool
}

// g3nNative records exactly what was written into the Physical material.
type g3nNative struct {
	baseColor  g3nmath.Color4
	metallic   float32
	roughness  float32
	emissive   g3nmath.Color
	specular   float32
	envLight   float32
	refraction float32
	wireframe  bool
}

func (b *G3NBackend) NewMaterial(spec MaterialSpec, env *environment.Source) (Material, error) {
	refraction := RefractionIntensity(spec.Transmission, spec.Thickness)
	emissive := spec.Emissive.Add(ThinFilmTint(spec.Iridescence, spec.IridescenceIOR))
	n := g3nNative{
		baseColor: g3nmath.Color4{
			R: spec.BaseColor[0], G: spec.BaseColor[1], B: spec.BaseColor[2],
			A: SurfaceAlpha(spec.Transparent, spec.Opacity, refraction),
		},
		metallic:   spec.Metalness,
		roughness:  EffectiveRoughness(spec.Roughness, spec.Clearcoat, spec.ClearcoatRoughness),
		emissive:   g3nmath.Color{R: emissive[0], G: emissive[1], B: emissive[2]},
		specular:   SpecularF0(spec.IOR, spec.Reflectivity),
		envLight:   spec.EnvIntensity,
		refraction: refraction,
		wireframe:  spec.Wireframe,
	}

	pm := material.NewPhysical()
	pm.SetBaseColorFactor(&n.baseColor)
	pm.SetMetallicFactor(n.metallic)
	pm.SetRoughnessFactor(n.roughness)
	pm.SetEmissiveFactor(&n.emissive)
	pm.SetTransparent(spec.Transparent && n.baseColor.A < 1)
	pm.SetWireframe(spec.Wireframe)
	pm.SetSide(material.SideDouble)

	m := &G3NMaterial{Physical: pm, spec: spec, native: n}

	if ref := spec.Maps.Diffuse; ref != "" {
		if tex := b.loadTexture("diffuse", ref); tex != nil {
			pm.SetBaseColorMap(tex)
			m.textures = append(m.textures, tex)
		}
	}
	// glTF packs roughness in G and metalness in B of one map; either source fills it.
	if ref := firstNonEmpty(spec.Maps.Metalness, spec.Maps.Roughness); ref != "" {
		if tex := b.loadTexture("metallicRoughness", ref); tex != nil {
			pm.SetMetallicRoughnessMap(tex)
			m.textures = append(m.textures, tex)
		}
	}
	if ref := spec.Maps.Normal; ref != "" {
		if tex := b.loadTexture("normal", ref); tex != nil {
			pm.SetNormalMap(tex)
			m.textures = append(m.textures, tex)
		}
	}
	if ref := spec.Maps.Emissive; ref != "" {
		if tex := b.loadTexture("emissive", ref); tex != nil {
			pm.SetEmissiveMap(tex)
			m.textures = append(m.textures, tex)
		}
	}
	if spec.Maps.Displacement != "" {
		logger.Log.Info("Displacement maps are not supported by the g3n backend",
			zap.String("ref", spec.Maps.Displacement))
	}

	envColor := env.Hemisphere.Sky.Add(env.Hemisphere.Ground).Mul(0.5)
	if env.Kind == environment.KindReal {
		envColor = SkyboxFor(env).Color.Mul(1 / 0.35)
	}
	m.EnvLight = light.NewAmbient(&g3nmath.Color{R: envColor[0], G: envColor[1], B: envColor[2]}, n.reflectedEnv())
	return m, nil
}

// dielectricF0 is the reflectance Physical assumes for non-metals.
const dielectricF0 = 0.04

// reflectedEnv is the ambient intensity: Physical reflects a fixed F0, so the
// extra reflectance of the crystal's IOR brightens the environment light.
func (n g3nNative) reflectedEnv() float32 {
	return n.envLight * (1 + n.specular - dielectricF0)
}

func (b *G3NBackend) loadTexture(kind, ref string) *texture.Texture2D {
	img, err := assets.LoadRGBA(b.assets, ref)
	if err != nil {
		logger.Log.Warn("Texture map unavailable, leaving it unbound",
			zap.String("map", kind), zap.String("ref", ref), zap.Error(err))
		return nil
	}
	tex := texture.NewTexture2DFromRGBA(img)
	tex.SetWrapS(gls.REPEAT)
	tex.SetWrapT(gls.REPEAT)
	return tex
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (m *G3NMaterial) Kind() BackendKind {
	return G3N
}

func (m *G3NMaterial) Spec() MaterialSpec {
	return m.spec
}

func (m *G3NMaterial) Appearance() Appearance {
	n := m.native
	return Appearance{
		BaseColor:       mgl32.Vec3{n.baseColor.R, n.baseColor.G, n.baseColor.B},
		Alpha:           n.baseColor.A,
		Metalness:       n.metallic,
		Roughness:       n.roughness,
		Specular:        n.specular,
		Emissive:        mgl32.Vec3{n.emissive.R, n.emissive.G, n.emissive.B},
		EnvContribution: n.envLight,
		Refraction:      n.refraction,
		Wireframe:       n.wireframe,
	}
}

func (m *G3NMaterial) Scalars() map[string]float32 {
	n := m.native
	return map[string]float32{
		"baseColorAlpha":      n.baseColor.A,
		"metallicFactor":      n.metallic,
		"roughnessFactor":     n.roughness,
		"emissiveR":           n.emissive.R,
		"emissiveG":           n.emissive.G,
		"emissiveB":           n.emissive.B,
		"specularF0":          n.specular,
		"envLightIntensity":   n.reflectedEnv(),
		"refractionIntensity": n.refraction,
	}
}

// Dispose releases the Physical material and its textures. Idempotent.
func (m *G3NMaterial) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	for _, tex := range m.textures {
		tex.Dispose()
	}
	m.textures = nil
	m.Physical.Dispose()
	m.EnvLight.Dispose()
}

func (m *G3NMaterial) Disposed() bool {
	return m.disposed
}

// g3nMesh is a node holding the crystal mesh and its material's environment light.
type g3nMesh struct {
	node      *core.Node
	mesh      *graphic.Mesh
	geom      *geometry.Geometry
	material  *G3NMaterial
	transform animation.Transform
	disposed  bool
}

func (b *G3NBackend) NewMesh(geom *Geometry, mat Material) (Mesh, error) {
	gm, ok := mat.(*G3NMaterial)
	if !ok {
		return nil, fmt.Errorf("g3n mesh needs a g3n material, got %T", mat)
	}
	g := toG3NGeometry(geom)
	m := &g3nMesh{
		node:      core.NewNode(),
		geom:      g,
		mesh:      graphic.NewMesh(g, gm.Physical),
		transform: animation.Identity(),
	}
	m.node.Add(m.mesh)
	m.SetMaterial(gm)
	return m, nil
}

func toG3NGeometry(geom *Geometry) *geometry.Geometry {
	positions := g3nmath.NewArrayF32(0, len(geom.Positions)*3)
	normals := g3nmath.NewArrayF32(0, len(geom.Normals)*3)
	uvs := g3nmath.NewArrayF32(0, len(geom.UVs)*2)
	for i, p := range geom.Positions {
		positions.Append(p[0], p[1], p[2])
		normals.Append(geom.Normals[i][0], geom.Normals[i][1], geom.Normals[i][2])
		uvs.Append(geom.UVs[i][0], geom.UVs[i][1])
	}
	indices := g3nmath.NewArrayU32(0, len(geom.Indices))
	indices.Append(geom.Indices...)

	g := geometry.NewGeometry()
	g.AddVBO(gls.NewVBO(positions).AddAttrib(gls.VertexPosition))
	g.AddVBO(gls.NewVBO(normals).AddAttrib(gls.VertexNormal))
	g.AddVBO(gls.NewVBO(uvs).AddAttrib(gls.VertexTexcoord))
	g.SetIndices(indices)
	return g
}

func (m *g3nMesh) SetTransform(t animation.Transform) {
	m.transform = t
	m.mesh.SetPosition(t.Position[0], t.Position[1], t.Position[2])
	m.mesh.SetQuaternion(t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2], t.Rotation.W)
	m.mesh.SetScale(t.Scale[0], t.Scale[1], t.Scale[2])
}

func (m *g3nMesh) Transform() animation.Transform {
	return m.transform
}

// SetMaterial swaps the Physical material and its environment light. The mesh
// does not own the material.
func (m *g3nMesh) SetMaterial(mat Material) {
	gm, ok := mat.(*G3NMaterial)
	if !ok {
		logger.Log.Error("Material from another backend ignored", zap.String("kind", string(mat.Kind())))
		return
	}
	if m.material != nil {
		m.node.Remove(m.material.EnvLight)
	}
	m.material = gm
	m.mesh.SetMaterial(gm.Physical)
	m.node.Add(gm.EnvLight)
}

func (m *g3nMesh) Material() Material {
	if m.material == nil {
		return nil
	}
	return m.material
}

// Dispose releases the geometry. Idempotent.
func (m *g3nMesh) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	if m.material != nil {
		m.node.Remove(m.material.EnvLight)
	}
	m.node.Remove(m.mesh)
	m.geom.Dispose()
	m.material = nil
}

type g3nLight struct {
	src   lighting.Light
	node  core.INode
	set   func(intensity float32)
	scale float32
	move  func(p mgl32.Vec3)
	free  func()
	done  bool
}

func (b *G3NBackend) NewLight(l lighting.Light, scale float32) (Light, error) {
	rgb := l.Color.RGB()
	color := &g3nmath.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
	lt := &g3nLight{src: l, scale: scale}
	switch l.Type {
	case lighting.Ambient:
		a := light.NewAmbient(color, l.Intensity*scale)
		lt.node, lt.set, lt.free = a, a.SetIntensity, a.Dispose
		lt.move = func(mgl32.Vec3) {}
	case lighting.Directional:
		d := light.NewDirectional(color, l.Intensity*scale)
		d.SetPosition(l.Position[0], l.Position[1], l.Position[2])
		lt.node, lt.set, lt.free = d, d.SetIntensity, d.Dispose
		lt.move = func(p mgl32.Vec3) { d.SetPosition(p[0], p[1], p[2]) }
	case lighting.Point:
		p := light.NewPoint(color, l.Intensity*scale)
		p.SetPosition(l.Position[0], l.Position[1], l.Position[2])
		lt.node, lt.set, lt.free = p, p.SetIntensity, p.Dispose
		lt.move = func(v mgl32.Vec3) { p.SetPosition(v[0], v[1], v[2]) }
	default:
		return nil, fmt.Errorf("unsupported light type %q", l.Type)
	}
	return lt, nil
}

func (l *g3nLight) SetPosition(p mgl32.Vec3) {
	l.move(p)
}

func (l *g3nLight) SetIntensityScale(s float32) {
	l.scale = s
	l.set(l.src.Intensity * s)
}

func (l *g3nLight) Source() lighting.Light {
	return l.src
}

func (l *g3nLight) Dispose() {
	if l.done {
		return
	}
	l.done = true
	l.free()
}

// G3NSurface is a scene graph root. Hosts that own a g3n renderer add Root()
// to their scene or pass a RenderFunc.
type G3NSurface struct {
	backend    *G3NBackend
	viewport   Viewport
	root       *core.Node
	background mgl32.Vec3
	frames     int
	disposed   bool
}

func (b *G3NBackend) NewSurface(vp Viewport) (Surface, error) {
	return &G3NSurface{backend: b, viewport: vp, root: core.NewNode(), background: DefaultSkyColor}, nil
}

func (s *G3NSurface) Root() *core.Node {
	return s.root
}

func (s *G3NSurface) Viewport() Viewport {
	return s.viewport
}

func (s *G3NSurface) Resize(width, height int32) {
	s.viewport.Width, s.viewport.Height = width, height
}

func (s *G3NSurface) SetEnvironment(env *environment.Source) {
	s.background = SkyboxFor(env).Color
}

func (s *G3NSurface) Background() mgl32.Vec3 {
	return s.background
}

func (s *G3NSurface) AddMesh(m Mesh) {
	if gm, ok := m.(*g3nMesh); ok {
		s.root.Add(gm.node)
	}
}

func (s *G3NSurface) RemoveMesh(m Mesh) {
	if gm, ok := m.(*g3nMesh); ok {
		s.root.Remove(gm.node)
	}
}

func (s *G3NSurface) AddLight(l Light) {
	if lt, ok := l.(*g3nLight); ok {
		s.root.Add(lt.node)
	}
}

func (s *G3NSurface) RemoveLight(l Light) {
	if lt, ok := l.(*g3nLight); ok {
		s.root.Remove(lt.node)
	}
}

// Children returns the number of nodes directly under the root.
func (s *G3NSurface) Children() int {
	return len(s.root.Children())
}

func (s *G3NSurface) Frames() int {
	return s.frames
}

func (s *G3NSurface) Render(cam *Camera) {
	if s.disposed {
		return
	}
	if s.backend.render != nil {
		s.backend.render(s.root, cam, s.background)
	}
	s.frames++
}

// Dispose detaches everything from the root. Idempotent.
func (s *G3NSurface) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.root.RemoveAll(false)
}
