package renderer

import (
	"fmt"

	"Crystal3D/internal/animation"
	"Crystal3D/internal/assets"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// GLOption configures an OpenGLBackend.
type GLOption func(*OpenGLBackend)

// WithAssets sets the resolver texture maps are loaded through.
func WithAssets(r assets.Resolver) GLOption {
	return func(b *OpenGLBackend) {
		b.assets = r
	}
}

// WithShading sets the shader lobe configuration.
func WithShading(c ShadingConfig) GLOption {
	return func(b *OpenGLBackend) {
		b.shading = c
	}
}

// OpenGLBackend renders through the crystal GLSL shader. Transmission and
// thickness stay independent uniforms.
type OpenGLBackend struct {
	device   Device
	textures *TextureManager
	assets   assets.Resolver
	shading  ShadingConfig
}

func NewOpenGLBackend(device Device, opts ...GLOption) *OpenGLBackend {
	b := &OpenGLBackend{
		device:   device,
		textures: NewTextureManager(device),
		assets:   assets.Dir("."),
		shading:  DefaultShadingConfig(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *OpenGLBackend) Kind() BackendKind {
	return OpenGL
}

func (b *OpenGLBackend) Textures() *TextureManager {
	return b.textures
}

// GLMaterial is a compiled material: the uniform values of the crystal
// shader plus the textures it samples.
type GLMaterial struct {
	backend  *OpenGLBackend
	spec     MaterialSpec
	Uniforms map[string]interface{}
	Textures map[int32]uint32 // texture unit -> texture ID
	EnvCube  bool
	disposed bool
}

var glScalarUniforms = []string{
	"metalness", "roughness", "transmission", "thickness", "clearcoat", "clearcoatRoughness",
	"ior", "reflectivity", "iridescence", "iridescenceIOR", "envIntensity", "opacity",
	"displacementScale",
}

func (b *OpenGLBackend) NewMaterial(spec MaterialSpec, env *environment.Source) (Material, error) {
	m := &GLMaterial{
		backend: b,
		spec:    spec,
		Uniforms: map[string]interface{}{
			"baseColor":          spec.BaseColor,
			"metalness":          spec.Metalness,
			"roughness":          spec.Roughness,
			"transmission":       spec.Transmission,
			"thickness":          spec.Thickness,
			"clearcoat":          spec.Clearcoat,
			"clearcoatRoughness": spec.ClearcoatRoughness,
			"ior":                spec.IOR,
			"reflectivity":       spec.Reflectivity,
			"iridescence":        spec.Iridescence,
			"iridescenceIOR":     spec.IridescenceIOR,
			"emissive":           spec.Emissive,
			"envIntensity":       spec.EnvIntensity,
			"opacity":            spec.Opacity,
			"transparent":        spec.Transparent,
			"displacementScale":  spec.DisplacementScale,
		},
		Textures: make(map[int32]uint32),
	}

	maps := []struct {
		ref  string
		unit int32
		flag string
	}{
		{spec.Maps.Diffuse, unitDiffuse, "hasDiffuseMap"},
		{spec.Maps.Normal, unitNormal, "hasNormalMap"},
		{spec.Maps.Roughness, unitRoughness, "hasRoughnessMap"},
		{spec.Maps.Metalness, unitMetalness, "hasMetalnessMap"},
		{spec.Maps.Emissive, unitEmissive, "hasEmissiveMap"},
		{spec.Maps.Displacement, unitDisplacement, "hasDisplacementMap"},
	}
	for _, tm := range maps {
		m.Uniforms[tm.flag] = false
		if tm.ref == "" {
			continue
		}
		id, err := b.mapTexture(tm.ref)
		if err != nil {
			logger.Log.Warn("Texture map unavailable, leaving it unbound",
				zap.String("map", tm.flag), zap.String("ref", tm.ref), zap.Error(err))
			continue
		}
		m.Textures[tm.unit] = id
		m.Uniforms[tm.flag] = true
	}

	id, cube := b.envTexture(env)
	m.Uniforms["hasEnvMap"] = id != 0
	m.Uniforms["envIsCube"] = cube
	m.Uniforms["hemiSky"] = env.Hemisphere.Sky.Mul(env.Hemisphere.Intensity)
	m.Uniforms["hemiGround"] = env.Hemisphere.Ground.Mul(env.Hemisphere.Intensity)
	if id != 0 {
		m.EnvCube = cube
		if cube {
			m.Textures[unitEnvCube] = id
		} else {
			m.Textures[unitEnvEquirect] = id
		}
	}
	return m, nil
}

func (b *OpenGLBackend) mapTexture(ref string) (uint32, error) {
	return b.textures.Acquire("map:"+ref, func(d Device) (uint32, error) {
		img, err := assets.LoadRGBA(b.assets, ref)
		if err != nil {
			return 0, err
		}
		return d.CreateTexture2D(img, true), nil
	})
}

// envTexture uploads the environment once per source. The source holds one
// reference, released when it is disposed, and each material holds another.
func (b *OpenGLBackend) envTexture(env *environment.Source) (uint32, bool) {
	radiance := env.Radiance()
	if env.Disposed() || len(radiance) == 0 {
		return 0, false
	}
	created := false
	id, _ := b.textures.Acquire(fmt.Sprintf("env:%p", env), func(d Device) (uint32, error) {
		created = true
		if env.Cube() {
			return d.CreateCubeMap(radiance), nil
		}
		return d.CreateTexture2D(radiance[0], false), nil
	})
	if created {
		b.textures.AddReference(id)
		env.OnDispose(func() { b.textures.ReleaseTexture(id) })
	}
	return id, env.Cube()
}

func (m *GLMaterial) Kind() BackendKind {
	return OpenGL
}

func (m *GLMaterial) Spec() MaterialSpec {
	return m.spec
}

func (m *GLMaterial) f(name string) float32 {
	v, _ := m.Uniforms[name].(float32)
	return v
}

func (m *GLMaterial) Appearance() Appearance {
	refraction := RefractionIntensity(m.f("transmission"), m.f("thickness"))
	transparent, _ := m.Uniforms["transparent"].(bool)
	base, _ := m.Uniforms["baseColor"].(mgl32.Vec3)
	emissive, _ := m.Uniforms["emissive"].(mgl32.Vec3)
	return Appearance{
		BaseColor:       base,
		Alpha:           SurfaceAlpha(transparent, m.f("opacity"), refraction),
		Metalness:       m.f("metalness"),
		Roughness:       EffectiveRoughness(m.f("roughness"), m.f("clearcoat"), m.f("clearcoatRoughness")),
		Specular:        SpecularF0(m.f("ior"), m.f("reflectivity")),
		Emissive:        emissive.Add(ThinFilmTint(m.f("iridescence"), m.f("iridescenceIOR"))),
		EnvContribution: m.f("envIntensity"),
		Refraction:      refraction,
		Wireframe:       m.spec.Wireframe,
	}
}

func (m *GLMaterial) Scalars() map[string]float32 {
	out := make(map[string]float32, len(glScalarUniforms))
	for _, name := range glScalarUniforms {
		out[name] = m.f(name)
	}
	return out
}

// Dispose releases the material's texture references. Idempotent.
func (m *GLMaterial) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	for unit, id := range m.Textures {
		m.backend.textures.ReleaseTexture(id)
		delete(m.Textures, unit)
	}
}

func (m *GLMaterial) Disposed() bool {
	return m.disposed
}

func (m *GLMaterial) apply(u *UniformCache) {
	for name, v := range m.Uniforms {
		u.Set(name, v)
	}
	samplers := map[int32]string{
		unitDiffuse: "diffuseMap", unitNormal: "normalMap", unitRoughness: "roughnessMap",
		unitMetalness: "metalnessMap", unitEmissive: "emissiveMap", unitDisplacement: "displacementMap",
		unitEnvEquirect: "envEquirect", unitEnvCube: "envCube",
	}
	for unit, name := range samplers {
		u.SetInt(name, unit)
	}
	for unit, id := range m.Textures {
		target := Texture2D
		if unit == unitEnvCube {
			target = TextureCube
		}
		m.backend.device.BindTexture(unit, target, id)
	}
}

// glMesh owns one Model's buffers.
type glMesh struct {
	backend  *OpenGLBackend
	model    *Model
	disposed bool
}

func (b *OpenGLBackend) NewMesh(geom *Geometry, mat Material) (Mesh, error) {
	buffers := b.device.CreateBuffers(geom.Interleaved(), geom.Indices)
	mesh := &glMesh{backend: b, model: NewModel("crystal", geom, buffers)}
	if mat != nil {
		mesh.SetMaterial(mat)
	}
	return mesh, nil
}

func (m *glMesh) SetTransform(t animation.Transform) {
	m.model.SetTransform(t)
}

func (m *glMesh) Transform() animation.Transform {
	return m.model.Transform()
}

// SetMaterial swaps the material. The mesh does not own it.
func (m *glMesh) SetMaterial(mat Material) {
	glm, ok := mat.(*GLMaterial)
	if !ok && mat != nil {
		logger.Log.Error("Material from another backend ignored", zap.String("kind", string(mat.Kind())))
		return
	}
	m.model.Material = glm
}

func (m *glMesh) Material() Material {
	if m.model.Material == nil {
		return nil
	}
	return m.model.Material
}

// Dispose frees the GPU buffers. Idempotent.
func (m *glMesh) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.backend.device.DeleteBuffers(m.model.Buffers)
	m.model.Buffers = BufferSet{}
	m.model.Material = nil
}

type glLight struct {
	src      lighting.Light
	color    mgl32.Vec3
	position mgl32.Vec3
	scale    float32
	disposed bool
}

var lightTypeIndex = map[lighting.LightType]int32{
	lighting.Directional: 0,
	lighting.Point:       1,
	lighting.Ambient:     2,
}

func (b *OpenGLBackend) NewLight(l lighting.Light, scale float32) (Light, error) {
	if _, ok := lightTypeIndex[l.Type]; !ok {
		return nil, fmt.Errorf("unsupported light type %q", l.Type)
	}
	return &glLight{src: l, color: l.Color.RGB(), position: l.Position, scale: scale}, nil
}

func (l *glLight) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *glLight) SetIntensityScale(s float32) {
	l.scale = s
}

func (l *glLight) Source() lighting.Light {
	return l.src
}

func (l *glLight) Dispose() {
	l.disposed = true
}

// glSurface owns a shader program and draws the meshes and lights added to it.
type glSurface struct {
	backend  *OpenGLBackend
	viewport Viewport
	shader   *Shader
	skybox   Skybox
	meshes   []*glMesh
	lights   []*glLight
	frames   int
	disposed bool
}

func (b *OpenGLBackend) NewSurface(vp Viewport) (Surface, error) {
	shader := NewCrystalShader()
	if err := shader.Compile(b.device); err != nil {
		return nil, fmt.Errorf("surface %s: %w", vp.ID, err)
	}
	return &glSurface{
		backend:  b,
		viewport: vp,
		shader:   shader,
		skybox:   Skybox{Color: DefaultSkyColor},
	}, nil
}

func (s *glSurface) Viewport() Viewport {
	return s.viewport
}

func (s *glSurface) Resize(width, height int32) {
	s.viewport.Width, s.viewport.Height = width, height
}

func (s *glSurface) SetEnvironment(env *environment.Source) {
	s.skybox = SkyboxFor(env)
}

func (s *glSurface) AddMesh(m Mesh) {
	if gm, ok := m.(*glMesh); ok {
		s.meshes = append(s.meshes, gm)
	}
}

func (s *glSurface) RemoveMesh(m Mesh) {
	for i, gm := range s.meshes {
		if Mesh(gm) == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			return
		}
	}
}

func (s *glSurface) AddLight(l Light) {
	if lt, ok := l.(*glLight); ok {
		s.lights = append(s.lights, lt)
	}
}

func (s *glSurface) RemoveLight(l Light) {
	for i, lt := range s.lights {
		if Light(lt) == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

// Frames returns how many frames were drawn.
func (s *glSurface) Frames() int {
	return s.frames
}

func (s *glSurface) Render(cam *Camera) {
	if s.disposed {
		return
	}
	d := s.backend.device
	d.Viewport(s.viewport.Width, s.viewport.Height)
	d.Clear(s.skybox.Color)

	s.shader.Use()
	u := s.shader.Uniforms()
	u.SetMat4("viewProjection", cam.GetViewProjection())
	u.SetVec3("viewPos", cam.Position)
	for name, v := range s.backend.shading.Uniforms() {
		u.Set(name, v)
	}
	s.applyLights(u)

	frustum := cam.CalculateFrustum()
	for _, m := range s.meshes {
		if m.disposed || m.model.Material == nil || m.model.Material.disposed {
			continue
		}
		if c, r := m.model.WorldBounds(); !frustum.IntersectsSphere(c, r) {
			continue
		}
		u.SetMat4("model", m.model.ModelMatrix)
		for name, v := range m.model.CustomUniforms {
			u.Set(name, v)
		}
		mat := m.model.Material
		mat.apply(u)
		d.SetWireframe(mat.spec.Wireframe)
		d.SetBlending(mat.spec.Transparent)
		d.DrawElements(m.model.Buffers)
	}
	d.SetBlending(false)
	d.SetWireframe(false)
	s.frames++
}

func (s *glSurface) applyLights(u *UniformCache) {
	n := 0
	for _, l := range s.lights {
		if l.disposed || n == MaxLights {
			continue
		}
		idx := fmt.Sprintf("[%d]", n)
		u.SetInt("lightType"+idx, lightTypeIndex[l.src.Type])
		u.SetVec3("lightPosition"+idx, l.position)
		u.SetVec3("lightColor"+idx, l.color)
		u.SetFloat("lightIntensity"+idx, l.src.Intensity*l.scale)
		n++
	}
	u.SetInt("lightCount", int32(n))
}

// Dispose deletes the surface's program. Meshes, materials and lights are
// owned and disposed by the scene. Idempotent.
func (s *glSurface) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.shader.Delete()
	s.meshes = nil
	s.lights = nil
}
