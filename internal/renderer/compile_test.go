package renderer

import (
	"errors"
	"math"
	"testing"

	"Crystal3D/internal/crystal"
	"Crystal3D/internal/environment"
)

func backends(d Device) []MaterialFactory {
	return []MaterialFactory{NewOpenGLBackend(d), NewG3NBackend()}
}

func TestCompileIsDeterministic(t *testing.T) {
	env := environment.Fallback(1)
	params := crystal.DefaultParams()
	for _, b := range backends(newFakeDevice()) {
		first, err := Compile(params, env, b)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", b.Kind(), err)
		}
		second, err := Compile(params, env, b)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", b.Kind(), err)
		}
		if first == second {
			t.Errorf("%s: compile must not reuse materials", b.Kind())
		}
		a, c := first.Scalars(), second.Scalars()
		if len(a) == 0 || len(a) != len(c) {
			t.Fatalf("%s: scalar sets differ: %d vs %d", b.Kind(), len(a), len(c))
		}
		for name, v := range a {
			if math.Float32bits(v) != math.Float32bits(c[name]) {
				t.Errorf("%s: %s differs: %v vs %v", b.Kind(), name, v, c[name])
			}
		}
	}
}

func TestCompileWithoutEnvironmentPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnresolvedEnvironment) {
			t.Errorf("Expected ErrUnresolvedEnvironment panic, got %v", r)
		}
	}()
	Compile(crystal.DefaultParams(), nil, NewG3NBackend())
}

func TestBackendsAgreeOnAppearance(t *testing.T) {
	env := environment.Fallback(1)
	cases := map[string]crystal.Params{"defaults": crystal.DefaultParams()}
	catalog := crystal.BuiltinCatalog()
	for _, p := range catalog.List() {
		cases[p.ID] = crystal.ApplyPreset(crystal.DefaultParams(), p)
	}
	cases["opaque wireframe"] = crystal.Merge(crystal.DefaultParams(), crystal.Overlay{
		Transparent: crystal.Bool(false),
		Wireframe:   crystal.Bool(true),
		Iridescence: crystal.F32(0),
	})
	cases["out of range"] = crystal.Merge(crystal.DefaultParams(), crystal.Overlay{
		Metalness:         crystal.F32(3),
		Roughness:         crystal.F32(-1),
		Thickness:         crystal.F32(12),
		EmissiveColor:     crystal.Hex("#ff8800"),
		EmissiveIntensity: crystal.F32(2),
	})

	gl := NewOpenGLBackend(newFakeDevice())
	g3 := NewG3NBackend()
	for name, params := range cases {
		spec := BuildSpec(params, env).Appearance()
		a, err := Compile(params, env, gl)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		b, err := Compile(params, env, g3)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if d := a.Appearance().Diff(b.Appearance()); d > AppearanceTolerance {
			t.Errorf("%s: backends differ by %v\n gl=%+v\n g3n=%+v", name, d, a.Appearance(), b.Appearance())
		}
		if !a.Appearance().Equivalent(spec) {
			t.Errorf("%s: OpenGL appearance does not match spec", name)
		}
	}
}

func TestIORAndReflectivityChangeBothBackends(t *testing.T) {
	env := environment.Fallback(1)
	dull := crystal.Merge(crystal.DefaultParams(), crystal.Overlay{IOR: crystal.F32(1), Reflectivity: crystal.F32(0)})
	bright := crystal.Merge(crystal.DefaultParams(), crystal.Overlay{IOR: crystal.F32(4), Reflectivity: crystal.F32(1)})

	for _, backend := range backends(newFakeDevice()) {
		a, err := Compile(dull, env, backend)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Compile(bright, env, backend)
		if err != nil {
			t.Fatal(err)
		}
		if s := a.Appearance().Specular; s != 0 {
			t.Errorf("%s: Expected specular 0 for ior 1, got %v", backend.Kind(), s)
		}
		if s := b.Appearance().Specular; math.Abs(float64(s)-0.72) > 1e-4 {
			t.Errorf("%s: Expected specular 0.72, got %v", backend.Kind(), s)
		}
		if a.Appearance().Diff(b.Appearance()) <= AppearanceTolerance {
			t.Errorf("%s: ior and reflectivity should change the appearance", backend.Kind())
		}
	}

	g3 := NewG3NBackend()
	a, _ := Compile(dull, env, g3)
	b, _ := Compile(bright, env, g3)
	if a.Scalars()["envLightIntensity"] >= b.Scalars()["envLightIntensity"] {
		t.Error("Higher reflectance should brighten the g3n environment light")
	}
}

func TestCompileClampsOutOfRange(t *testing.T) {
	params := crystal.DefaultParams()
	params.Metalness = 2
	params.IOR = 0.5
	spec := BuildSpec(params, environment.Fallback(1))
	if spec.Metalness != 1 {
		t.Errorf("Expected metalness 1, got %v", spec.Metalness)
	}
	if spec.IOR != 1 {
		t.Errorf("Expected ior 1, got %v", spec.IOR)
	}
	if len(spec.Clamped) != 2 {
		t.Errorf("Expected 2 clamped fields, got %v", spec.Clamped)
	}
	if params.Metalness != 2 {
		t.Error("BuildSpec must not modify its input")
	}
}

func TestFallbackEnvironmentContributes(t *testing.T) {
	env := environment.Fallback(1)
	for _, b := range backends(newFakeDevice()) {
		m, err := Compile(crystal.DefaultParams(), env, b)
		if err != nil {
			t.Fatal(err)
		}
		if m.Appearance().EnvContribution <= 0 {
			t.Errorf("%s: expected env contribution > 0 with fallback", b.Kind())
		}
	}
	zero := crystal.DefaultParams()
	zero.EnvMapIntensity = 0
	if BuildSpec(zero, env).EnvIntensity != 0 {
		t.Error("Zero envMapIntensity should give zero contribution")
	}
}

func TestEmissiveCombinesColorAndIntensity(t *testing.T) {
	params := crystal.DefaultParams()
	params.EmissiveColor = "#ff0000"
	params.EmissiveIntensity = 0.5
	params.Iridescence = 0
	app := BuildSpec(params, environment.Fallback(1)).Appearance()
	if app.Emissive[0] != 0.5 || app.Emissive[1] != 0 || app.Emissive[2] != 0 {
		t.Errorf("Expected emissive (0.5,0,0), got %v", app.Emissive)
	}
}

func TestAppearanceReductions(t *testing.T) {
	if r := RefractionIntensity(1, 0); r != 1 {
		t.Errorf("Expected refraction 1, got %v", r)
	}
	if RefractionIntensity(0.9, 2) >= RefractionIntensity(0.9, 0.5) {
		t.Error("Thicker crystals should refract less")
	}
	if a := SurfaceAlpha(false, 0.2, 1); a != 1 {
		t.Errorf("Opaque surfaces should have alpha 1, got %v", a)
	}
	if r := EffectiveRoughness(0.5, 0, 0.1); r != 0.5 {
		t.Errorf("Without clearcoat roughness is unchanged, got %v", r)
	}
	if r := EffectiveRoughness(0.5, 1, 0.1); r >= 0.5 {
		t.Errorf("A smooth clearcoat should lower roughness, got %v", r)
	}
	if tint := ThinFilmTint(0, 1.3); tint.Len() != 0 {
		t.Error("No iridescence should give no tint")
	}
}

func TestParseBackendKind(t *testing.T) {
	tests := []struct {
		in   string
		want BackendKind
		err  bool
	}{
		{"", OpenGL, false},
		{"OpenGL", OpenGL, false},
		{" g3n ", G3N, false},
		{"vulkan", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackendKind(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseBackendKind(%q) = %q, %v", tt.in, got, err)
		}
		if tt.err && !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("Expected ErrUnknownBackend, got %v", err)
		}
	}
}
