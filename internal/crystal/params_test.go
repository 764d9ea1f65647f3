package crystal

import (
	"encoding/json"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"go.uber.org/multierr"
)

func TestMergeEmptyOverlayKeepsDefaults(t *testing.T) {
	got := Merge(DefaultParams(), Overlay{})
	if got != DefaultParams() {
		t.Errorf("Empty overlay changed params: %+v", got)
	}
}

func TestMergeRoughnessAndColor(t *testing.T) {
	def := DefaultParams()
	got := Merge(def, Overlay{Roughness: F32(0.5), Color: Hex("#ff0000")})

	if got.Roughness != 0.5 {
		t.Errorf("Expected roughness 0.5, got %v", got.Roughness)
	}
	if got.Color != "#ff0000" {
		t.Errorf("Expected color #ff0000, got %v", got.Color)
	}
	if got.Metalness != 0.2 {
		t.Errorf("Expected default metalness 0.2, got %v", got.Metalness)
	}
	if got.IOR != 2.75 {
		t.Errorf("Expected default ior 2.75, got %v", got.IOR)
	}

	// Every other field must equal the default
	want := def
	want.Roughness = 0.5
	want.Color = "#ff0000"
	if got != want {
		t.Errorf("Unexpected merge result:\n got %+v\nwant %+v", got, want)
	}
}

func randomOverlay(rng *rand.Rand) Overlay {
	var o Overlay
	v := reflect.ValueOf(&o).Elem()
	for i := 0; i < v.NumField(); i++ {
		if rng.Intn(2) == 0 {
			continue
		}
		f := v.Field(i)
		switch f.Type().Elem().Kind() {
		case reflect.Float32:
			x := rng.Float32()*6 - 1
			f.Set(reflect.ValueOf(&x))
		case reflect.Bool:
			b := rng.Intn(2) == 1
			f.Set(reflect.ValueOf(&b))
		case reflect.String:
			h := RGBHex("#123456")
			f.Set(reflect.ValueOf(&h))
		case reflect.Struct:
			f.Set(reflect.ValueOf(&MapsOverlay{Normal: Str("n.png")}))
		}
	}
	return o
}

func TestMergeIsTotalForRandomOverlays(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	def := DefaultParams()
	for i := 0; i < 500; i++ {
		o := randomOverlay(rng)
		got := Merge(def, o)

		gv := reflect.ValueOf(got)
		dv := reflect.ValueOf(def)
		ov := reflect.ValueOf(o)
		for j := 0; j < gv.NumField(); j++ {
			name := gv.Type().Field(j).Name
			of := ov.FieldByName(name)
			if name == "Maps" {
				continue
			}
			if of.IsNil() {
				if !reflect.DeepEqual(gv.Field(j).Interface(), dv.Field(j).Interface()) {
					t.Fatalf("Field %s leaked a non-default value with nil overlay", name)
				}
				continue
			}
			if !reflect.DeepEqual(gv.Field(j).Interface(), of.Elem().Interface()) {
				t.Fatalf("Field %s did not take the overlay value", name)
			}
		}
		if o.Maps != nil && got.Maps.Normal != "n.png" {
			t.Fatalf("Maps overlay not applied")
		}
	}
}

func TestMergeDoesNotAliasBase(t *testing.T) {
	base := DefaultParams()
	base.Maps.Diffuse = "a.png"
	out := Merge(base, Overlay{Maps: &MapsOverlay{Diffuse: Str("b.png")}})
	if base.Maps.Diffuse != "a.png" {
		t.Error("Merge mutated the base maps")
	}
	if out.Maps.Diffuse != "b.png" {
		t.Errorf("Expected b.png, got %q", out.Maps.Diffuse)
	}
}

func TestDefaultParamsFreshCopies(t *testing.T) {
	a := DefaultParams()
	a.Metalness = 0.9
	if DefaultParams().Metalness != 0.2 {
		t.Error("Mutating one default leaked into another")
	}
}

func TestMergeAcceptsOutOfDomainValues(t *testing.T) {
	got := Merge(DefaultParams(), Overlay{Roughness: F32(3)})
	if got.Roughness != 3 {
		t.Errorf("Merge must not clamp, got %v", got.Roughness)
	}
}

func TestDiffRoundTrip(t *testing.T) {
	base := DefaultParams()
	target := Merge(base, Overlay{IOR: F32(1.5), Wireframe: Bool(true), Maps: &MapsOverlay{Emissive: Str("e.png")}})
	if got := Merge(base, Diff(base, target)); got != target {
		t.Errorf("Diff round trip mismatch: %+v", got)
	}
	if d := Diff(base, base); !reflect.DeepEqual(d, Overlay{}) {
		t.Errorf("Diff of equal params should be empty, got %+v", d)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(DefaultParams()); err != nil {
		t.Fatalf("Defaults should validate, got %v", err)
	}

	p := Merge(DefaultParams(), Overlay{
		Roughness: F32(1.5),
		IOR:       F32(0.5),
		Color:     Hex("purple"),
	})
	err := Validate(p)
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Errorf("Expected 3 field errors, got %d: %v", n, err)
	}
}

func TestClamp(t *testing.T) {
	p := Merge(DefaultParams(), Overlay{
		Roughness:    F32(1.5),
		IOR:          F32(9),
		Thickness:    F32(-2),
		Transmission: F32(float32(math.NaN())),
	})
	got, fields := Clamp(p)
	if got.Roughness != 1 || got.IOR != 4 || got.Thickness != 0 || got.Transmission != 0 {
		t.Errorf("Unexpected clamp result %+v", got)
	}
	if len(fields) != 4 {
		t.Errorf("Expected 4 clamped fields, got %v", fields)
	}

	if _, none := Clamp(DefaultParams()); len(none) != 0 {
		t.Errorf("Defaults should not clamp, got %v", none)
	}
}

func TestRGBHex(t *testing.T) {
	tests := []struct {
		in   RGBHex
		ok   bool
		want [3]float32
	}{
		{"#ff0000", true, [3]float32{1, 0, 0}},
		{"#FFF", true, [3]float32{1, 1, 1}},
		{"000000", true, [3]float32{0, 0, 0}},
		{"#12345", false, [3]float32{}},
		{"#gg0000", false, [3]float32{}},
	}
	for _, tt := range tests {
		rgb, ok := tt.in.Parse()
		if ok != tt.ok {
			t.Errorf("%q: expected ok=%v", tt.in, tt.ok)
			continue
		}
		if [3]float32(rgb) != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, rgb)
		}
	}

	if h := HexFromRGB(RGBHex("#a78bfa").RGB()); h != "#a78bfa" {
		t.Errorf("Expected #a78bfa round trip, got %s", h)
	}
}

func TestRecordDecodeFillsDefaults(t *testing.T) {
	data := []byte(`{"name":"hero","type":"crystal","is_active":true,"params":{"roughness":0.4}}`)
	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	if rec.Name != "hero" || !rec.IsActive {
		t.Errorf("Unexpected record header %+v", rec)
	}
	if rec.Params.Roughness != 0.4 || rec.Params.IOR != 2.75 {
		t.Errorf("Expected merged params, got %+v", rec.Params)
	}

	out, err := rec.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Encoded record is not JSON: %v", err)
	}
	params := back["params"].(map[string]interface{})
	if params["envMapIntensity"] == nil {
		t.Error("Encoded params should carry envMapIntensity")
	}
}

func TestRecordDecodeInvalid(t *testing.T) {
	if _, err := DecodeRecord([]byte(`{`)); err == nil {
		t.Error("Expected error for malformed record")
	}
}
