package crystal

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// Range is the closed domain of a scalar field. Max is +Inf for open ranges.
type Range struct {
	Min, Max float32
}

var inf = float32(math.Inf(1))

var (
	unit       = Range{0, 1}
	nonNeg     = Range{0, inf}
	iorRange   = Range{1, 4}
	iridIORRng = Range{1, 3}
)

// field binds a json field name to its domain and accessor.
type field struct {
	name string
	rng  Range
	ptr  func(p *Params) *float32
}

var scalarFields = []field{
	{"metalness", unit, func(p *Params) *float32 { return &p.Metalness }},
	{"roughness", unit, func(p *Params) *float32 { return &p.Roughness }},
	{"transmission", unit, func(p *Params) *float32 { return &p.Transmission }},
	{"thickness", nonNeg, func(p *Params) *float32 { return &p.Thickness }},
	{"envMapIntensity", nonNeg, func(p *Params) *float32 { return &p.EnvMapIntensity }},
	{"clearcoat", unit, func(p *Params) *float32 { return &p.Clearcoat }},
	{"clearcoatRoughness", unit, func(p *Params) *float32 { return &p.ClearcoatRoughness }},
	{"ior", iorRange, func(p *Params) *float32 { return &p.IOR }},
	{"reflectivity", unit, func(p *Params) *float32 { return &p.Reflectivity }},
	{"iridescence", unit, func(p *Params) *float32 { return &p.Iridescence }},
	{"iridescenceIOR", iridIORRng, func(p *Params) *float32 { return &p.IridescenceIOR }},
	{"opacity", unit, func(p *Params) *float32 { return &p.Opacity }},
	{"emissiveIntensity", nonNeg, func(p *Params) *float32 { return &p.EmissiveIntensity }},
	{"lightIntensity", nonNeg, func(p *Params) *float32 { return &p.LightIntensity }},
	{"displacementScale", nonNeg, func(p *Params) *float32 { return &p.DisplacementScale }},
}

// FieldError describes one out-of-domain field.
type FieldError struct {
	Field string
	Value interface{}
	Want  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("crystal: %s = %v out of domain %s", e.Field, e.Value, e.Want)
}

func (r Range) String() string {
	if math.IsInf(float64(r.Max), 1) {
		return fmt.Sprintf("[%g, +inf)", r.Min)
	}
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

func (r Range) contains(v float32) bool {
	return !math.IsNaN(float64(v)) && v >= r.Min && v <= r.Max
}

func (r Range) clamp(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return r.Min
	}
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Validate reports every field of p that lies outside its documented domain.
// The returned error aggregates one *FieldError per field (see multierr.Errors).
func Validate(p Params) error {
	var err error
	for _, f := range scalarFields {
		v := *f.ptr(&p)
		if !f.rng.contains(v) {
			err = multierr.Append(err, &FieldError{Field: f.name, Value: v, Want: f.rng.String()})
		}
	}
	if !p.Color.Valid() {
		err = multierr.Append(err, &FieldError{Field: "color", Value: p.Color, Want: "#rrggbb"})
	}
	if !p.EmissiveColor.Valid() {
		err = multierr.Append(err, &FieldError{Field: "emissiveColor", Value: p.EmissiveColor, Want: "#rrggbb"})
	}
	return err
}

// Clamp returns p with every scalar pulled into its domain, plus the names of
// the fields that had to be changed. Invalid colors are left as-is; they parse
// to black.
func Clamp(p Params) (Params, []string) {
	var clamped []string
	for _, f := range scalarFields {
		ptr := f.ptr(&p)
		if v := f.rng.clamp(*ptr); v != *ptr || math.IsNaN(float64(*ptr)) {
			*ptr = v
			clamped = append(clamped, f.name)
		}
	}
	return p, clamped
}
