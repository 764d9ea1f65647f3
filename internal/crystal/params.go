// Package crystal holds the optical parameter model of a crystal, partial
// overlays on top of it and the preset catalog.
package crystal

// TextureMaps are optional texture references. Empty means unbound.
type TextureMaps struct {
	Diffuse      string `json:"diffuse,omitempty" yaml:"diffuse,omitempty"`
	Normal       string `json:"normal,omitempty" yaml:"normal,omitempty"`
	Roughness    string `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	Metalness    string `json:"metalness,omitempty" yaml:"metalness,omitempty"`
	Displacement string `json:"displacement,omitempty" yaml:"displacement,omitempty"`
	Emissive     string `json:"emissive,omitempty" yaml:"emissive,omitempty"`
}

// Params is the flat optical parameter set of one crystal. It is a plain value;
// copies are independent.
type Params struct {
	Color              RGBHex      `json:"color" yaml:"color"`
	Metalness          float32     `json:"metalness" yaml:"metalness"`
	Roughness          float32     `json:"roughness" yaml:"roughness"`
	Transmission       float32     `json:"transmission" yaml:"transmission"`
	Thickness          float32     `json:"thickness" yaml:"thickness"`
	EnvMapIntensity    float32     `json:"envMapIntensity" yaml:"envMapIntensity"`
	Clearcoat          float32     `json:"clearcoat" yaml:"clearcoat"`
	ClearcoatRoughness float32     `json:"clearcoatRoughness" yaml:"clearcoatRoughness"`
	IOR                float32     `json:"ior" yaml:"ior"`
	Reflectivity       float32     `json:"reflectivity" yaml:"reflectivity"`
	Iridescence        float32     `json:"iridescence" yaml:"iridescence"`
	IridescenceIOR     float32     `json:"iridescenceIOR" yaml:"iridescenceIOR"`
	Opacity            float32     `json:"opacity" yaml:"opacity"`
	Transparent        bool        `json:"transparent" yaml:"transparent"`
	Wireframe          bool        `json:"wireframe" yaml:"wireframe"`
	EmissiveColor      RGBHex      `json:"emissiveColor" yaml:"emissiveColor"`
	EmissiveIntensity  float32     `json:"emissiveIntensity" yaml:"emissiveIntensity"`
	LightIntensity     float32     `json:"lightIntensity" yaml:"lightIntensity"`
	Maps               TextureMaps `json:"maps" yaml:"maps"`
	DisplacementScale  float32     `json:"displacementScale" yaml:"displacementScale"`
}

// DefaultParams returns the default crystal configuration. Every call returns a
// fresh value, so callers can never alias or mutate a shared default.
func DefaultParams() Params {
	return Params{
		Color:              "#a78bfa",
		Metalness:          0.2,
		Roughness:          0.05,
		Transmission:       0.95,
		Thickness:          0.5,
		EnvMapIntensity:    1.5,
		Clearcoat:          1.0,
		ClearcoatRoughness: 0.1,
		IOR:                2.75,
		Reflectivity:       0.9,
		Iridescence:        0.3,
		IridescenceIOR:     1.3,
		Opacity:            1.0,
		Transparent:        true,
		Wireframe:          false,
		EmissiveColor:      "#000000",
		EmissiveIntensity:  0,
		LightIntensity:     1.0,
		DisplacementScale:  0.1,
	}
}

// HasMaps reports whether any texture map is bound.
func (p Params) HasMaps() bool {
	return p.Maps != (TextureMaps{})
}
