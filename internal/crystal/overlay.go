package crystal

// MapsOverlay is a partial TextureMaps. A non-nil empty string unbinds a map.
type MapsOverlay struct {
	Diffuse      *string `json:"diffuse,omitempty" yaml:"diffuse,omitempty"`
	Normal       *string `json:"normal,omitempty" yaml:"normal,omitempty"`
	Roughness    *string `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	Metalness    *string `json:"metalness,omitempty" yaml:"metalness,omitempty"`
	Displacement *string `json:"displacement,omitempty" yaml:"displacement,omitempty"`
	Emissive     *string `json:"emissive,omitempty" yaml:"emissive,omitempty"`
}

// Overlay is a partial Params. Nil fields are unspecified and keep the base value.
type Overlay struct {
	Color              *RGBHex      `json:"color,omitempty" yaml:"color,omitempty"`
	Metalness          *float32     `json:"metalness,omitempty" yaml:"metalness,omitempty"`
	Roughness          *float32     `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	Transmission       *float32     `json:"transmission,omitempty" yaml:"transmission,omitempty"`
	Thickness          *float32     `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	EnvMapIntensity    *float32     `json:"envMapIntensity,omitempty" yaml:"envMapIntensity,omitempty"`
	Clearcoat          *float32     `json:"clearcoat,omitempty" yaml:"clearcoat,omitempty"`
	ClearcoatRoughness *float32     `json:"clearcoatRoughness,omitempty" yaml:"clearcoatRoughness,omitempty"`
	IOR                *float32     `json:"ior,omitempty" yaml:"ior,omitempty"`
	Reflectivity       *float32     `json:"reflectivity,omitempty" yaml:"reflectivity,omitempty"`
	Iridescence        *float32     `json:"iridescence,omitempty" yaml:"iridescence,omitempty"`
	IridescenceIOR     *float32     `json:"iridescenceIOR,omitempty" yaml:"iridescenceIOR,omitempty"`
	Opacity            *float32     `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Transparent        *bool        `json:"transparent,omitempty" yaml:"transparent,omitempty"`
	Wireframe          *bool        `json:"wireframe,omitempty" yaml:"wireframe,omitempty"`
	EmissiveColor      *RGBHex      `json:"emissiveColor,omitempty" yaml:"emissiveColor,omitempty"`
	EmissiveIntensity  *float32     `json:"emissiveIntensity,omitempty" yaml:"emissiveIntensity,omitempty"`
	LightIntensity     *float32     `json:"lightIntensity,omitempty" yaml:"lightIntensity,omitempty"`
	Maps               *MapsOverlay `json:"maps,omitempty" yaml:"maps,omitempty"`
	DisplacementScale  *float32     `json:"displacementScale,omitempty" yaml:"displacementScale,omitempty"`
}

// F32 returns a pointer to v, for building overlays inline.
func F32(v float32) *float32 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Hex returns a pointer to v.
func Hex(v RGBHex) *RGBHex { return &v }

// Str returns a pointer to v.
func Str(v string) *string { return &v }

// Merge returns base with every specified overlay field applied. It never
// mutates its inputs and performs no validation or clamping.
func Merge(base Params, o Overlay) Params {
	out := base

	setF := func(dst *float32, src *float32) {
		if src != nil {
			*dst = *src
		}
	}
	setB := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setC := func(dst *RGBHex, src *RGBHex) {
		if src != nil {
			*dst = *src
		}
	}

	setC(&out.Color, o.Color)
	setF(&out.Metalness, o.Metalness)
	setF(&out.Roughness, o.Roughness)
	setF(&out.Transmission, o.Transmission)
	setF(&out.Thickness, o.Thickness)
	setF(&out.EnvMapIntensity, o.EnvMapIntensity)
	setF(&out.Clearcoat, o.Clearcoat)
	setF(&out.ClearcoatRoughness, o.ClearcoatRoughness)
	setF(&out.IOR, o.IOR)
	setF(&out.Reflectivity, o.Reflectivity)
	setF(&out.Iridescence, o.Iridescence)
	setF(&out.IridescenceIOR, o.IridescenceIOR)
	setF(&out.Opacity, o.Opacity)
	setB(&out.Transparent, o.Transparent)
	setB(&out.Wireframe, o.Wireframe)
	setC(&out.EmissiveColor, o.EmissiveColor)
	setF(&out.EmissiveIntensity, o.EmissiveIntensity)
	setF(&out.LightIntensity, o.LightIntensity)
	setF(&out.DisplacementScale, o.DisplacementScale)

	if m := o.Maps; m != nil {
		setS := func(dst *string, src *string) {
			if src != nil {
				*dst = *src
			}
		}
		setS(&out.Maps.Diffuse, m.Diffuse)
		setS(&out.Maps.Normal, m.Normal)
		setS(&out.Maps.Roughness, m.Roughness)
		setS(&out.Maps.Metalness, m.Metalness)
		setS(&out.Maps.Displacement, m.Displacement)
		setS(&out.Maps.Emissive, m.Emissive)
	}
	return out
}

// Diff returns the overlay that turns base into target. Fields equal in both
// are left unspecified, so Merge(base, Diff(base, target)) == target.
func Diff(base, target Params) Overlay {
	var o Overlay
	f := func(a, b float32) *float32 {
		if a == b {
			return nil
		}
		return F32(b)
	}
	if base.Color != target.Color {
		o.Color = Hex(target.Color)
	}
	o.Metalness = f(base.Metalness, target.Metalness)
	o.Roughness = f(base.Roughness, target.Roughness)
	o.Transmission = f(base.Transmission, target.Transmission)
	o.Thickness = f(base.Thickness, target.Thickness)
	o.EnvMapIntensity = f(base.EnvMapIntensity, target.EnvMapIntensity)
	o.Clearcoat = f(base.Clearcoat, target.Clearcoat)
	o.ClearcoatRoughness = f(base.ClearcoatRoughness, target.ClearcoatRoughness)
	o.IOR = f(base.IOR, target.IOR)
	o.Reflectivity = f(base.Reflectivity, target.Reflectivity)
	o.Iridescence = f(base.Iridescence, target.Iridescence)
	o.IridescenceIOR = f(base.IridescenceIOR, target.IridescenceIOR)
	o.Opacity = f(base.Opacity, target.Opacity)
	if base.Transparent != target.Transparent {
		o.Transparent = Bool(target.Transparent)
	}
	if base.Wireframe != target.Wireframe {
		o.Wireframe = Bool(target.Wireframe)
	}
	if base.EmissiveColor != target.EmissiveColor {
		o.EmissiveColor = Hex(target.EmissiveColor)
	}
	o.EmissiveIntensity = f(base.EmissiveIntensity, target.EmissiveIntensity)
	o.LightIntensity = f(base.LightIntensity, target.LightIntensity)
	o.DisplacementScale = f(base.DisplacementScale, target.DisplacementScale)

	if base.Maps != target.Maps {
		s := func(a, b string) *string {
			if a == b {
				return nil
			}
			return Str(b)
		}
		o.Maps = &MapsOverlay{
			Diffuse:      s(base.Maps.Diffuse, target.Maps.Diffuse),
			Normal:       s(base.Maps.Normal, target.Maps.Normal),
			Roughness:    s(base.Maps.Roughness, target.Maps.Roughness),
			Metalness:    s(base.Maps.Metalness, target.Maps.Metalness),
			Displacement: s(base.Maps.Displacement, target.Maps.Displacement),
			Emissive:     s(base.Maps.Emissive, target.Maps.Emissive),
		}
	}
	return o
}
