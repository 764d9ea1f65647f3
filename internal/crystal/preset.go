package crystal

// Preset is a named partial configuration.
type Preset struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Thumbnail string  `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Overlay   Overlay `json:"overlay" yaml:"overlay"`
}

// ApplyPreset merges the preset overlay onto base.
func ApplyPreset(base Params, p Preset) Params {
	return Merge(base, p.Overlay)
}

func builtinPresets() []Preset {
	return []Preset{
		{
			ID: "amethyst", Name: "Amethyst", Thumbnail: "presets/amethyst.webp",
			Overlay: Overlay{},
		},
		{
			ID: "sapphire", Name: "Sapphire", Thumbnail: "presets/sapphire.webp",
			Overlay: Overlay{
				Color:             Hex("#2563eb"),
				IOR:               F32(1.77),
				Iridescence:       F32(0.15),
				Thickness:         F32(0.8),
				EmissiveColor:     Hex("#1e3a8a"),
				EmissiveIntensity: F32(0.05),
			},
		},
		{
			ID: "emerald", Name: "Emerald", Thumbnail: "presets/emerald.webp",
			Overlay: Overlay{
				Color:        Hex("#10b981"),
				IOR:          F32(1.58),
				Roughness:    F32(0.12),
				Transmission: F32(0.8),
				Thickness:    F32(1.2),
			},
		},
		{
			ID: "ruby", Name: "Ruby", Thumbnail: "presets/ruby.webp",
			Overlay: Overlay{
				Color:             Hex("#e11d48"),
				IOR:               F32(1.76),
				EmissiveColor:     Hex("#7f1d1d"),
				EmissiveIntensity: F32(0.2),
			},
		},
		{
			ID: "diamond", Name: "Diamond", Thumbnail: "presets/diamond.webp",
			Overlay: Overlay{
				Color:           Hex("#ffffff"),
				Metalness:       F32(0),
				Roughness:       F32(0),
				Transmission:    F32(1),
				IOR:             F32(2.42),
				Iridescence:     F32(0.6),
				EnvMapIntensity: F32(2.5),
			},
		},
		{
			ID: "obsidian", Name: "Obsidian", Thumbnail: "presets/obsidian.webp",
			Overlay: Overlay{
				Color:        Hex("#111827"),
				Metalness:    F32(0.6),
				Roughness:    F32(0.25),
				Transmission: F32(0.1),
				Transparent:  Bool(false),
				Iridescence:  F32(0.05),
			},
		},
		{
			ID: "opal", Name: "Opal", Thumbnail: "presets/opal.webp",
			Overlay: Overlay{
				Color:          Hex("#f5f5f4"),
				Roughness:      F32(0.3),
				Transmission:   F32(0.4),
				Iridescence:    F32(1),
				IridescenceIOR: F32(1.8),
				Opacity:        F32(0.9),
			},
		},
	}
}
