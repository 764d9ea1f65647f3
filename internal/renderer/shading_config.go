package renderer

// ShadingConfig toggles the optional lobes of the OpenGL crystal shader.
// Turning a lobe off changes only the GL output, never the compiled material.
type ShadingConfig struct {
	EnableClearcoat          bool    `json:"enableClearcoat"`
	EnableTransmission       bool    `json:"enableTransmission"`
	EnableIridescence        bool    `json:"enableIridescence"`
	EnableImageBasedLighting bool    `json:"enableImageBasedLighting"`
	IBLIntensity             float32 `json:"iblIntensity"`
	Exposure                 float32 `json:"exposure"`

	// MSAASamples is applied by the host when it creates the window, not by the shader.
	MSAASamples int `json:"msaaSamples"`
}

// DefaultShadingConfig enables every lobe the crystal needs.
func DefaultShadingConfig() ShadingConfig {
	return ShadingConfig{
		EnableClearcoat:          true,
		EnableTransmission:       true,
		EnableIridescence:        true,
		EnableImageBasedLighting: true,
		IBLIntensity:             1.0,
		Exposure:                 1.0,
		MSAASamples:              4,
	}
}

// PerformanceShadingConfig keeps image based lighting and drops the layered lobes.
func PerformanceShadingConfig() ShadingConfig {
	config := DefaultShadingConfig()
	config.EnableClearcoat = false
	config.EnableIridescence = false
	config.MSAASamples = 0
	return config
}

// Uniforms returns the config as shader uniforms.
func (c ShadingConfig) Uniforms() map[string]interface{} {
	exposure := c.Exposure
	if exposure <= 0 {
		exposure = 1
	}
	return map[string]interface{}{
		"enableClearcoat":    c.EnableClearcoat,
		"enableTransmission": c.EnableTransmission,
		"enableIridescence":  c.EnableIridescence,
		"enableIBL":          c.EnableImageBasedLighting,
		"iblIntensity":       c.IBLIntensity,
		"exposure":           exposure,
	}
}
