// Package config holds the viewer's persisted settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"Crystal3D/internal/assets"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/renderer"

	"go.uber.org/multierr"
)

// DefaultPath is where the viewer looks for its config, relative to the working directory.
const DefaultPath = "config/crystalview.json"

// ViewerConfig configures the crystal viewer host.
type ViewerConfig struct {
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
	Title  string `json:"title"`

	Backend string `json:"backend"`

	// AssetRoot is the directory asset references resolve against.
	AssetRoot string `json:"asset_root"`
	// EnvironmentDir holds the six cube faces px nx py ny pz nz.
	EnvironmentDir string `json:"environment_dir,omitempty"`
	// EnvironmentFaces is the cube face file extension.
	EnvironmentFaces string `json:"environment_faces,omitempty"`
	// EquirectPath is used instead of the cube map when set.
	EquirectPath      string  `json:"equirect_path,omitempty"`
	FallbackIntensity float32 `json:"fallback_intensity"`
	LoaderWorkers     int     `json:"loader_workers"`

	PresetCatalog string `json:"preset_catalog,omitempty"`
	InitialPreset string `json:"initial_preset,omitempty"`

	FrameStep float32 `json:"frame_step"`
	Debug     bool    `json:"debug"`

	Shading renderer.ShadingConfig `json:"shading"`
}

func Default() ViewerConfig {
	return ViewerConfig{
		Width:             1024,
		Height:            768,
		Title:             "Crystal3D",
		Backend:           string(renderer.OpenGL),
		AssetRoot:         "assets",
		EnvironmentDir:    "environments/studio",
		EnvironmentFaces:  ".png",
		FallbackIntensity: 1,
		LoaderWorkers:     2,
		InitialPreset:     "amethyst",
		FrameStep:         0.01,
		Shading:           renderer.DefaultShadingConfig(),
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (ViewerConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg ViewerConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field.
func (c ViewerConfig) Validate() error {
	var errs error
	if c.Width <= 0 || c.Height <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height))
	}
	if _, err := renderer.ParseBackendKind(c.Backend); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.FrameStep <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("frame_step %v must be positive", c.FrameStep))
	}
	if c.FallbackIntensity < 0 {
		errs = multierr.Append(errs, fmt.Errorf("fallback_intensity %v must not be negative", c.FallbackIntensity))
	}
	if c.LoaderWorkers < 1 {
		errs = multierr.Append(errs, fmt.Errorf("loader_workers %d must be at least 1", c.LoaderWorkers))
	}
	return errs
}

// BackendKind returns the parsed backend selector.
func (c ViewerConfig) BackendKind() renderer.BackendKind {
	kind, err := renderer.ParseBackendKind(c.Backend)
	if err != nil {
		return renderer.OpenGL
	}
	return kind
}

func (c ViewerConfig) Assets() assets.Resolver {
	return assets.Dir(c.AssetRoot)
}

// EnvironmentLoader picks the equirect panorama, else the cube map, else
// nothing, in which case scenes keep the fallback.
func (c ViewerConfig) EnvironmentLoader() environment.Loader {
	switch {
	case c.EquirectPath != "":
		return environment.Equirect{Assets: c.Assets(), Ref: c.EquirectPath}
	case c.EnvironmentDir != "":
		return environment.CubeMap{Assets: c.Assets(), Dir: c.EnvironmentDir, Ext: c.EnvironmentFaces}
	}
	return nil
}

// Resolver builds the environment resolver the config describes.
func (c ViewerConfig) Resolver(opts ...environment.Option) *environment.Resolver {
	opts = append([]environment.Option{
		environment.WithWorkers(c.LoaderWorkers),
		environment.WithFallbackIntensity(c.FallbackIntensity),
	}, opts...)
	return environment.NewResolver(c.EnvironmentLoader(), opts...)
}
