package config

import (
	"os"
	"path/filepath"
	"testing"

	"Crystal3D/internal/environment"
	"Crystal3D/internal/renderer"

	"go.uber.org/multierr"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Width != Default().Width || cfg.Backend != Default().Backend {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "viewer.json")
	cfg := Default()
	cfg.Backend = "g3n"
	cfg.Width = 640
	cfg.Shading = renderer.PerformanceShadingConfig()
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.BackendKind() != renderer.G3N {
		t.Errorf("Expected g3n backend, got %s", loaded.BackendKind())
	}
	if loaded.Width != 640 || loaded.Shading.EnableClearcoat {
		t.Errorf("Saved fields not restored: %+v", loaded)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	if err := os.WriteFile(path, []byte(`{"debug": true}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug || cfg.FrameStep != Default().FrameStep {
		t.Errorf("Expected debug on and default frame step, got %+v", cfg)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Width = 0
	cfg.Backend = "vulkan"
	cfg.FrameStep = 0
	cfg.LoaderWorkers = 0
	err := cfg.Validate()
	if n := len(multierr.Errors(err)); n != 4 {
		t.Errorf("Expected 4 errors, got %d: %v", n, err)
	}
}

func TestEnvironmentLoaderSelection(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.EnvironmentLoader().(environment.CubeMap); !ok {
		t.Error("Expected cube map loader by default")
	}
	cfg.EquirectPath = "studio.jpg"
	if _, ok := cfg.EnvironmentLoader().(environment.Equirect); !ok {
		t.Error("Expected equirect loader when a panorama is set")
	}
	cfg.EquirectPath, cfg.EnvironmentDir = "", ""
	if cfg.EnvironmentLoader() != nil {
		t.Error("Expected no loader without environment paths")
	}
}
