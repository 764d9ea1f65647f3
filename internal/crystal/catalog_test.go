package crystal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuiltinCatalog(t *testing.T) {
	c := BuiltinCatalog()
	if c.Len() == 0 {
		t.Fatal("Builtin catalog should not be empty")
	}
	p, ok := c.Get("diamond")
	if !ok {
		t.Fatal("Expected diamond preset")
	}
	got := ApplyPreset(DefaultParams(), p)
	if got.IOR != 2.42 {
		t.Errorf("Expected diamond ior 2.42, got %v", got.IOR)
	}
	if got.ClearcoatRoughness != DefaultParams().ClearcoatRoughness {
		t.Error("Unspecified preset fields should keep the base value")
	}
}

func TestCatalogApplyUnknown(t *testing.T) {
	base := DefaultParams()
	got, err := BuiltinCatalog().Apply(base, "nope")
	if !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("Expected ErrPresetNotFound, got %v", err)
	}
	if got != base {
		t.Error("Failed apply should return base unchanged")
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Preset{{ID: "a"}, {ID: "a"}})
	if err == nil {
		t.Error("Expected duplicate id error")
	}
	if _, err := NewCatalog([]Preset{{Name: "anon"}}); err == nil {
		t.Error("Expected empty id error")
	}
}

func TestParseCatalogYAML(t *testing.T) {
	doc := []byte(`
presets:
  - id: frost
    name: Frost
    thumbnail: presets/frost.webp
    overlay:
      color: "#e0f2fe"
      roughness: 0.35
      wireframe: true
      maps:
        normal: textures/frost_n.png
`)
	c, err := ParseCatalog(doc)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	got, err := c.Apply(DefaultParams(), "frost")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got.Color != "#e0f2fe" || got.Roughness != 0.35 || !got.Wireframe {
		t.Errorf("Unexpected params %+v", got)
	}
	if got.Maps.Normal != "textures/frost_n.png" {
		t.Errorf("Expected normal map, got %q", got.Maps.Normal)
	}
	if got.Metalness != 0.2 {
		t.Errorf("Expected default metalness, got %v", got.Metalness)
	}
}

func TestCatalogMarshalRoundTrip(t *testing.T) {
	data, err := BuiltinCatalog().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	if c.Len() != BuiltinCatalog().Len() {
		t.Errorf("Expected %d presets, got %d", BuiltinCatalog().Len(), c.Len())
	}
	ruby, _ := c.Get("ruby")
	if got := ApplyPreset(DefaultParams(), ruby); got.Color != "#e11d48" {
		t.Errorf("Expected ruby color, got %s", got.Color)
	}
}

func TestWatchCatalogReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	if err := os.WriteFile(path, []byte("presets: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Catalog, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = WatchCatalog(ctx, path, func(c *Catalog) { changed <- c })
	}()

	// Give the watcher a moment to register before writing
	time.Sleep(100 * time.Millisecond)
	doc := []byte("presets:\n  - id: late\n    name: Late\n")
	if err := os.WriteFile(path, doc, 0644); err != nil {
		t.Fatal(err)
	}

	// A write can surface as truncate+write, so wait for the final content
	deadline := time.After(3 * time.Second)
	for found := false; !found; {
		select {
		case c := <-changed:
			_, found = c.Get("late")
		case <-deadline:
			t.Fatal("Timed out waiting for catalog reload")
		}
	}

	cancel()
	<-done
}
