package renderer

import (
	"errors"
	"image"
	"testing"
)

func TestTextureManagerRefCounting(t *testing.T) {
	d := newFakeDevice()
	tm := NewTextureManager(d)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	a, err := tm.CreateTextureFromImage(img, "swatch")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tm.CreateTextureFromImage(img, "swatch")
	if a != b {
		t.Errorf("Expected cache hit to return %d, got %d", a, b)
	}
	stats := tm.GetStats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 || stats.ActiveTextures != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	tm.ReleaseTexture(a)
	if !d.liveTextures[a] {
		t.Error("Texture freed with a reference outstanding")
	}
	tm.ReleaseTexture(a)
	tm.ReleaseTexture(a)
	if d.deletedTextures[a] != 1 {
		t.Errorf("Expected exactly one delete, got %d", d.deletedTextures[a])
	}
	if tm.RefCount(a) != 0 {
		t.Error("Released texture should leave the cache")
	}
}

func TestTextureManagerCreateError(t *testing.T) {
	tm := NewTextureManager(newFakeDevice())
	boom := errors.New("decode failed")
	_, err := tm.Acquire("bad", func(Device) (uint32, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Expected create error, got %v", err)
	}
	if tm.GetStats().ActiveTextures != 0 {
		t.Error("Failed creation must not be cached")
	}
}

func TestTextureManagerClear(t *testing.T) {
	d := newFakeDevice()
	tm := NewTextureManager(d)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	tm.CreateTextureFromImage(img, "a")
	tm.CreateTextureFromImage(img, "b")
	tm.Clear()
	if len(d.liveTextures) != 0 {
		t.Errorf("Expected all textures deleted, %d live", len(d.liveTextures))
	}
}
