package renderer

import (
	"image"
	"sync"

	"Crystal3D/internal/logger"

	"go.uber.org/zap"
)

// TextureStats provides debugging information about texture usage.
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
}

// TextureManager caches textures by key and frees them when their last
// reference is released. A texture is deleted from the device exactly once.
type TextureManager struct {
	device          Device
	textureCache    map[string]uint32 // key -> texture ID
	textureRefCount map[uint32]int
	textureKeys     map[uint32]string
	mu              sync.Mutex
	stats           TextureStats
}

func NewTextureManager(device Device) *TextureManager {
	return &TextureManager{
		device:          device,
		textureCache:    make(map[string]uint32),
		textureRefCount: make(map[uint32]int),
		textureKeys:     make(map[uint32]string),
	}
}

// Acquire returns the texture cached under key with its reference count
// incremented, or creates it with create on a miss.
func (tm *TextureManager) Acquire(key string, create func(Device) (uint32, error)) (uint32, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if id, ok := tm.textureCache[key]; ok {
		tm.textureRefCount[id]++
		tm.stats.CacheHits++
		logger.Log.Debug("Texture cache hit",
			zap.String("key", key),
			zap.Uint32("textureID", id),
			zap.Int("refCount", tm.textureRefCount[id]))
		return id, nil
	}

	tm.stats.CacheMisses++
	id, err := create(tm.device)
	if err != nil {
		return 0, err
	}
	tm.textureCache[key] = id
	tm.textureRefCount[id] = 1
	tm.textureKeys[id] = key
	tm.stats.TotalTextures++
	logger.Log.Debug("Texture created", zap.String("key", key), zap.Uint32("textureID", id))
	return id, nil
}

// CreateTextureFromImage acquires a 2D texture for img under name.
func (tm *TextureManager) CreateTextureFromImage(img *image.RGBA, name string) (uint32, error) {
	return tm.Acquire(name, func(d Device) (uint32, error) {
		return d.CreateTexture2D(img, true), nil
	})
}

// AddReference increments the reference count of a live texture.
func (tm *TextureManager) AddReference(id uint32) {
	if id == 0 {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if _, ok := tm.textureRefCount[id]; ok {
		tm.textureRefCount[id]++
	}
}

// ReleaseTexture drops one reference and deletes the texture when none remain.
func (tm *TextureManager) ReleaseTexture(id uint32) {
	if id == 0 {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	refCount, ok := tm.textureRefCount[id]
	if !ok {
		logger.Log.Warn("Attempted to release unknown texture", zap.Uint32("textureID", id))
		return
	}
	refCount--
	if refCount > 0 {
		tm.textureRefCount[id] = refCount
		return
	}

	tm.device.DeleteTexture(id)
	key := tm.textureKeys[id]
	delete(tm.textureCache, key)
	delete(tm.textureRefCount, id)
	delete(tm.textureKeys, id)
	logger.Log.Debug("Texture freed", zap.Uint32("textureID", id), zap.String("key", key))
}

// RefCount returns the live reference count of id, 0 if it is not cached.
func (tm *TextureManager) RefCount(id uint32) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.textureRefCount[id]
}

func (tm *TextureManager) GetStats() TextureStats {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	stats := tm.stats
	stats.ActiveTextures = len(tm.textureRefCount)
	return stats
}

// Clear deletes every cached texture regardless of references.
func (tm *TextureManager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for id := range tm.textureRefCount {
		tm.device.DeleteTexture(id)
	}
	tm.textureCache = make(map[string]uint32)
	tm.textureRefCount = make(map[uint32]int)
	tm.textureKeys = make(map[uint32]string)
	logger.Log.Debug("Texture manager cleared")
}
