package crystal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"Crystal3D/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrPresetNotFound is returned for unknown preset ids.
var ErrPresetNotFound = errors.New("crystal: preset not found")

// Catalog is an ordered, id indexed set of presets. It is immutable once built.
type Catalog struct {
	presets []Preset
	byID    map[string]int
}

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

// NewCatalog builds a catalog from presets. Duplicate or empty ids are rejected.
func NewCatalog(presets []Preset) (*Catalog, error) {
	c := &Catalog{
		presets: make([]Preset, 0, len(presets)),
		byID:    make(map[string]int, len(presets)),
	}
	for _, p := range presets {
		if p.ID == "" {
			return nil, fmt.Errorf("crystal: preset %q has no id", p.Name)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("crystal: duplicate preset id %q", p.ID)
		}
		c.byID[p.ID] = len(c.presets)
		c.presets = append(c.presets, p)
	}
	return c, nil
}

// BuiltinCatalog returns the presets shipped with the engine.
func BuiltinCatalog() *Catalog {
	c, err := NewCatalog(builtinPresets())
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads a YAML preset file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML preset document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse preset catalog: %w", err)
	}
	return NewCatalog(f.Presets)
}

// Marshal encodes the catalog in the same YAML layout LoadCatalog reads.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(catalogFile{Presets: c.List()})
}

// Len returns the number of presets.
func (c *Catalog) Len() int {
	return len(c.presets)
}

// List returns the presets in catalog order. The slice is a copy.
func (c *Catalog) List() []Preset {
	out := make([]Preset, len(c.presets))
	copy(out, c.presets)
	return out
}

// Get looks up a preset by id.
func (c *Catalog) Get(id string) (Preset, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Preset{}, false
	}
	return c.presets[i], true
}

// Apply merges preset id onto base.
func (c *Catalog) Apply(base Params, id string) (Params, error) {
	p, ok := c.Get(id)
	if !ok {
		return base, fmt.Errorf("%w: %q", ErrPresetNotFound, id)
	}
	return ApplyPreset(base, p), nil
}

// WatchCatalog reloads the YAML file at path whenever it is written and hands
// the new catalog to onChange. Parse failures are logged and the previous
// catalog stays in effect. It blocks until ctx is done.
func WatchCatalog(ctx context.Context, path string, onChange func(*Catalog)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing it
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c, err := LoadCatalog(path)
			if err != nil {
				logger.Log.Warn("Preset catalog reload failed, keeping previous",
					zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Log.Info("Preset catalog reloaded",
				zap.String("path", path), zap.Int("presets", c.Len()))
			onChange(c)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Log.Warn("Preset catalog watcher error", zap.Error(err))
		}
	}
}
