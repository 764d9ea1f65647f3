// Package assets resolves the opaque asset references (environment faces,
// texture maps) supplied by the host into decoded images.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyRef is returned when an empty reference is resolved.
var ErrEmptyRef = errors.New("assets: empty reference")

// Resolver opens asset references. The host's asset layer implements it; Dir
// covers the common filesystem case.
type Resolver interface {
	Open(ref string) (io.ReadCloser, error)
}

// Dir resolves references relative to a root directory.
type Dir string

func (d Dir) Open(ref string) (io.ReadCloser, error) {
	if ref == "" {
		return nil, ErrEmptyRef
	}
	path := ref
	if !filepath.IsAbs(ref) {
		path = filepath.Join(string(d), filepath.FromSlash(ref))
	}
	return os.Open(path)
}

// LoadRGBA opens ref through r and decodes it into a tightly packed RGBA image.
func LoadRGBA(r Resolver, ref string) (*image.RGBA, error) {
	rc, err := r.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", ref, err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", ref, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img into an *image.RGBA anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
