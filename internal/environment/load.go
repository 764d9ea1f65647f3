package environment

import (
	"context"
	"fmt"
	"image"
	"path"

	"Crystal3D/internal/assets"

	"github.com/anthonynsimon/bild/blur"
	"go.uber.org/multierr"
	"golang.org/x/image/draw"
)

const (
	irradianceSize = 16
	irradianceBlur = 3.0
)

// Loader produces a real environment source. Load runs on a worker goroutine
// and must not touch scene state.
type Loader interface {
	Load(ctx context.Context) (*Source, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*Source, error)

func (f LoaderFunc) Load(ctx context.Context) (*Source, error) {
	return f(ctx)
}

// CubeMap loads six faces named <Dir>/<face><Ext>, e.g. studio/px.png.
type CubeMap struct {
	Assets assets.Resolver
	Dir    string
	Ext    string
}

func (c CubeMap) Load(ctx context.Context) (*Source, error) {
	var refs [6]string
	ext := c.Ext
	if ext == "" {
		ext = ".png"
	}
	for i, f := range CubeFaces {
		refs[i] = path.Join(c.Dir, f+ext)
	}
	return LoadCubeMap(ctx, c.Assets, refs)
}

// Equirect loads a single equirectangular panorama.
type Equirect struct {
	Assets assets.Resolver
	Ref    string
}

func (e Equirect) Load(ctx context.Context) (*Source, error) {
	return LoadEquirect(ctx, e.Assets, e.Ref)
}

// LoadCubeMap decodes the six faces in CubeFaces order. Faces that are not
// square or differ in size are rescaled to the largest face. Every failing
// face is reported.
func LoadCubeMap(ctx context.Context, r assets.Resolver, refs [6]string) (*Source, error) {
	faces := make([]*image.RGBA, 6)
	var err error
	for i, ref := range refs {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		img, ferr := assets.LoadRGBA(r, ref)
		if ferr != nil {
			err = multierr.Append(err, fmt.Errorf("face %s: %w", CubeFaces[i], ferr))
			continue
		}
		faces[i] = img
	}
	if err != nil {
		return nil, err
	}

	size := 0
	for _, f := range faces {
		b := f.Bounds()
		size = max(size, b.Dx(), b.Dy())
	}
	irr := make([]*image.RGBA, 6)
	for i, f := range faces {
		if b := f.Bounds(); b.Dx() != size || b.Dy() != size {
			faces[i] = resize(f, size, size, draw.CatmullRom)
		}
		irr[i] = irradiance(faces[i], irradianceSize, irradianceSize)
	}

	return &Source{
		Kind:       KindReal,
		Origin:     refs[0],
		Intensity:  1,
		Faces:      faces,
		Irradiance: irr,
	}, nil
}

// LoadEquirect decodes a panorama and forces a 2:1 aspect ratio.
func LoadEquirect(ctx context.Context, r assets.Resolver, ref string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := assets.LoadRGBA(r, ref)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() != 2*b.Dy() {
		w := max(b.Dx(), 2*b.Dy())
		img = resize(img, w, w/2, draw.CatmullRom)
	}
	return &Source{
		Kind:       KindReal,
		Origin:     ref,
		Intensity:  1,
		Equirect:   img,
		Irradiance: []*image.RGBA{irradiance(img, 2*irradianceSize, irradianceSize)},
	}, nil
}

func resize(src image.Image, w, h int, s draw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	s.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// irradiance is a cheap diffuse approximation: downsample then blur.
func irradiance(src *image.RGBA, w, h int) *image.RGBA {
	small := resize(src, w, h, draw.ApproxBiLinear)
	return blur.Gaussian(small, irradianceBlur)
}
