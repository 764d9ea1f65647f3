package scene

import (
	"errors"
	"image"

	"Crystal3D/internal/lighting"
	"Crystal3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// countingDevice is a renderer.Device that only tracks object lifetimes.
type countingDevice struct {
	next     uint32
	live     map[uint32]string
	freed    map[uint32]int
	draws    int
	failProg bool
}

func newCountingDevice() *countingDevice {
	return &countingDevice{live: map[uint32]string{}, freed: map[uint32]int{}}
}

func (d *countingDevice) alloc(kind string) uint32 {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *countingDevice) free(id uint32) {
	d.freed[id]++
	delete(d.live, id)
}

func (d *countingDevice) doubleFrees() int {
	n := 0
	for _, c := range d.freed {
		if c > 1 {
			n++
		}
	}
	return n
}

func (d *countingDevice) CreateProgram(_, _ string) (uint32, error) {
	if d.failProg {
		return 0, errors.New("link failed")
	}
	return d.alloc("program"), nil
}
func (d *countingDevice) DeleteProgram(p uint32)                            { d.free(p) }
func (d *countingDevice) UseProgram(uint32)                                 {}
func (d *countingDevice) UniformLocation(uint32, string) int32              { return 0 }
func (d *countingDevice) Uniform1f(int32, float32)                          {}
func (d *countingDevice) Uniform1i(int32, int32)                            {}
func (d *countingDevice) Uniform3f(int32, float32, float32, float32)        {}
func (d *countingDevice) UniformMatrix4(int32, mgl32.Mat4)                  {}
func (d *countingDevice) BindTexture(int32, renderer.TextureTarget, uint32) {}
func (d *countingDevice) Viewport(int32, int32)                             {}
func (d *countingDevice) Clear(mgl32.Vec3)                                  {}
func (d *countingDevice) SetWireframe(bool)                                 {}
func (d *countingDevice) SetBlending(bool)                                  {}
func (d *countingDevice) DrawElements(renderer.BufferSet)                   { d.draws++ }

func (d *countingDevice) CreateBuffers(_ []float32, indices []uint32) renderer.BufferSet {
	return renderer.BufferSet{VAO: d.alloc("vao"), Count: int32(len(indices))}
}

func (d *countingDevice) DeleteBuffers(b renderer.BufferSet) { d.free(b.VAO) }

func (d *countingDevice) CreateTexture2D(*image.RGBA, bool) uint32 { return d.alloc("texture") }
func (d *countingDevice) CreateCubeMap([]*image.RGBA) uint32       { return d.alloc("cubemap") }
func (d *countingDevice) DeleteTexture(id uint32)                  { d.free(id) }

// lightFailingBackend fails the n-th light it is asked for.
type lightFailingBackend struct {
	renderer.Backend
	failAt int
	calls  int
}

func (b *lightFailingBackend) NewLight(l lighting.Light, scale float32) (renderer.Light, error) {
	b.calls++
	if b.calls == b.failAt {
		return nil, errors.New("light unavailable")
	}
	return b.Backend.NewLight(l, scale)
}
