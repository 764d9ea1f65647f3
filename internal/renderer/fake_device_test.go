package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeDevice records every call so tests can check that each GPU object is
// created and deleted exactly once.
type fakeDevice struct {
	nextID uint32

	livePrograms map[uint32]bool
	liveTextures map[uint32]bool
	liveVAOs     map[uint32]bool

	deletedPrograms map[uint32]int
	deletedTextures map[uint32]int
	deletedVAOs     map[uint32]int

	locations map[string]int32
	values    map[string]interface{}

	failProgram error
	draws       int
	clears      int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		livePrograms:    map[uint32]bool{},
		liveTextures:    map[uint32]bool{},
		liveVAOs:        map[uint32]bool{},
		deletedPrograms: map[uint32]int{},
		deletedTextures: map[uint32]int{},
		deletedVAOs:     map[uint32]int{},
		locations:       map[string]int32{},
		values:          map[string]interface{}{},
	}
}

func (d *fakeDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) CreateProgram(_, _ string) (uint32, error) {
	if d.failProgram != nil {
		return 0, d.failProgram
	}
	id := d.id()
	d.livePrograms[id] = true
	return id, nil
}

func (d *fakeDevice) DeleteProgram(p uint32) {
	d.deletedPrograms[p]++
	delete(d.livePrograms, p)
}

func (d *fakeDevice) UseProgram(uint32) {}

func (d *fakeDevice) UniformLocation(_ uint32, name string) int32 {
	if loc, ok := d.locations[name]; ok {
		return loc
	}
	loc := int32(len(d.locations))
	d.locations[name] = loc
	return loc
}

func (d *fakeDevice) name(loc int32) string {
	for n, l := range d.locations {
		if l == loc {
			return n
		}
	}
	return ""
}

func (d *fakeDevice) Uniform1f(loc int32, v float32) { d.values[d.name(loc)] = v }
func (d *fakeDevice) Uniform1i(loc int32, v int32)   { d.values[d.name(loc)] = v }
func (d *fakeDevice) Uniform3f(loc int32, x, y, z float32) {
	d.values[d.name(loc)] = mgl32.Vec3{x, y, z}
}
func (d *fakeDevice) UniformMatrix4(loc int32, m mgl32.Mat4) { d.values[d.name(loc)] = m }

func (d *fakeDevice) CreateBuffers(interleaved []float32, indices []uint32) BufferSet {
	b := BufferSet{VAO: d.id(), VBO: d.id(), EBO: d.id(), Count: int32(len(indices))}
	d.liveVAOs[b.VAO] = true
	return b
}

func (d *fakeDevice) DeleteBuffers(b BufferSet) {
	d.deletedVAOs[b.VAO]++
	delete(d.liveVAOs, b.VAO)
}

func (d *fakeDevice) CreateTexture2D(*image.RGBA, bool) uint32 {
	id := d.id()
	d.liveTextures[id] = true
	return id
}

func (d *fakeDevice) CreateCubeMap([]*image.RGBA) uint32 {
	id := d.id()
	d.liveTextures[id] = true
	return id
}

func (d *fakeDevice) DeleteTexture(id uint32) {
	d.deletedTextures[id]++
	delete(d.liveTextures, id)
}

func (d *fakeDevice) BindTexture(int32, TextureTarget, uint32) {}
func (d *fakeDevice) Viewport(int32, int32)                    {}
func (d *fakeDevice) Clear(mgl32.Vec3)                         { d.clears++ }
func (d *fakeDevice) SetWireframe(bool)                        {}
func (d *fakeDevice) SetBlending(bool)                         {}
func (d *fakeDevice) DrawElements(BufferSet)                   { d.draws++ }

// doubleFrees returns how many objects were deleted more than once.
func (d *fakeDevice) doubleFrees() int {
	n := 0
	for _, m := range []map[uint32]int{d.deletedPrograms, d.deletedTextures, d.deletedVAOs} {
		for _, c := range m {
			if c > 1 {
				n++
			}
		}
	}
	return n
}

func (d *fakeDevice) live() int {
	return len(d.livePrograms) + len(d.liveTextures) + len(d.liveVAOs)
}
