package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// TextureTarget is the kind of texture a handle refers to.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCube
)

// BufferSet is the GPU storage of one mesh.
type BufferSet struct {
	VAO, VBO, EBO uint32
	Count         int32
}

// Device is the slice of the graphics API the OpenGL backend uses. The real
// implementation wraps go-gl; tests substitute a recording fake.
type Device interface {
	CreateProgram(vertexSource, fragmentSource string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1f(location int32, v float32)
	Uniform1i(location int32, v int32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4(location int32, m mgl32.Mat4)

	CreateBuffers(interleaved []float32, indices []uint32) BufferSet
	DeleteBuffers(b BufferSet)

	CreateTexture2D(img *image.RGBA, repeat bool) uint32
	CreateCubeMap(faces []*image.RGBA) uint32
	DeleteTexture(id uint32)
	BindTexture(unit int32, target TextureTarget, id uint32)

	Viewport(width, height int32)
	Clear(color mgl32.Vec3)
	SetWireframe(on bool)
	SetBlending(on bool)
	DrawElements(b BufferSet)
}
