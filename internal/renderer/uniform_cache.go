package renderer

import "github.com/go-gl/mathgl/mgl32"

// UniformCache caches uniform locations of one program to avoid repeated lookups.
type UniformCache struct {
	device    Device
	locations map[string]int32
	program   uint32
}

func NewUniformCache(device Device, program uint32) *UniformCache {
	return &UniformCache{
		device:    device,
		locations: make(map[string]int32),
		program:   program,
	}
}

// GetLocation returns the cached uniform location or fetches and caches it.
func (uc *UniformCache) GetLocation(name string) int32 {
	if loc, exists := uc.locations[name]; exists {
		return loc
	}
	loc := uc.device.UniformLocation(uc.program, name)
	uc.locations[name] = loc
	return loc
}

func (uc *UniformCache) SetFloat(name string, value float32) {
	if loc := uc.GetLocation(name); loc != -1 {
		uc.device.Uniform1f(loc, value)
	}
}

func (uc *UniformCache) SetVec3(name string, v mgl32.Vec3) {
	if loc := uc.GetLocation(name); loc != -1 {
		uc.device.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (uc *UniformCache) SetInt(name string, value int32) {
	if loc := uc.GetLocation(name); loc != -1 {
		uc.device.Uniform1i(loc, value)
	}
}

func (uc *UniformCache) SetBool(name string, value bool) {
	var v int32
	if value {
		v = 1
	}
	uc.SetInt(name, v)
}

func (uc *UniformCache) SetMat4(name string, m mgl32.Mat4) {
	if loc := uc.GetLocation(name); loc != -1 {
		uc.device.UniformMatrix4(loc, m)
	}
}

// Set dispatches on the value's type; unknown types are skipped.
func (uc *UniformCache) Set(name string, value interface{}) {
	switch v := value.(type) {
	case float32:
		uc.SetFloat(name, v)
	case int32:
		uc.SetInt(name, v)
	case bool:
		uc.SetBool(name, v)
	case mgl32.Vec3:
		uc.SetVec3(name, v)
	case mgl32.Mat4:
		uc.SetMat4(name, v)
	}
}

// Clear clears the cache (call when the shader program changes).
func (uc *UniformCache) Clear() {
	uc.locations = make(map[string]int32)
}
