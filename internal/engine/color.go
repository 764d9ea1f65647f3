package engine

import "github.com/go-gl/mathgl/mgl32"

// colorRef packs c as a Win32 COLORREF (0x00BBGGRR).
func colorRef(c mgl32.Vec3) uint32 {
	b := func(v float32) uint32 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint32(v*255 + 0.5)
	}
	return b(c[0]) | b(c[1])<<8 | b(c[2])<<16
}
