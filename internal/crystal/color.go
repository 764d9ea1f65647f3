package crystal

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// RGBHex is a CSS style hex color, "#rrggbb" or "#rgb".
type RGBHex string

// Parse returns the color as linear-agnostic RGB in [0,1]. ok is false when
// the string is not a valid hex color, in which case black is returned.
func (h RGBHex) Parse() (rgb mgl32.Vec3, ok bool) {
	s := strings.TrimPrefix(strings.TrimSpace(string(h)), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return mgl32.Vec3{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}, true
}

// RGB is Parse without the validity flag.
func (h RGBHex) RGB() mgl32.Vec3 {
	rgb, _ := h.Parse()
	return rgb
}

// Valid reports whether h parses.
func (h RGBHex) Valid() bool {
	_, ok := h.Parse()
	return ok
}

// HexFromRGB formats an RGB triple in [0,1] back to "#rrggbb".
func HexFromRGB(c mgl32.Vec3) RGBHex {
	b := func(f float32) uint64 {
		f = mgl32.Clamp(f, 0, 1)
		return uint64(f*255 + 0.5)
	}
	v := b(c[0])<<16 | b(c[1])<<8 | b(c[2])
	s := strconv.FormatUint(v, 16)
	return RGBHex("#" + strings.Repeat("0", 6-len(s)) + s)
}
