//go:build !windows

package engine

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// styleTitleBar is only implemented on Windows.
func styleTitleBar(*glfw.Window, mgl32.Vec3) {}
