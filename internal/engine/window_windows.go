//go:build windows

package engine

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	dwmwaUseImmersiveDarkMode = 20
	dwmwaBorderColor          = 34
	dwmwaCaptionColor         = 35
)

// styleTitleBar darkens the caption and tints it and the border with the
// scene's background so the window frame matches the viewport.
func styleTitleBar(window *glfw.Window, background mgl32.Vec3) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return
	}
	set := func(attr uintptr, value uint32) {
		procDwmSetWindowAttribute.Call(
			uintptr(unsafe.Pointer(hwnd)),
			attr,
			uintptr(unsafe.Pointer(&value)),
			unsafe.Sizeof(value),
		)
	}
	set(dwmwaUseImmersiveDarkMode, 1)
	c := colorRef(background.Mul(0.5))
	set(dwmwaBorderColor, c)
	set(dwmwaCaptionColor, c)
}
