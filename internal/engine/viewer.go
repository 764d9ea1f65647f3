// Package engine hosts a crystal scene in a glfw window.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"Crystal3D/internal/animation"
	"Crystal3D/internal/config"
	"Crystal3D/internal/crystal"
	"Crystal3D/internal/environment"
	"Crystal3D/internal/lighting"
	"Crystal3D/internal/logger"
	"Crystal3D/internal/renderer"
	"Crystal3D/internal/scene"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// ViewportID names the viewer's single viewport.
const ViewportID = "crystalview"

// Viewer hosts one crystal scene in a glfw window.
type Viewer struct {
	cfg      config.ViewerConfig
	window   *glfw.Window
	device   *renderer.GLDevice
	g3n      *g3nHost
	frames   *animation.ManualFrames
	resolver *environment.Resolver
	manager  *scene.Manager
	catalog  *crystal.Catalog
	preset   int
	rig      *lighting.Rig
	// ui carries work from background goroutines to the render loop.
	ui *environment.Mailbox
}

// NewViewer prepares a viewer. No window exists until Run.
func NewViewer(cfg config.ViewerConfig) *Viewer {
	v := &Viewer{
		cfg:     cfg,
		frames:  animation.NewManualFrames(),
		catalog: crystal.BuiltinCatalog(),
		rig:     lighting.NewRig(),
		ui:      environment.NewMailbox(),
	}
	// Environment completions and catalog reloads share the render loop's queue.
	v.resolver = cfg.Resolver(environment.WithMailbox(v.ui))
	v.manager = scene.NewManager(v.backend, cfg.BackendKind(), v.resolver,
		scene.WithFrames(v.frames),
		scene.WithClock(animation.NewFixedClock(cfg.FrameStep)))
	if cfg.PresetCatalog != "" {
		if c, err := crystal.LoadCatalog(cfg.PresetCatalog); err != nil {
			logger.Log.Warn("Preset catalog unavailable, using built-ins",
				zap.String("path", cfg.PresetCatalog), zap.Error(err))
		} else {
			v.catalog = c
		}
	}
	v.selectPreset(v.indexOf(cfg.InitialPreset))
	return v
}

func (v *Viewer) backend(kind renderer.BackendKind) (renderer.Backend, error) {
	switch kind {
	case renderer.OpenGL:
		if v.device == nil {
			return nil, fmt.Errorf("%s backend needs a GL context", kind)
		}
		return renderer.NewOpenGLBackend(v.device,
			renderer.WithAssets(v.cfg.Assets()),
			renderer.WithShading(v.cfg.Shading)), nil
	case renderer.G3N:
		opts := []renderer.G3NOption{renderer.WithG3NAssets(v.cfg.Assets())}
		if v.g3n != nil {
			opts = append(opts, renderer.WithRenderFunc(v.g3n.render))
		}
		return renderer.NewG3NBackend(opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", renderer.ErrUnknownBackend, kind)
}

// Run opens the window and renders until it is closed or ctx is done. It
// must be called from the main goroutine.
func (v *Viewer) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.Samples, v.cfg.Shading.MSAASamples)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(v.cfg.Width), int(v.cfg.Height), v.cfg.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	v.window = window
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	styleTitleBar(window, renderer.DefaultSkyColor)

	if v.device, err = renderer.NewGLDevice(); err != nil {
		return err
	}
	if v.g3n, err = newG3NHost(); err != nil {
		logger.Log.Warn("g3n renderer unavailable, g3n backend will not draw", zap.Error(err))
	}

	window.SetKeyCallback(v.onKey)
	if err := v.manager.Mount(v.viewport()); err != nil {
		return err
	}
	// The scene must be gone before the window and its context.
	defer v.manager.Unmount()

	if v.cfg.PresetCatalog != "" {
		watchCtx, stop := context.WithCancel(ctx)
		defer stop()
		go func() {
			err := crystal.WatchCatalog(watchCtx, v.cfg.PresetCatalog, func(c *crystal.Catalog) {
				v.ui.Post(func() { v.setCatalog(c) })
			})
			if err != nil {
				logger.Log.Warn("Preset catalog watch stopped", zap.Error(err))
			}
		}()
	}

	logger.Log.Info("Viewer running",
		zap.String("backend", string(v.manager.Backend())),
		zap.Int("presets", v.catalog.Len()))
	v.loop(ctx)
	return nil
}

func (v *Viewer) loop(ctx context.Context) {
	width, height := v.cfg.Width, v.cfg.Height
	for !v.window.ShouldClose() {
		if ctx.Err() != nil {
			return
		}
		w, h := v.window.GetFramebufferSize()
		if int32(w) != width || int32(h) != height {
			width, height = int32(w), int32(h)
			v.manager.Resize(width, height)
		}

		v.ui.Drain()
		v.frames.Step()
		v.manager.Frame()

		v.window.SwapBuffers()
		glfw.PollEvents()
	}
}

func (v *Viewer) viewport() renderer.Viewport {
	w, h := v.cfg.Width, v.cfg.Height
	if v.window != nil {
		fw, fh := v.window.GetFramebufferSize()
		w, h = int32(fw), int32(fh)
	}
	return renderer.Viewport{ID: ViewportID, Width: w, Height: h}
}

// Close releases the scene and the environment workers.
func (v *Viewer) Close() {
	v.manager.Unmount()
	v.resolver.Close()
	v.resolver.Mailbox().Drain()
}
