package engine

import (
	"Crystal3D/internal/logger"
	"Crystal3D/internal/renderer"

	"github.com/g3n/engine/camera"
	"github.com/g3n/engine/core"
	"github.com/g3n/engine/gls"
	"github.com/g3n/engine/math32"
	g3nrenderer "github.com/g3n/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// g3nHost draws G3N surfaces into the viewer's GL context.
type g3nHost struct {
	gs       *gls.GLS
	renderer *g3nrenderer.Renderer
	cam      *camera.Camera
}

// newG3NHost needs a current GL context.
func newG3NHost() (*g3nHost, error) {
	gs, err := gls.New()
	if err != nil {
		return nil, err
	}
	r := g3nrenderer.NewRenderer(gs)
	if err := r.AddDefaultShaders(); err != nil {
		return nil, err
	}
	return &g3nHost{gs: gs, renderer: r, cam: camera.New(1)}, nil
}

func (h *g3nHost) render(scene core.INode, cam *renderer.Camera, background mgl32.Vec3) {
	h.syncCamera(cam)
	h.gs.ClearColor(background[0], background[1], background[2], 1)
	h.gs.Clear(gls.DEPTH_BUFFER_BIT | gls.STENCIL_BUFFER_BIT | gls.COLOR_BUFFER_BIT)
	if err := h.renderer.Render(scene, h.cam); err != nil {
		logger.Log.Error("g3n render failed", zap.Error(err))
	}
}

// syncCamera copies the viewer camera into the g3n camera.
func (h *g3nHost) syncCamera(cam *renderer.Camera) {
	h.cam.SetAspect(cam.AspectRatio)
	h.cam.SetPosition(cam.Position[0], cam.Position[1], cam.Position[2])
	target := cam.Position.Add(cam.Front)
	h.cam.LookAt(&math32.Vector3{X: target[0], Y: target[1], Z: target[2]},
		&math32.Vector3{X: cam.Up[0], Y: cam.Up[1], Z: cam.Up[2]})
}
