package renderer

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	phi = 1.618034

	// GemElongation stretches the dodecahedron along Y into a gem.
	GemElongation float32 = 1.35
)

// Geometry is an indexed triangle mesh with one normal and one UV per vertex.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// CrystalGeometry builds the crystal gem: a pentagonal dodecahedron of the
// given radius elongated along Y. Faces do not share vertices so shading is flat.
func CrystalGeometry(radius float32) *Geometry {
	corners := dodecahedronVertices()
	g := &Geometry{}
	for _, n := range icosahedronDirections() {
		face := faceCorners(corners, n)
		base := uint32(len(g.Positions))

		center := mgl32.Vec3{}
		for _, c := range face {
			center = center.Add(c)
		}
		center = center.Mul(1.0 / float32(len(face)))
		u := face[0].Sub(center).Normalize()
		w := n.Cross(u)
		r := face[0].Sub(center).Len()

		shaped := make([]mgl32.Vec3, len(face))
		for i, c := range face {
			shaped[i] = shape(c, radius)
		}
		normal := shaped[1].Sub(shaped[0]).Cross(shaped[2].Sub(shaped[0])).Normalize()
		if normal.Dot(shape(center, radius)) < 0 {
			normal = normal.Mul(-1)
		}

		for i, c := range face {
			d := c.Sub(center)
			g.Positions = append(g.Positions, shaped[i])
			g.Normals = append(g.Normals, normal)
			g.UVs = append(g.UVs, mgl32.Vec2{0.5 + 0.5*d.Dot(u)/r, 0.5 + 0.5*d.Dot(w)/r})
		}
		for i := uint32(1); i+1 < uint32(len(face)); i++ {
			g.Indices = append(g.Indices, base, base+i, base+i+1)
		}
	}
	return g
}

func shape(v mgl32.Vec3, radius float32) mgl32.Vec3 {
	s := radius / math32.Sqrt(3)
	return mgl32.Vec3{v[0] * s, v[1] * s * GemElongation, v[2] * s}
}

func dodecahedronVertices() []mgl32.Vec3 {
	ip := float32(1 / phi)
	p := float32(phi)
	vs := make([]mgl32.Vec3, 0, 20)
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{-1, 1} {
				vs = append(vs, mgl32.Vec3{x, y, z})
			}
		}
	}
	for _, a := range []float32{-1, 1} {
		for _, b := range []float32{-1, 1} {
			vs = append(vs,
				mgl32.Vec3{0, a * ip, b * p},
				mgl32.Vec3{a * ip, b * p, 0},
				mgl32.Vec3{a * p, 0, b * ip})
		}
	}
	return vs
}

// icosahedronDirections are the dodecahedron's face normals.
func icosahedronDirections() []mgl32.Vec3 {
	p := float32(phi)
	ns := make([]mgl32.Vec3, 0, 12)
	for _, a := range []float32{-1, 1} {
		for _, b := range []float32{-1, 1} {
			ns = append(ns,
				mgl32.Vec3{0, a * p, b}.Normalize(),
				mgl32.Vec3{a * p, b, 0}.Normalize(),
				mgl32.Vec3{a, 0, b * p}.Normalize())
		}
	}
	return ns
}

// faceCorners returns the five corners facing n, counter-clockwise seen from outside.
func faceCorners(corners []mgl32.Vec3, n mgl32.Vec3) []mgl32.Vec3 {
	sorted := append([]mgl32.Vec3(nil), corners...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Dot(n) > sorted[j].Dot(n)
	})
	face := sorted[:5]

	center := mgl32.Vec3{}
	for _, c := range face {
		center = center.Add(c)
	}
	center = center.Mul(0.2)
	u := face[0].Sub(center).Normalize()
	w := n.Cross(u)
	sort.SliceStable(face, func(i, j int) bool {
		di, dj := face[i].Sub(center), face[j].Sub(center)
		return math32.Atan2(di.Dot(w), di.Dot(u)) < math32.Atan2(dj.Dot(w), dj.Dot(u))
	})
	return face
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// Interleaved packs position, UV and normal per vertex, 8 floats each.
func (g *Geometry) Interleaved() []float32 {
	data := make([]float32, 0, len(g.Positions)*8)
	for i, v := range g.Positions {
		data = append(data, v.X(), v.Y(), v.Z())
		data = append(data, g.UVs[i].X(), g.UVs[i].Y())
		data = append(data, g.Normals[i].X(), g.Normals[i].Y(), g.Normals[i].Z())
	}
	return data
}

// FlatPositions returns positions as a flat xyz array.
func (g *Geometry) FlatPositions() []float32 {
	flat := make([]float32, 0, len(g.Positions)*3)
	for _, v := range g.Positions {
		flat = append(flat, v.X(), v.Y(), v.Z())
	}
	return flat
}

// BoundingSphere returns the centroid and the distance to the farthest vertex.
func (g *Geometry) BoundingSphere() (mgl32.Vec3, float32) {
	if len(g.Positions) == 0 {
		return mgl32.Vec3{}, 0
	}
	var center mgl32.Vec3
	for _, v := range g.Positions {
		center = center.Add(v)
	}
	center = center.Mul(1 / float32(len(g.Positions)))
	var maxSq float32
	for _, v := range g.Positions {
		if d := v.Sub(center).LenSqr(); d > maxSq {
			maxSq = d
		}
	}
	return center, math32.Sqrt(maxSq)
}
