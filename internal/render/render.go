package render

import (
	"image"
	"math"

	"printwatch/internal/meshbuild"
)

// Scene describes everything around the mesh: camera, lights and
// background. A zero Background leaves unlit pixels fully transparent,
// which is what the comparison stage uses to mask the render.
type Scene struct {
	Camera     Camera
	Lights     []Light
	Ambient    float64
	Background [4]uint8 // RGBA; {0,0,0,0} = transparent
}

// Render draws the print mesh into a new image of the given size.
// Flat shading: each triangle gets one color from its averaged vertex
// colors, lit by the scene's point lights at the face centroid.
func Render(obj *meshbuild.Object, sc Scene, width, height int) *image.NRGBA {
	fb := NewFrameBuffer(width, height)
	if sc.Background[3] > 0 {
		for i := 0; i < len(fb.Color); i += 4 {
			fb.Color[i] = sc.Background[0]
			fb.Color[i+1] = sc.Background[1]
			fb.Color[i+2] = sc.Background[2]
			fb.Color[i+3] = sc.Background[3]
		}
	}

	v := sc.Camera.view(width, height)

	// Project every vertex once
	n := len(obj.Vertices)
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)
	vis := make([]bool, n)
	for i, p := range obj.Vertices {
		px[i], py[i], pz[i], vis[i] = v.project(p, width, height)
	}

	for _, tri := range obj.Indices {
		i0, i1, i2 := tri[0], tri[1], tri[2]
		if i0 < 0 || i1 < 0 || i2 < 0 || i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		if !vis[i0] || !vis[i1] || !vis[i2] {
			continue
		}

		// Face normal and centroid in world space, for flat shading
		a := obj.Vertices[i0]
		e1 := obj.Vertices[i1].Sub(a)
		e2 := obj.Vertices[i2].Sub(a)
		normal := e1.Cross(e2)
		if normal.Len() < 1e-12 {
			continue
		}
		normal = normal.Normalize()
		centroid := a.Add(obj.Vertices[i1]).Add(obj.Vertices[i2]).Scale(1.0 / 3)

		sr, sg, sb := shade(sc.Lights, sc.Ambient, normal, centroid)

		// Flat per-extruder coloring: all three vertices carry the
		// same color, averaging just tolerates a mixed seam.
		c0, c1, c2 := obj.Colors[i0], obj.Colors[i1], obj.Colors[i2]
		mr := (c0[0] + c1[0] + c2[0]) / 3
		mg := (c0[1] + c1[1] + c2[1]) / 3
		mb := (c0[2] + c1[2] + c2[2]) / 3

		cr := encode(mr * sr)
		cg := encode(mg * sg)
		cb := encode(mb * sb)

		fillTriangle(fb,
			px[i0], py[i0], pz[i0],
			px[i1], py[i1], pz[i1],
			px[i2], py[i2], pz[i2],
			cr, cg, cb)
	}

	return fb.ToNRGBA()
}

// encode maps a lit linear value to an sRGB byte via ACES tone mapping.
func encode(linear float64) uint8 {
	return clamp255(math.Pow(ACESTonemap(linear), 1/2.2) * 255)
}
