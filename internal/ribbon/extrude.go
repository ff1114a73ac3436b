package ribbon

import "printwatch/internal/mathutil"

// Mesh is one ribbon's geometry: a flat vertex list and triangles as
// index triples into it.
type Mesh struct {
	Vertices []mathutil.Vec3
	Indices  [][3]int
}

// Extrude raises a ribbon outline vertically into a closed triangle
// mesh. The outline must come from Outline: an even number (≥4) of
// points ordered in left/right pairs along the ribbon. The result has
// the outline as the bottom vertex ring, a copy lifted by height as
// the top ring, and triangles covering bottom, top, both side walls
// and the two end caps, so every boundary pair contributes a
// watertight quad segment.
//
// With n outline points the mesh has 2n vertices and 4 + 8*(n-2)/2
// triangles, wound outward for a left/right pair order produced by
// Outline.
func Extrude(outline []mathutil.Vec3, height float64) Mesh {
	n := len(outline)

	verts := make([]mathutil.Vec3, 0, 2*n)
	verts = append(verts, outline...)
	for _, p := range outline {
		verts = append(verts, mathutil.Vec3{p[0], p[1], p[2] + height})
	}

	indices := make([][3]int, 0, 4+4*(n-2))

	// Front cap
	indices = append(indices, [3]int{0, n + 1, 1}, [3]int{0, n, n + 1})

	// Back cap
	indices = append(indices,
		[3]int{n - 2, n - 1, 2*n - 1},
		[3]int{n - 2, 2*n - 1, 2*n - 2})

	for i := 0; i < n-2; i += 2 {
		indices = append(indices,
			// Bottom
			[3]int{i, i + 1, i + 3},
			[3]int{i, i + 3, i + 2},
			// Top
			[3]int{n + i, n + i + 3, n + i + 1},
			[3]int{n + i, n + i + 2, n + i + 3},
			// Right wall
			[3]int{i, i + 2, i + n},
			[3]int{i + 2, i + 2 + n, i + n},
			// Left wall
			[3]int{i + 1, i + 1 + n, i + 3},
			[3]int{i + 3, i + 1 + n, i + 3 + n})
	}

	return Mesh{Vertices: verts, Indices: indices}
}

// Build widens a polyline into a ribbon outline and extrudes it in one
// step. Returns a zero mesh for polylines shorter than 2 points.
func Build(line []mathutil.Vec3, halfWidth, height float64) Mesh {
	outline := Outline(line, halfWidth)
	if outline == nil {
		return Mesh{}
	}
	return Extrude(outline, height)
}
