package render

import "printwatch/internal/mathutil"

// Light is a point light with inverse-square falloff.
type Light struct {
	Pos       mathutil.Vec3
	Color     [3]float64 // RGB in [0, 1]
	Intensity float64
	Range     float64 // no contribution beyond this distance; 0 = unlimited
}

// shade computes the light arriving at a flat face with the given
// world-space normal and centroid. Ambient is a constant floor so
// faces turned away from every light stay visible.
func shade(lights []Light, ambient float64, normal, centroid mathutil.Vec3) (r, g, b float64) {
	r, g, b = ambient, ambient, ambient
	for _, l := range lights {
		toLight := l.Pos.Sub(centroid)
		d := toLight.Len()
		if d < 1e-9 || (l.Range > 0 && d > l.Range) {
			continue
		}
		ndl := normal.Dot(toLight.Scale(1 / d))
		if ndl < 0 {
			ndl = -ndl // double-sided: ribbon caps face either way
		}
		atten := l.Intensity / (d * d)
		r += l.Color[0] * ndl * atten
		g += l.Color[1] * ndl * atten
		b += l.Color[2] * ndl * atten
	}
	return r, g, b
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	v := (x * (a*x + b)) / (x*(c*x+d) + e)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
