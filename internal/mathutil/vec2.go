package mathutil

import "math"

// Vec2 is a 2-component vector (value type, stack-allocated).
type Vec2 [2]float64

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v[0], -v[1]}
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Rot90 rotates the vector a quarter turn counter-clockwise.
// Exact component swap, no trigonometry, so repeated rotations and
// negation comparisons stay bit-precise.
func (v Vec2) Rot90() Vec2 {
	return Vec2{-v[1], v[0]}
}

// RotNeg90 rotates the vector a quarter turn clockwise.
func (v Vec2) RotNeg90() Vec2 {
	return Vec2{v[1], -v[0]}
}

// Rotate rotates the vector by an arbitrary angle in radians.
func (v Vec2) Rotate(angle float64) Vec2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec2{v[0]*c - v[1]*s, v[0]*s + v[1]*c}
}

// ScaleTo returns the vector rescaled to the given length.
// A zero vector has no direction and is returned unchanged.
func (v Vec2) ScaleTo(length float64) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v[0] / l * length, v[1] / l * length}
}

// OffsetBoth offsets a 3D point by ±n in the XY plane, carrying z through.
func OffsetBoth(p Vec3, n Vec2) (pos, neg Vec3) {
	pos = Vec3{p[0] + n[0], p[1] + n[1], p[2]}
	neg = Vec3{p[0] - n[0], p[1] - n[1], p[2]}
	return pos, neg
}
