package render

import (
	"math"

	"printwatch/internal/mathutil"
)

// Camera is a perspective camera looking down its local -Z axis.
// Rot holds pitch, roll and yaw in radians, applied as yaw·roll·pitch.
type Camera struct {
	Pos    mathutil.Vec3
	Rot    mathutil.Vec3 // pitch (X), roll (Y), yaw (Z)
	YFov   float64       // vertical field of view, radians
	Aspect float64       // width / height
}

// rotation builds the camera's world orientation matrix.
func (c Camera) rotation() mathutil.Mat3 {
	pitch := mathutil.RotX(c.Rot[0])
	roll := mathutil.RotY(c.Rot[1])
	yaw := mathutil.RotZ(c.Rot[2])
	return mathutil.Mat3Mul(mathutil.Mat3Mul(yaw, roll), pitch)
}

// view precomputes the world→camera transform: the inverse of the
// camera pose, which for a rotation is its transpose.
type view struct {
	invRot mathutil.Mat3
	pos    mathutil.Vec3
	fy     float64 // 1 / tan(yfov/2)
	aspect float64
}

func (c Camera) view(width, height int) view {
	aspect := c.Aspect
	if aspect == 0 {
		aspect = float64(width) / float64(height)
	}
	return view{
		invRot: c.rotation().Transpose(),
		pos:    c.Pos,
		fy:     1 / math.Tan(c.YFov/2),
		aspect: aspect,
	}
}

// project maps a world point to pixel coordinates plus a depth value.
// Depth grows toward the camera, matching the -inf-initialized
// z-buffer. ok is false for points at or behind the near plane.
func (v view) project(p mathutil.Vec3, width, height int) (x, y, depth float64, ok bool) {
	const near = 0.05

	cam := v.invRot.MulVec3(p.Sub(v.pos))
	if cam[2] >= -near {
		return 0, 0, 0, false
	}

	ndcX := cam[0] * v.fy / (v.aspect * -cam[2])
	ndcY := cam[1] * v.fy / -cam[2]

	x = (ndcX + 1) / 2 * float64(width)
	y = (1 - ndcY) / 2 * float64(height)
	return x, y, cam[2], true
}
