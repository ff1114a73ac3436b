package ribbon

import "printwatch/internal/mathutil"

// Outline widens a 1D polyline into the 2D boundary of a ribbon of the
// given half-width. For each of the N input points it emits a pair of
// points offset perpendicular to the local line direction, so the
// result has 2N points ordered (left0, right0, left1, right1, ...).
// The offset is purely in the XY plane; z is carried through.
//
// Endpoints use the normal of their single adjacent segment. Interior
// points use the angle-bisector miter join: the sum of the two
// adjacent segment normals, renormalized to the half-width. The
// rotations are exact quarter turns rather than normal-equation
// solutions, which keeps each normal on a predictable side of the line.
//
// Returns nil for lines with fewer than 2 points (no direction exists).
func Outline(line []mathutil.Vec3, halfWidth float64) []mathutil.Vec3 {
	if len(line) < 2 {
		return nil
	}

	out := make([]mathutil.Vec3, 0, 2*len(line))

	// First point: normal of the very first segment
	firstNormal := line[1].Sub(line[0]).XY().Rot90().ScaleTo(halfWidth)
	pos, neg := mathutil.OffsetBoth(line[0], firstNormal)
	out = append(out, pos, neg)

	for i := 1; i < len(line)-1; i++ {
		// Segment directions before and after this point, both
		// pointing away from the neighbors toward the current point
		lastDif := line[i].Sub(line[i-1]).XY()
		nextDif := line[i].Sub(line[i+1]).XY()

		lastNormal := lastDif.Rot90()
		nextNormal := nextDif.RotNeg90()

		// Summing the two normals gives the miter direction, except
		// when they are exact negatives (straight run or perfect
		// reversal): the sum would be the zero vector with no usable
		// direction, so one of them is used directly. The comparison
		// is deliberately exact, not tolerance-based.
		var normal mathutil.Vec2
		if lastNormal == nextNormal.Neg() {
			normal = lastNormal
		} else {
			normal = lastNormal.Add(nextNormal)
		}
		normal = normal.ScaleTo(halfWidth)

		pos, neg := mathutil.OffsetBoth(line[i], normal)
		out = append(out, pos, neg)
	}

	// Last point: normal of the very last segment
	lastNormal := line[len(line)-1].Sub(line[len(line)-2]).XY().Rot90().ScaleTo(halfWidth)
	pos, neg = mathutil.OffsetBoth(line[len(line)-1], lastNormal)
	out = append(out, pos, neg)

	return out
}
