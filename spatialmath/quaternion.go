package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// QuatRotate rotates a vector by a unit quaternion, q * (0,v) * q⁻¹.
func QuatRotate(q quat.Number, v r3.Vector) r3.Vector {
	qv := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rotated := quat.Mul(quat.Mul(q, qv), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// Normalize a quaternion, returning its, versor (unit quaternion).
func Normalize(q quat.Number) quat.Number {
	length := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if math.Abs(length-1.0) < 1e-10 {
		return q
	}
	if length == 0 {
		return quat.Number{Real: 1}
	}
	if length == math.Inf(1) {
		length = float64(math.MaxFloat64)
	}
	return quat.Scale(1/length, q)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same
// orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// QuaternionAlmostEqual compares two quaternions element-wise within a tolerance,
// treating q and -q as the same orientation.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return quatDiffWithin(a, b, tol) || quatDiffWithin(a, Flip(b), tol)
}

func quatDiffWithin(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
}

// R3VectorAlmostEqual compares two r3.Vectors element-wise within a tolerance.
func R3VectorAlmostEqual(a, b r3.Vector, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

// slerp returns the spherical linear interpolation between q1 and q2 at by,
// always along the shortest arc: if the two quaternions lie in opposing
// octants, q2 is flipped first so the path never goes the long way around.
// Inputs are assumed to be unit quaternions.
func slerp(q1, q2 quat.Number, by float64) quat.Number {
	dot := q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag
	if dot < 0 {
		q2 = Flip(q2)
		dot = -dot
	}

	// Nearly parallel orientations make sin(theta) vanish; fall back to a
	// normalized linear interpolation, which is indistinguishable at this scale.
	if dot > 1-1e-10 {
		return Normalize(quat.Number{
			Real: q1.Real + by*(q2.Real-q1.Real),
			Imag: q1.Imag + by*(q2.Imag-q1.Imag),
			Jmag: q1.Jmag + by*(q2.Jmag-q1.Jmag),
			Kmag: q1.Kmag + by*(q2.Kmag-q1.Kmag),
		})
	}

	theta0 := math.Acos(dot)
	theta := theta0 * by
	sinTheta0 := math.Sin(theta0)
	s1 := math.Cos(theta) - dot*math.Sin(theta)/sinTheta0
	s2 := math.Sin(theta) / sinTheta0
	return quat.Number{
		Real: s1*q1.Real + s2*q2.Real,
		Imag: s1*q1.Imag + s2*q2.Imag,
		Jmag: s1*q1.Jmag + s2*q2.Jmag,
		Kmag: s1*q1.Kmag + s2*q2.Kmag,
	}
}
