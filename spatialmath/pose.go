// Package spatialmath defines spatial mathematical operations over rigid transforms.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a rigid transform in 3D Euclidean space: a rotation plus a
// translation. The rotation component is always a proper rotation, stored as a
// unit quaternion.
type Pose interface {
	// Point returns the translation component.
	Point() r3.Vector

	// Orientation returns the rotation component as a unit quaternion.
	Orientation() quat.Number
}

type basicPose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewZeroPose returns a pose with no translation and no rotation.
func NewZeroPose() Pose {
	return &basicPose{orientation: quat.Number{Real: 1}}
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(point r3.Vector, orientation quat.Number) Pose {
	return &basicPose{point: point, orientation: orientation}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and returns a Pose whose
// orientation is zero.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &basicPose{point: point, orientation: quat.Number{Real: 1}}
}

// NewPoseFromOrientation takes in a unit quaternion and returns a Pose whose
// translation is zero.
func NewPoseFromOrientation(orientation quat.Number) Pose {
	return &basicPose{orientation: orientation}
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() quat.Number {
	return p.orientation
}

// Compose returns the right-composition a then b: b's motion expressed in a's
// frame, chained onto a.
func Compose(a, b Pose) Pose {
	return &basicPose{
		point:       a.Point().Add(QuatRotate(a.Orientation(), b.Point())),
		orientation: quat.Mul(a.Orientation(), b.Orientation()),
	}
}

// PoseInverse returns the pose which undoes the given pose.
func PoseInverse(p Pose) Pose {
	invOrientation := quat.Conj(p.Orientation())
	return &basicPose{
		point:       QuatRotate(invOrientation, p.Point().Mul(-1)),
		orientation: invOrientation,
	}
}

// PoseBetween returns the pose of b relative to a, i.e. the pose x such that
// Compose(a, x) == b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// TransformPoint applies a pose to a point: rotate, then translate.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return QuatRotate(p.Orientation(), pt).Add(p.Point())
}

// Interpolate returns a new Pose that is the interpolation between p1 and p2.
// by=0 yields p1 and by=1 yields p2. Translation is interpolated linearly and
// rotation follows the shortest angular arc between the two orientations.
// Values of by outside [0,1] extrapolate. The result is a pure function of the
// inputs; identical inputs reproduce identical outputs bit for bit.
func Interpolate(p1, p2 Pose, by float64) Pose {
	return &basicPose{
		point: r3.Vector{
			X: (1-by)*p1.Point().X + by*p2.Point().X,
			Y: (1-by)*p1.Point().Y + by*p2.Point().Y,
			Z: (1-by)*p1.Point().Z + by*p2.Point().Z,
		},
		orientation: slerp(p1.Orientation(), p2.Orientation(), by),
	}
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately
// the same.
func PoseAlmostEqual(a, b Pose) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), 1e-8) &&
		QuaternionAlmostEqual(a.Orientation(), b.Orientation(), 1e-8)
}
