package replay

import (
	"github.com/golang/geo/r3"

	"github.com/viam-labs/replayodom/spatialmath"
)

// MotionDeskewer is a motion-compensation kernel. For each point it
// interpolates a fractional sub-motion between identity and the frame's
// motion delta at the point's position within the acquisition window, then
// applies the inverse of that sub-motion, so every point ends up expressed as
// if acquired at the window's start.
type MotionDeskewer struct{}

// NewMotionDeskewer returns a deskew kernel.
func NewMotionDeskewer() *MotionDeskewer {
	return &MotionDeskewer{}
}

// Deskew implements the motion-compensation contract. Point count and order
// are preserved. A degenerate window, where every timestamp is equal, returns
// the points unchanged.
func (d *MotionDeskewer) Deskew(
	points []r3.Vector,
	times []float64,
	motionDelta spatialmath.Pose,
) []r3.Vector {
	corrected := make([]r3.Vector, len(points))
	if len(points) == 0 {
		return corrected
	}
	tMin, tMax := TimeBounds(times)
	window := tMax - tMin
	if window == 0 {
		copy(corrected, points)
		return corrected
	}

	identity := spatialmath.NewZeroPose()
	for i, pt := range points {
		frac := (times[i] - tMin) / window
		subMotion := spatialmath.Interpolate(identity, motionDelta, frac)
		corrected[i] = spatialmath.TransformPoint(spatialmath.PoseInverse(subMotion), pt)
	}
	return corrected
}
