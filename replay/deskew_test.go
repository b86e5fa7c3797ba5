package replay

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/viam-labs/replayodom/spatialmath"
)

func TestDeskewIdentityDelta(t *testing.T) {
	deskewer := NewMotionDeskewer()
	points := []r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0, Z: 4}}
	corrected := deskewer.Deskew(points, []float64{0, 1}, spatialmath.NewZeroPose())
	test.That(t, len(corrected), test.ShouldEqual, len(points))
	for i := range points {
		test.That(t, spatialmath.R3VectorAlmostEqual(corrected[i], points[i], 1e-9), test.ShouldBeTrue)
	}
}

func TestDeskewTranslationDelta(t *testing.T) {
	deskewer := NewMotionDeskewer()
	delta := spatialmath.NewPoseFromPoint(r3.Vector{X: 6, Y: 0, Z: 0})
	points := []r3.Vector{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}}
	corrected := deskewer.Deskew(points, []float64{2, 5, 8}, delta)

	// The earliest point is the reference and stays put; the latest is pulled
	// back by the full delta; the midpoint by half.
	test.That(t, corrected[0].X, test.ShouldAlmostEqual, 1)
	test.That(t, corrected[1].X, test.ShouldAlmostEqual, -2)
	test.That(t, corrected[2].X, test.ShouldAlmostEqual, -5)
	for _, pt := range corrected {
		test.That(t, pt.Y, test.ShouldAlmostEqual, 1)
		test.That(t, pt.Z, test.ShouldAlmostEqual, 1)
	}
}

func TestDeskewDegenerateWindow(t *testing.T) {
	deskewer := NewMotionDeskewer()
	delta := spatialmath.NewPoseFromPoint(r3.Vector{X: 6, Y: 0, Z: 0})
	points := []r3.Vector{{X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}}
	corrected := deskewer.Deskew(points, []float64{3, 3}, delta)
	test.That(t, corrected, test.ShouldResemble, points)
}

func TestDeskewPreservesOrderUnsortedTimes(t *testing.T) {
	deskewer := NewMotionDeskewer()
	delta := spatialmath.NewPoseFromPoint(r3.Vector{X: 4, Y: 0, Z: 0})
	points := []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}
	// Later-acquired point listed first.
	corrected := deskewer.Deskew(points, []float64{10, 6}, delta)
	test.That(t, corrected[0].X, test.ShouldAlmostEqual, -4)
	test.That(t, corrected[1].X, test.ShouldAlmostEqual, 0)
}

func TestDeskewEmptyFrame(t *testing.T) {
	deskewer := NewMotionDeskewer()
	corrected := deskewer.Deskew(nil, nil, spatialmath.NewZeroPose())
	test.That(t, len(corrected), test.ShouldEqual, 0)
}
