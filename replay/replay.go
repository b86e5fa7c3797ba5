// Package replay drives odometry-and-mapping over a pre-recorded trajectory:
// each incoming scan is motion-compensated against poses replayed from disk,
// downsampled, and accumulated into a running spatial map while a globally
// composed pose advances.
package replay

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/viam-labs/replayodom/spatialmath"
	"github.com/viam-labs/replayodom/trajectory"
)

// Deskewer corrects a scan for the sensor motion that occurred during its
// acquisition window. Implementations must return the same point count and
// order as the input.
type Deskewer interface {
	Deskew(points []r3.Vector, times []float64, motionDelta spatialmath.Pose) []r3.Vector
}

// Downsampler reduces a point set to at most one representative point per
// occupied voxel of the given edge length.
type Downsampler interface {
	Downsample(points []r3.Vector, voxelSize float64) []r3.Vector
}

// Map accumulates points expressed in a sensor-local frame at a given global
// pose. Update is called exactly once per processed frame, in chronological
// order, never concurrently.
type Map interface {
	Update(points []r3.Vector, pose spatialmath.Pose)
}

// State is the replay-time pose accumulator, passed to and returned from
// RegisterFrame so concurrent replay sessions never share mutable state.
type State struct {
	// LastPose is the globally composed pose after the most recent frame.
	LastPose spatialmath.Pose
}

// NewState returns the starting state: a global pose at identity.
func NewState() State {
	return State{LastPose: spatialmath.NewZeroPose()}
}

// Odometry replays a recorded trajectory in place of a real pose estimator.
// It never estimates motion from sensor data: motion deltas are looked up
// from trajectory samples at each frame's time bounds, which is only valid
// for offline replay, where the "future" of the trajectory is already known.
//
// Frames must be registered one at a time; neither Odometry nor the Map it
// feeds is safe for concurrent use.
type Odometry struct {
	config      Config
	traj        *trajectory.Store
	deskewer    Deskewer
	downsampler Downsampler
	localMap    Map
	logger      golog.Logger
}

// New validates the config and returns a replay odometry driver over the
// given trajectory and kernels.
func New(
	config Config,
	traj *trajectory.Store,
	deskewer Deskewer,
	downsampler Downsampler,
	localMap Map,
	logger golog.Logger,
) (*Odometry, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Odometry{
		config:      config,
		traj:        traj,
		deskewer:    deskewer,
		downsampler: downsampler,
		localMap:    localMap,
		logger:      logger,
	}, nil
}

// MotionDelta returns the relative motion spanning a frame's time window,
// expressed in the frame of the pose at the window's start:
// inverse(pose(tMin)) composed with pose(tMax).
func (o *Odometry) MotionDelta(times []float64) (spatialmath.Pose, error) {
	if len(times) == 0 {
		return nil, errors.New("frame has no point timestamps")
	}
	tMin, tMax := TimeBounds(times)
	poseMin, err := o.traj.Lookup(tMin)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up pose at frame start %v", tMin)
	}
	poseMax, err := o.traj.Lookup(tMax)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up pose at frame end %v", tMax)
	}
	return spatialmath.PoseBetween(poseMin, poseMax), nil
}

// RegisterFrame processes one scan: it computes the frame's motion delta,
// deskews the points, voxel-downsamples them at half the mapping voxel size,
// advances the global pose by the delta, and inserts the reduced points into
// the map at the new pose. It returns the advanced state and the deskewed
// points; no independent pose estimate is ever produced.
func (o *Odometry) RegisterFrame(
	state State,
	points []r3.Vector,
	times []float64,
) (State, []r3.Vector, error) {
	if len(points) != len(times) {
		return state, nil, errors.Errorf(
			"frame has %d points but %d timestamps", len(points), len(times))
	}

	motionDelta, err := o.MotionDelta(times)
	if err != nil {
		return state, nil, err
	}

	deskewed := o.deskewer.Deskew(points, times, motionDelta)
	// Downsample finer than the map resolution so local density survives the
	// eventual map-level reduction.
	reduced := o.downsampler.Downsample(deskewed, o.config.MappingVoxelSize*0.5)

	newPose := spatialmath.Compose(state.LastPose, motionDelta)
	o.localMap.Update(reduced, newPose)

	o.logger.Debugw("registered frame",
		"points", len(points),
		"reduced", len(reduced),
		"x", newPose.Point().X,
		"y", newPose.Point().Y,
		"z", newPose.Point().Z,
	)
	return State{LastPose: newPose}, deskewed, nil
}

// TimeBounds returns the earliest and latest of a frame's per-point
// acquisition times. The latest bound doubles as the timestamp a frame's
// replayed pose is logged at. times must be non-empty.
func TimeBounds(times []float64) (float64, float64) {
	tMin, tMax := times[0], times[0]
	for _, stamp := range times[1:] {
		if stamp < tMin {
			tMin = stamp
		}
		if stamp > tMax {
			tMax = stamp
		}
	}
	return tMin, tMax
}
