// Package trajectory loads a time-indexed rigid-pose trajectory from disk and
// answers point and interpolated pose queries against it.
package trajectory

import (
	"bufio"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"

	"github.com/viam-labs/replayodom/spatialmath"
)

// tumFieldCount is the number of whitespace-separated fields in a TUM pose
// line: timestamp tx ty tz qx qy qz qw.
const tumFieldCount = 8

// Store is an immutable trajectory index: timestamps sorted ascending in one
// array, with the pose for times[i] at poses[i]. Built once by Load.
type Store struct {
	times []float64
	poses []spatialmath.Pose
}

// Load parses a TUM-format trajectory file, one pose sample per line. Lines
// whose field count is not exactly 8, or whose fields do not parse as floats,
// are skipped without error. When the same timestamp appears twice, the later
// line wins. A missing file, or a file yielding zero usable samples, is a
// fatal load error.
func Load(path string, logger golog.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open trajectory file %q", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)

	byTime := map[float64]spatialmath.Pose{}
	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != tumFieldCount {
			skipped++
			continue
		}
		vals := make([]float64, 0, tumFieldCount)
		parsed := true
		for _, field := range fields {
			v, convErr := strconv.ParseFloat(field, 64)
			// ParseFloat accepts "nan" and "inf"; a non-finite value corrupts
			// the time index, so the line is malformed.
			if convErr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				parsed = false
				break
			}
			vals = append(vals, v)
		}
		if !parsed {
			skipped++
			continue
		}
		byTime[vals[0]] = spatialmath.NewPose(
			r3.Vector{X: vals[1], Y: vals[2], Z: vals[3]},
			// TUM stores the quaternion as (qx, qy, qz, qw).
			spatialmath.Normalize(quat.Number{Real: vals[7], Imag: vals[4], Jmag: vals[5], Kmag: vals[6]}),
		)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading trajectory file %q", path)
	}
	if len(byTime) == 0 {
		return nil, errors.Errorf("trajectory file %q has no usable pose samples", path)
	}
	if skipped != 0 {
		logger.Debugw("skipped malformed trajectory lines", "path", path, "lines", skipped)
	}

	times := make([]float64, 0, len(byTime))
	for stamp := range byTime {
		times = append(times, stamp)
	}
	sort.Float64s(times)
	poses := make([]spatialmath.Pose, len(times))
	for i, stamp := range times {
		poses[i] = byTime[stamp]
	}
	return &Store{times: times, poses: poses}, nil
}

// Len returns the number of stored samples.
func (s *Store) Len() int {
	return len(s.times)
}

// Bounds returns the earliest and latest stored timestamps.
func (s *Store) Bounds() (float64, float64) {
	return s.times[0], s.times[len(s.times)-1]
}

// Lookup returns the pose at the given timestamp. A stamp matching a stored
// sample returns that pose untouched. A stamp before the earliest sample
// returns the identity pose; a stamp past the latest sample clamps to the
// final pose. Anything in between is found by a lower-bound binary search over
// the bracketing samples and interpolated at the elapsed-time fraction.
func (s *Store) Lookup(stamp float64) (spatialmath.Pose, error) {
	// NaN compares false against every stored timestamp and would defeat the
	// bracket search entirely.
	if math.IsNaN(stamp) || math.IsInf(stamp, 0) {
		return nil, errors.Errorf("cannot look up non-finite stamp %v", stamp)
	}
	upper := sort.SearchFloat64s(s.times, stamp)
	if upper < len(s.times) && s.times[upper] == stamp {
		return s.poses[upper], nil
	}
	if stamp < s.times[0] {
		// Queries preceding the recorded trajectory fall back to identity.
		return spatialmath.NewZeroPose(), nil
	}
	if stamp > s.times[len(s.times)-1] {
		return s.poses[len(s.times)-1], nil
	}
	if len(s.times) < 2 {
		return nil, errors.Errorf("interpolating at %v requires at least two samples, have %d", stamp, len(s.times))
	}

	lower := upper - 1
	t1, t2 := s.times[lower], s.times[upper]
	if !(t1 < stamp && stamp < t2) {
		return nil, errors.Errorf("bracket invariant violated for stamp %v: t1=%v t2=%v", stamp, t1, t2)
	}
	frac := (stamp - t1) / (t2 - t1)
	return spatialmath.Interpolate(s.poses[lower], s.poses[upper], frac), nil
}
