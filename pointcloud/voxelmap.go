package pointcloud

import (
	"sort"

	"github.com/golang/geo/r3"

	"github.com/viam-labs/replayodom/spatialmath"
)

// DefaultMaxPointsPerVoxel bounds how many points a single map voxel retains
// before further insertions into it are ignored.
const DefaultMaxPointsPerVoxel = 20

// VoxelMap is a spatial accumulator backed by a hash map keyed by integer
// voxel coordinates. Points are inserted in the global frame; once a voxel
// holds its maximum number of points, later arrivals into that voxel are
// dropped, so earlier insertions win. It has no internal synchronization; a
// single caller must serialize all mutation.
type VoxelMap struct {
	voxelSize         float64
	maxPointsPerVoxel int
	voxels            map[VoxelCoords][]r3.Vector
	size              int
}

// NewVoxelMap returns an empty map with the given voxel edge length. A
// maxPointsPerVoxel of 0 or less falls back to DefaultMaxPointsPerVoxel.
func NewVoxelMap(voxelSize float64, maxPointsPerVoxel int) *VoxelMap {
	if maxPointsPerVoxel <= 0 {
		maxPointsPerVoxel = DefaultMaxPointsPerVoxel
	}
	return &VoxelMap{
		voxelSize:         voxelSize,
		maxPointsPerVoxel: maxPointsPerVoxel,
		voxels:            map[VoxelCoords][]r3.Vector{},
	}
}

// Update transforms the given points into the global frame by the given pose
// and inserts them.
func (vm *VoxelMap) Update(points []r3.Vector, pose spatialmath.Pose) {
	for _, pt := range points {
		vm.insert(spatialmath.TransformPoint(pose, pt))
	}
}

func (vm *VoxelMap) insert(pt r3.Vector) {
	coords := GetVoxelCoordinates(pt, vm.voxelSize)
	held := vm.voxels[coords]
	if len(held) >= vm.maxPointsPerVoxel {
		return
	}
	vm.voxels[coords] = append(held, pt)
	vm.size++
}

// Size returns the number of points currently held.
func (vm *VoxelMap) Size() int {
	return vm.size
}

// VoxelSize returns the map's voxel edge length.
func (vm *VoxelMap) VoxelSize() float64 {
	return vm.voxelSize
}

// Points returns every held point. Voxels are visited in sorted coordinate
// order so repeated dumps of the same map are identical.
func (vm *VoxelMap) Points() []r3.Vector {
	keys := make([]VoxelCoords, 0, len(vm.voxels))
	for coords := range vm.voxels {
		keys = append(keys, coords)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.I != b.I {
			return a.I < b.I
		}
		if a.J != b.J {
			return a.J < b.J
		}
		return a.K < b.K
	})
	points := make([]r3.Vector, 0, vm.size)
	for _, coords := range keys {
		points = append(points, vm.voxels[coords]...)
	}
	return points
}
