// Package pointcloud provides voxel-grid operations over 3D point sets: a
// voxel-grid downsampling kernel and a voxel-hash map accumulator.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// VoxelCoords stores integer voxel coordinates in voxel-grid axes.
type VoxelCoords struct {
	I, J, K int64
}

// IsEqual tests if two VoxelCoords are the same.
func (c VoxelCoords) IsEqual(c2 VoxelCoords) bool {
	return c.I == c2.I && c.J == c2.J && c.K == c2.K
}

// GetVoxelCoordinates computes the coordinates of the voxel of edge length
// voxelSize containing the given point. Cells are floor-quantized about the
// origin, so the cell [0,voxelSize) maps to index 0 on each axis.
func GetVoxelCoordinates(pt r3.Vector, voxelSize float64) VoxelCoords {
	return VoxelCoords{
		I: int64(math.Floor(pt.X / voxelSize)),
		J: int64(math.Floor(pt.Y / voxelSize)),
		K: int64(math.Floor(pt.Z / voxelSize)),
	}
}

// VoxelDownsample reduces a point set to at most one representative point per
// occupied voxel of the given edge length: the first point seen in each voxel
// is kept. Points are visited and retained in input order, so the result is
// deterministic, and its size never exceeds the input's.
func VoxelDownsample(points []r3.Vector, voxelSize float64) []r3.Vector {
	seen := make(map[VoxelCoords]bool, len(points))
	reduced := make([]r3.Vector, 0, len(points))
	for _, pt := range points {
		coords := GetVoxelCoordinates(pt, voxelSize)
		if seen[coords] {
			continue
		}
		seen[coords] = true
		reduced = append(reduced, pt)
	}
	return reduced
}

// VoxelDownsampler adapts VoxelDownsample to the replay driver's downsampler
// capability.
type VoxelDownsampler struct{}

// NewVoxelDownsampler returns a voxel-grid downsampler.
func NewVoxelDownsampler() *VoxelDownsampler {
	return &VoxelDownsampler{}
}

// Downsample implements the voxel-grid reduction contract.
func (d *VoxelDownsampler) Downsample(points []r3.Vector, voxelSize float64) []r3.Vector {
	return VoxelDownsample(points, voxelSize)
}
