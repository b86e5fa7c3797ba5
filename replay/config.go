package replay

import (
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"
)

// Config holds the mapping parameters consumed by the replay driver.
type Config struct {
	// MappingVoxelSize is the map's voxel edge length; frames are
	// downsampled at half this size before insertion. Must be positive.
	MappingVoxelSize float64 `yaml:"mapping_voxel_size"`

	// MaxPointsPerVoxel caps how many points one map voxel retains; 0 keeps
	// the accumulator's default.
	MaxPointsPerVoxel int `yaml:"max_points_per_voxel"`
}

// DefaultConfig returns the config used when no file is supplied.
func DefaultConfig() Config {
	return Config{MappingVoxelSize: 1.0}
}

// ReadConfig loads a YAML config file over the defaults.
func ReadConfig(path string) (Config, error) {
	config := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot open config file %q", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return Config{}, errors.Wrapf(err, "cannot parse config file %q", path)
	}
	if err := config.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config file %q", path)
	}
	return config, nil
}

// Validate ensures all parts of the config are valid.
func (c Config) Validate() error {
	if c.MappingVoxelSize <= 0 {
		return errors.Errorf("mapping_voxel_size must be positive, got %v", c.MappingVoxelSize)
	}
	if c.MaxPointsPerVoxel < 0 {
		return errors.Errorf("max_points_per_voxel cannot be negative, got %d", c.MaxPointsPerVoxel)
	}
	return nil
}
