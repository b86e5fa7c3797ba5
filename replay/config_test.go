package replay

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestConfigValidate(t *testing.T) {
	test.That(t, DefaultConfig().Validate(), test.ShouldBeNil)

	err := Config{MappingVoxelSize: 0}.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mapping_voxel_size")

	err = Config{MappingVoxelSize: -1}.Validate()
	test.That(t, err, test.ShouldNotBeNil)

	err = Config{MappingVoxelSize: 1, MaxPointsPerVoxel: -5}.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_points_per_voxel")
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "mapping_voxel_size: 0.25\nmax_points_per_voxel: 10\n"
	test.That(t, os.WriteFile(path, []byte(contents), 0o644), test.ShouldBeNil)

	config, err := ReadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, config.MappingVoxelSize, test.ShouldAlmostEqual, 0.25)
	test.That(t, config.MaxPointsPerVoxel, test.ShouldEqual, 10)
}

func TestReadConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	test.That(t, os.WriteFile(path, []byte("voxel: 0.25\n"), 0o644), test.ShouldBeNil)
	_, err := ReadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	test.That(t, os.WriteFile(path, []byte("mapping_voxel_size: -2\n"), 0o644), test.ShouldBeNil)
	_, err := ReadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}
