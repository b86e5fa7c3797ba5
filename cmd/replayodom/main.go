// Package main contains a command to replay a recorded trajectory over a
// directory of scans, accumulating them into a voxel map.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/viam-labs/replayodom/dataloader"
	"github.com/viam-labs/replayodom/pointcloud"
	"github.com/viam-labs/replayodom/replay"
	"github.com/viam-labs/replayodom/spatialmath"
	"github.com/viam-labs/replayodom/trajectory"
)

var logger = golog.NewDevelopmentLogger("replayodom")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	DataDir    string `flag:"0,required,usage=directory of recorded scan files"`
	Trajectory string `flag:"trajectory,required,usage=TUM trajectory file to replay"`
	Config     string `flag:"config,usage=YAML pipeline config file"`
	Log        bool   `flag:"log,usage=write replayed poses and map to disk on completion"`
	LogDir     string `flag:"log_dir,default=results,usage=output directory when logging"`
	RunName    string `flag:"run_name,usage=name prefix for output files; defaults to the data directory name"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	config := replay.DefaultConfig()
	if argsParsed.Config != "" {
		var err error
		if config, err = replay.ReadConfig(argsParsed.Config); err != nil {
			return err
		}
	}

	store, err := trajectory.Load(argsParsed.Trajectory, logger)
	if err != nil {
		return err
	}
	loader, err := dataloader.NewDirLoader(argsParsed.DataDir, logger)
	if err != nil {
		return err
	}

	minStamp, maxStamp := store.Bounds()
	logger.Infow("replaying recorded trajectory",
		"samples", store.Len(),
		"start", minStamp,
		"end", maxStamp,
		"frames", loader.Len(),
		"mapping_voxel_size", config.MappingVoxelSize,
	)

	localMap := pointcloud.NewVoxelMap(config.MappingVoxelSize, config.MaxPointsPerVoxel)
	odom, err := replay.New(
		config, store, replay.NewMotionDeskewer(), pointcloud.NewVoxelDownsampler(), localMap, logger)
	if err != nil {
		return err
	}

	state := replay.NewState()
	var stamps []float64
	var poses []spatialmath.Pose
	for i := 0; i < loader.Len(); i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		frame, err := loader.Frame(i)
		if err != nil {
			return err
		}
		if len(frame.Points) == 0 {
			logger.Warnw("skipping empty frame", "index", i)
			continue
		}
		if state, _, err = odom.RegisterFrame(state, frame.Points, frame.Times); err != nil {
			return errors.Wrapf(err, "registering frame %d", i)
		}
		_, stamp := replay.TimeBounds(frame.Times)
		stamps = append(stamps, stamp)
		poses = append(poses, state.LastPose)
	}
	logger.Infow("replay complete", "frames", len(poses), "map_points", localMap.Size())

	if !argsParsed.Log {
		return nil
	}
	runName := argsParsed.RunName
	if runName == "" {
		runName = filepath.Base(filepath.Clean(argsParsed.DataDir))
	}
	return logResults(argsParsed.LogDir, runName, stamps, poses, localMap, logger)
}

func logResults(
	dir, runName string,
	stamps []float64,
	poses []spatialmath.Pose,
	localMap *pointcloud.VoxelMap,
	logger golog.Logger,
) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create log directory %q", dir)
	}

	posePath := filepath.Join(dir, runName+"_poses.tum")
	if err := writeTUM(posePath, stamps, poses); err != nil {
		return err
	}
	mapPath := filepath.Join(dir, runName+"_map.xyz")
	if err := writeXYZ(mapPath, localMap); err != nil {
		return err
	}
	logger.Infow("results written", "poses", posePath, "map", mapPath)
	return nil
}

func writeTUM(path string, stamps []float64, poses []spatialmath.Pose) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create pose log %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := bufio.NewWriter(f)
	for i, pose := range poses {
		pt := pose.Point()
		q := pose.Orientation()
		fmt.Fprintf(w, "%v %v %v %v %v %v %v %v\n",
			stamps[i], pt.X, pt.Y, pt.Z, q.Imag, q.Jmag, q.Kmag, q.Real)
	}
	return w.Flush()
}

func writeXYZ(path string, localMap *pointcloud.VoxelMap) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create map dump %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := bufio.NewWriter(f)
	for _, pt := range localMap.Points() {
		fmt.Fprintf(w, "%v %v %v\n", pt.X, pt.Y, pt.Z)
	}
	return w.Flush()
}
