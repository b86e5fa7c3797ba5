// Package dataloader reads recorded scans from a directory of plain-text
// frame files, one file per scan, iterated in file-name order.
package dataloader

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// scanFieldCount is the number of whitespace-separated fields in a scan
// line: timestamp x y z.
const scanFieldCount = 4

// Frame is one scan: a point set with per-point acquisition timestamps.
// Points and Times are parallel and in no particular time order.
type Frame struct {
	Points []r3.Vector
	Times  []float64
}

// DirLoader serves frames out of a directory, sorted by file name.
type DirLoader struct {
	paths  []string
	logger golog.Logger
}

// NewDirLoader scans a directory for frame files. A directory with no
// regular files is an error.
func NewDirLoader(dir string, logger golog.Logger) (*DirLoader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read scan directory %q", dir)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("scan directory %q has no frame files", dir)
	}
	return &DirLoader{paths: paths, logger: logger}, nil
}

// Len returns the number of frames available.
func (l *DirLoader) Len() int {
	return len(l.paths)
}

// Frame reads and parses the i-th frame. Lines whose field count is not
// exactly 4, or whose fields do not parse as floats, are skipped.
func (l *DirLoader) Frame(i int) (Frame, error) {
	path := l.paths[i]
	f, err := os.Open(path)
	if err != nil {
		return Frame{}, errors.Wrapf(err, "cannot open frame file %q", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)

	var frame Frame
	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != scanFieldCount {
			skipped++
			continue
		}
		vals := make([]float64, 0, scanFieldCount)
		parsed := true
		for _, field := range fields {
			v, convErr := strconv.ParseFloat(field, 64)
			// ParseFloat accepts "nan" and "inf"; non-finite coordinates or
			// timestamps make the line malformed.
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
		frame.Times = append(frame.Times, vals[0])
		frame.Points = append(frame.Points, r3.Vector{X: vals[1], Y: vals[2], Z: vals[3]})
	}
	if err := scanner.Err(); err != nil {
		return Frame{}, errors.Wrapf(err, "reading frame file %q", path)
	}
	if skipped != 0 {
		l.logger.Debugw("skipped malformed scan lines", "path", path, "lines", skipped)
	}
	return frame, nil
}
