// Package data loads the car paths and pedestrian waypoints the simulation
// runs on. Both are JSON documents keyed by name; an embedded four-arm
// intersection is used when no file is given.
package data

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/crosswalk/path"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:embed *.json
var DefaultsFS embed.FS

const (
	DefaultPaths     = "paths.json"
	DefaultWaypoints = "waypoints.json"
)

// ErrMalformedPoint is reported for a point that is not an [x, y, z] triple.
var ErrMalformedPoint = errors.New("data: point must have 3 coordinates")

// Set is everything the simulation needs from disk.
type Set struct {
	Paths  []*path.Path
	Height float64
	// Skipped names paths that were malformed or too short to build.
	Skipped []string

	WaypointNames []string
	Waypoints     []mgl64.Vec3
}

// read returns the named file from disk, or the embedded default when file
// is empty.
func read(file, fallback string) ([]byte, error) {
	if file == "" {
		return fs.ReadFile(DefaultsFS, fallback)
	}
	return os.ReadFile(file)
}

func toVec3(raw []float64) (mgl64.Vec3, error) {
	if len(raw) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%w: got %d", ErrMalformedPoint, len(raw))
	}
	return mgl64.Vec3{raw[0], raw[1], raw[2]}, nil
}

// ParsePaths decodes a name -> [[x, y, z], ...] document. A path holding
// any malformed point is left out and its name returned in malformed.
func ParsePaths(b []byte) (paths map[string][]mgl64.Vec3, malformed []string, err error) {
	var doc map[string][][]float64
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, nil, fmt.Errorf("data: unmarshal paths: %w", err)
	}

	paths = make(map[string][]mgl64.Vec3, len(doc))
	for name, raw := range doc {
		pts := make([]mgl64.Vec3, 0, len(raw))
		ok := true
		for _, r := range raw {
			pt, err := toVec3(r)
			if err != nil {
				ok = false
				break
			}
			pts = append(pts, pt)
		}
		if !ok {
			malformed = append(malformed, name)
			continue
		}
		paths[name] = pts
	}
	sort.Strings(malformed)
	return paths, malformed, nil
}

// ParseWaypoints decodes a name -> [x, y, z] document into positions ordered
// by name. Malformed entries are dropped.
func ParseWaypoints(b []byte) (names []string, points []mgl64.Vec3, err error) {
	var doc map[string][]float64
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, nil, fmt.Errorf("data: unmarshal waypoints: %w", err)
	}

	keys := lo.Keys(doc)
	sort.Strings(keys)
	for _, name := range keys {
		pt, err := toVec3(doc[name])
		if err != nil {
			continue
		}
		names = append(names, name)
		points = append(points, pt)
	}
	return names, points, nil
}

func LoadPaths(file string) (map[string][]mgl64.Vec3, []string, error) {
	b, err := read(file, DefaultPaths)
	if err != nil {
		return nil, nil, fmt.Errorf("data: read paths %s: %w", file, err)
	}
	return ParsePaths(b)
}

// LoadWaypoints treats a missing file as an empty set.
func LoadWaypoints(file string) ([]string, []mgl64.Vec3, error) {
	b, err := read(file, DefaultWaypoints)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("data: read waypoints %s: %w", file, err)
	}
	return ParseWaypoints(b)
}

// Load reads paths and waypoints concurrently, builds the paths and levels
// the waypoints to the paths' median height.
func Load(ctx context.Context, pathsFile, waypointsFile string, log logrus.FieldLogger) (*Set, error) {
	var (
		raw       map[string][]mgl64.Vec3
		malformed []string
		names     []string
		waypoints []mgl64.Vec3
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		raw, malformed, err = LoadPaths(pathsFile)
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		names, waypoints, err = LoadWaypoints(waypointsFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths, height, short := path.BuildAll(raw)
	skipped := append(malformed, short...)
	sort.Strings(skipped)
	for _, name := range skipped {
		log.WithField("path", name).Debug("path skipped")
	}

	if len(paths) > 0 {
		for i := range waypoints {
			waypoints[i][1] = height
		}
	}

	log.WithFields(logrus.Fields{
		"paths":     len(paths),
		"skipped":   len(skipped),
		"waypoints": len(waypoints),
		"height":    height,
	}).Info("intersection data loaded")

	return &Set{
		Paths:         paths,
		Height:        height,
		Skipped:       skipped,
		WaypointNames: names,
		Waypoints:     waypoints,
	}, nil
}
