package data

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParsePathsSkipsMalformed(t *testing.T) {
	paths, malformed, err := ParsePaths([]byte(`{
		"a-b": [[0, 1, 0], [10, 1, 0]],
		"b-c": [[0, 1, 0], [10, 1]],
		"c-d": [[0, 0, 0]]
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"b-c"}, malformed)
	assert.Equal(t, []mgl64.Vec3{{0, 1, 0}, {10, 1, 0}}, paths["a-b"])
	assert.Len(t, paths["c-d"], 1)
	assert.NotContains(t, paths, "b-c")
}

func TestParsePathsRejectsBadJSON(t *testing.T) {
	_, _, err := ParsePaths([]byte(`{"a-b": "nope"}`))
	assert.Error(t, err)
}

func TestParseWaypointsOrdersByName(t *testing.T) {
	names, pts, err := ParseWaypoints([]byte(`{
		"wp3": [3, 0, 3],
		"wp1": [1, 0, 1],
		"wp2": [2, 0],
		"wp0": [0, 0, 0]
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"wp0", "wp1", "wp3"}, names)
	assert.Equal(t, []mgl64.Vec3{{0, 0, 0}, {1, 0, 1}, {3, 0, 3}}, pts)
}

func TestToVec3(t *testing.T) {
	_, err := toVec3([]float64{1, 2})
	assert.ErrorIs(t, err, ErrMalformedPoint)

	v, err := toVec3([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, v)
}

func TestMissingWaypointsFileIsEmpty(t *testing.T) {
	names, pts, err := LoadWaypoints(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, pts)
}

func TestMissingPathsFileFails(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), "", quietLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDefaults(t *testing.T) {
	set, err := Load(context.Background(), "", "", quietLogger())
	require.NoError(t, err)

	assert.Len(t, set.Paths, 8)
	assert.Empty(t, set.Skipped)
	assert.Equal(t, []string{"wp1", "wp2", "wp3", "wp4"}, set.WaypointNames)
	for i := 1; i < len(set.Paths); i++ {
		assert.Less(t, set.Paths[i-1].Name(), set.Paths[i].Name())
	}
	for _, p := range set.Paths {
		for _, pt := range p.Points() {
			assert.Equal(t, set.Height, pt.Y())
		}
	}
	for _, wp := range set.Waypoints {
		assert.Equal(t, set.Height, wp.Y())
	}
}

func TestLoadFromDisk(t *testing.T) {
	paths := writeFile(t, "paths.json", `{
		"x-y": [[0, 1, 0], [10, 3, 0]],
		"y-z": [[0, 2, 0], [0, 2, 10], [0, 2, 20]],
		"bad-1": [[0, 0, 0]],
		"bad-2": [[0, 0]]
	}`)
	waypoints := writeFile(t, "waypoints.json", `{"wpA": [1, 9, 1], "wpB": [5, 9, 5]}`)

	set, err := Load(context.Background(), paths, waypoints, quietLogger())
	require.NoError(t, err)

	require.Len(t, set.Paths, 2)
	assert.Equal(t, "x-y", set.Paths[0].Name())
	assert.Equal(t, "y-z", set.Paths[1].Name())
	assert.Equal(t, []string{"bad-1", "bad-2"}, set.Skipped)
	// Heights 1, 3, 2, 2, 2 and the stray 0 from bad-1.
	assert.Equal(t, 2.0, set.Height)
	assert.Equal(t, []mgl64.Vec3{{1, 2, 1}, {5, 2, 5}}, set.Waypoints)
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, "", "", quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}
