package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, Median(c.values), 1e-12)
		})
	}
}

func TestMedianDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestWrapMod(t *testing.T) {
	assert.InDelta(t, 160.0, WrapMod(-10, 170), 1e-9)
	assert.InDelta(t, 130.0, WrapMod(130, 170), 1e-9)
	assert.InDelta(t, 0.0, WrapMod(340, 170), 1e-9)
	assert.InDelta(t, 5.0, WrapMod(-335, 170), 1e-9)
}

func TestYawQuatRotatesForwardOntoDirection(t *testing.T) {
	dir := mgl64.Vec3{1, 0, 1}.Normalize()
	q := YawQuat(Yaw(dir))
	got := q.Rotate(mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, dir.X(), got.X(), 1e-9)
	assert.InDelta(t, dir.Z(), got.Z(), 1e-9)
	assert.InDelta(t, math.Pi/4, Yaw(dir), 1e-9)
}
