package common

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Up is the world vertical axis. Agents live on the XZ ground plane.
var Up = mgl64.Vec3{0, 1, 0}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpVec3 interpolates component-wise between a and b.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Median returns the median of values, averaging the two middle values for
// even-length input. An empty slice yields 0. The input is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// WrapMod maps x into [0, m) for any sign of x.
func WrapMod(x, m float64) float64 {
	return math.Mod(math.Mod(x, m)+m, m)
}

// Yaw returns the rotation about Up that turns +Z toward dir.
func Yaw(dir mgl64.Vec3) float64 {
	return math.Atan2(dir.X(), dir.Z())
}

// YawQuat builds the orientation for a yaw angle in radians.
func YawQuat(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(yaw, Up)
}
