package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Projection maps the ground plane to screen pixels looking straight down:
// world X runs right and world Z runs down the screen.
type Projection struct {
	CenterX, CenterZ float64
	Scale            float64
	Width, Height    float64
}

// Fit centres points on a width x height screen, leaving margin pixels free
// on every side.
func Fit(points []mgl64.Vec3, width, height, margin float64) Projection {
	p := Projection{Scale: 1, Width: width, Height: height}
	if len(points) == 0 {
		return p
	}

	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, pt := range points {
		minX = math.Min(minX, pt.X())
		maxX = math.Max(maxX, pt.X())
		minZ = math.Min(minZ, pt.Z())
		maxZ = math.Max(maxZ, pt.Z())
	}
	p.CenterX = (minX + maxX) / 2
	p.CenterZ = (minZ + maxZ) / 2

	spanX, spanZ := maxX-minX, maxZ-minZ
	availX, availZ := width-2*margin, height-2*margin
	if spanX > 0 && spanZ > 0 && availX > 0 && availZ > 0 {
		p.Scale = math.Min(availX/spanX, availZ/spanZ)
	}
	return p
}

func (p Projection) ToScreen(v mgl64.Vec3) (float32, float32) {
	x := (v.X()-p.CenterX)*p.Scale + p.Width/2
	y := (v.Z()-p.CenterZ)*p.Scale + p.Height/2
	return float32(x), float32(y)
}

// Angle is the screen rotation of a ground-plane direction.
func (p Projection) Angle(dir mgl64.Vec3) float64 {
	return math.Atan2(dir.Z(), dir.X())
}
