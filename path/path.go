// Package path builds the fixed curves cars drive along. Curves are
// centripetal Catmull-Rom splines through the ingested control points,
// sampled by arc length so that a constant progress rate is a constant
// ground speed.
package path

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/crosswalk/common"
	"github.com/samber/lo"
)

// ErrTooFewPoints is returned when a path has fewer than two control points.
var ErrTooFewPoints = errors.New("path: need at least 2 points")

const (
	arcDivisions = 200
	tangentDelta = 1e-4
)

// Path is immutable once built.
type Path struct {
	name    string
	points  []mgl64.Vec3
	lengths []float64
}

// Build creates a path through points. The slice is copied.
func Build(name string, points []mgl64.Vec3) (*Path, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("path: build %s: %w", name, ErrTooFewPoints)
	}
	p := &Path{
		name:   name,
		points: append([]mgl64.Vec3(nil), points...),
	}
	p.lengths = p.arcLengths(arcDivisions)
	return p, nil
}

// MedianHeight returns the median Y over every point of every path.
func MedianHeight(raw map[string][]mgl64.Vec3) float64 {
	var ys []float64
	for _, pts := range raw {
		for _, pt := range pts {
			ys = append(ys, pt.Y())
		}
	}
	return common.Median(ys)
}

// BuildAll levels every point to the shared median height and builds one
// path per entry, ordered by name. Entries with too few points are returned
// in skipped instead of failing the whole set.
func BuildAll(raw map[string][]mgl64.Vec3) (paths []*Path, height float64, skipped []string) {
	height = MedianHeight(raw)

	names := lo.Keys(raw)
	sort.Strings(names)
	for _, name := range names {
		pts := lo.Map(raw[name], func(pt mgl64.Vec3, _ int) mgl64.Vec3 {
			return mgl64.Vec3{pt.X(), height, pt.Z()}
		})
		p, err := Build(name, pts)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		paths = append(paths, p)
	}
	return paths, height, skipped
}

func (p *Path) Name() string {
	return p.name
}

// Points returns a copy of the control points.
func (p *Path) Points() []mgl64.Vec3 {
	return append([]mgl64.Vec3(nil), p.points...)
}

// Length is the sampled arc length of the whole curve.
func (p *Path) Length() float64 {
	return p.lengths[len(p.lengths)-1]
}

// PointAt returns the point a fraction u of the way along the curve by arc
// length. u is clamped to [0, 1].
func (p *Path) PointAt(u float64) mgl64.Vec3 {
	return p.point(p.uToT(u))
}

// TangentAt returns the unit direction of travel at arc-length fraction u.
// A curve with no extent reports +X.
func (p *Path) TangentAt(u float64) mgl64.Vec3 {
	t := p.uToT(u)
	t1 := math.Max(0, t-tangentDelta)
	t2 := math.Min(1, t+tangentDelta)
	d := p.point(t2).Sub(p.point(t1))
	if d.Len() == 0 {
		return mgl64.Vec3{1, 0, 0}
	}
	return d.Normalize()
}

// point evaluates the spline at curve parameter t in [0, 1].
func (p *Path) point(t float64) mgl64.Vec3 {
	n := len(p.points)
	f := float64(n-1) * t
	i := int(math.Floor(f))
	weight := f - float64(i)
	if i >= n-1 {
		i = n - 2
		weight = 1
	}
	if i < 0 {
		i = 0
		weight = 0
	}

	p1 := p.points[i]
	p2 := p.points[i+1]
	var p0, p3 mgl64.Vec3
	if i > 0 {
		p0 = p.points[i-1]
	} else {
		p0 = p1.Mul(2).Sub(p2)
	}
	if i+2 < n {
		p3 = p.points[i+2]
	} else {
		p3 = p2.Mul(2).Sub(p1)
	}

	dt0 := math.Pow(p0.Sub(p1).Dot(p0.Sub(p1)), 0.25)
	dt1 := math.Pow(p1.Sub(p2).Dot(p1.Sub(p2)), 0.25)
	dt2 := math.Pow(p2.Sub(p3).Dot(p2.Sub(p3)), 0.25)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return cubic(p0, p1, p2, p3, dt0, dt1, dt2, weight)
}

// cubic evaluates the non-uniform Catmull-Rom segment between x1 and x2.
func cubic(x0, x1, x2, x3 mgl64.Vec3, dt0, dt1, dt2, w float64) mgl64.Vec3 {
	t1 := x1.Sub(x0).Mul(1 / dt0).Sub(x2.Sub(x0).Mul(1 / (dt0 + dt1))).Add(x2.Sub(x1).Mul(1 / dt1))
	t2 := x2.Sub(x1).Mul(1 / dt1).Sub(x3.Sub(x1).Mul(1 / (dt1 + dt2))).Add(x3.Sub(x2).Mul(1 / dt2))
	t1 = t1.Mul(dt1)
	t2 = t2.Mul(dt1)

	c0 := x1
	c1 := t1
	c2 := x1.Mul(-3).Add(x2.Mul(3)).Sub(t1.Mul(2)).Sub(t2)
	c3 := x1.Mul(2).Sub(x2.Mul(2)).Add(t1).Add(t2)

	w2 := w * w
	return c0.Add(c1.Mul(w)).Add(c2.Mul(w2)).Add(c3.Mul(w2 * w))
}

func (p *Path) arcLengths(divisions int) []float64 {
	lengths := make([]float64, divisions+1)
	last := p.point(0)
	sum := 0.0
	for i := 1; i <= divisions; i++ {
		cur := p.point(float64(i) / float64(divisions))
		sum += cur.Sub(last).Len()
		lengths[i] = sum
		last = cur
	}
	return lengths
}

// uToT maps an arc-length fraction onto the curve parameter.
func (p *Path) uToT(u float64) float64 {
	u = lo.Clamp(u, 0, 1)
	n := len(p.lengths)
	target := u * p.lengths[n-1]

	i := sort.SearchFloat64s(p.lengths, target)
	if i < n && p.lengths[i] == target {
		return float64(i) / float64(n-1)
	}
	// lengths[i-1] < target < lengths[i]
	if i <= 0 {
		return 0
	}
	if i >= n {
		return 1
	}
	before := p.lengths[i-1]
	seg := p.lengths[i] - before
	if seg <= 0 {
		return float64(i-1) / float64(n-1)
	}
	return (float64(i-1) + (target-before)/seg) / float64(n-1)
}
