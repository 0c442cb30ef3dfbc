package sim

import (
	"io"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/ecs/component"
	"github.com/milk9111/crosswalk/path"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testReference = time.UnixMilli(1_700_000_000_000)

type recorder struct {
	created map[ecs.Entity]int
	removed map[ecs.Entity]int
	kinds   map[ecs.Entity]Kind
	frames  int
	last    Frame
}

func newRecorder() *recorder {
	return &recorder{
		created: make(map[ecs.Entity]int),
		removed: make(map[ecs.Entity]int),
		kinds:   make(map[ecs.Entity]Kind),
	}
}

func (r *recorder) AgentCreated(a Agent) {
	r.created[a.ID]++
	r.kinds[a.ID] = a.Kind
}

func (r *recorder) AgentRemoved(id ecs.Entity) { r.removed[id]++ }

func (r *recorder) Frame(f Frame) {
	r.frames++
	r.last = f
}

func (r *recorder) live() int {
	n := 0
	for id := range r.created {
		if r.removed[id] == 0 {
			n++
		}
	}
	return n
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testPaths(t *testing.T) []*path.Path {
	t.Helper()
	ns, err := path.Build("n-s", []mgl64.Vec3{{-3, 0, -40}, {-3, 0, 0}, {-3, 0, 40}})
	require.NoError(t, err)
	we, err := path.Build("w-n", []mgl64.Vec3{{-40, 0, 3}, {-8, 0, 3}, {3, 0, -8}, {3, 0, -40}})
	require.NoError(t, err)
	return []*path.Path{ns, we}
}

func testWaypoints() []mgl64.Vec3 {
	return []mgl64.Vec3{{-20, 0, -20}, {20, 0, -20}, {20, 0, 20}}
}

func newTestSim(t *testing.T, paths []*path.Path, waypoints []mgl64.Vec3, opts ...Option) (*Simulation, *recorder) {
	t.Helper()
	rec := newRecorder()
	base := []Option{
		WithSource(NewSource(42)),
		WithLogger(quietLogger()),
		WithPresenter(rec),
		WithClock(func() time.Time { return testReference }),
	}
	return New(paths, waypoints, append(base, opts...)...), rec
}

func pedestrians(s *Simulation) map[ecs.Entity]component.Pedestrian {
	out := make(map[ecs.Entity]component.Pedestrian)
	ecs.ForEach(s.World(), component.PedestrianComponent.Kind(), func(e ecs.Entity, p *component.Pedestrian) {
		out[e] = *p
	})
	return out
}

func cars(s *Simulation) map[ecs.Entity]component.Car {
	out := make(map[ecs.Entity]component.Car)
	ecs.ForEach(s.World(), component.CarComponent.Kind(), func(e ecs.Entity, c *component.Car) {
		out[e] = *c
	})
	return out
}
