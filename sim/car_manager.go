package sim

import (
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/ecs/component"
	"github.com/milk9111/crosswalk/path"
)

// CarManager keeps one independently randomized spawn timer per path.
// Spawning ignores the signal phase: there is no braking model, so cars
// keep coming and keep moving whatever the lights say.
type CarManager struct {
	settings CarSettings
	timers   []float64
}

func NewCarManager(settings CarSettings) *CarManager {
	return &CarManager{settings: settings}
}

// Seed puts one car at the start of every path and arms each path's timer
// with a short random delay.
func (m *CarManager) Seed(s *Simulation) {
	m.timers = make([]float64, len(s.paths))
	for i, p := range s.paths {
		m.spawn(s, p)
		m.timers[i] = uniform(s.rng, 0, m.settings.InitialDelayMax)
	}
}

// Spawn counts every path's timer down by dt and starts a new car on each
// path whose timer ran out.
func (m *CarManager) Spawn(s *Simulation, dt float64) {
	for i, p := range s.paths {
		m.timers[i] -= dt
		if m.timers[i] > 0 {
			continue
		}
		m.spawn(s, p)
		m.timers[i] = uniform(s.rng, m.settings.IntervalMin, m.settings.IntervalMax)
	}
}

func (m *CarManager) spawn(s *Simulation, p *path.Path) ecs.Entity {
	car := &component.Car{
		Path:  p,
		Speed: uniform(s.rng, m.settings.SpeedMin, m.settings.SpeedMax),
	}
	pose := carPose(car)

	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.CarComponent.Kind(), car)
	_ = ecs.Add(s.world, e, component.PoseComponent.Kind(), &pose)
	s.presenter.AgentCreated(carAgent(e, &pose))
	return e
}

// Sweep removes every finished car and tells the presenter. It returns how
// many were removed.
func (m *CarManager) Sweep(s *Simulation) int {
	finished := ecs.Collect(s.world, component.CarComponent.Kind(), func(c *component.Car) bool {
		return c.Finished
	})
	for _, e := range finished {
		ecs.DestroyEntity(s.world, e)
		s.presenter.AgentRemoved(e)
	}
	return len(finished)
}

// Count returns the number of active cars.
func (m *CarManager) Count(s *Simulation) int {
	return ecs.Len(s.world, component.CarComponent.Kind())
}

// AllStopped reports whether every active car is standing still. Cars move
// at a fixed speed from spawn to finish, so this only holds when there are
// no cars at all.
func (m *CarManager) AllStopped(s *Simulation) bool {
	stopped := true
	ecs.ForEach(s.world, component.CarComponent.Kind(), func(_ ecs.Entity, c *component.Car) {
		if !c.Finished && c.Speed > 0 {
			stopped = false
		}
	})
	return stopped
}

// Timers returns a copy of the per-path spawn timers, in path order.
func (m *CarManager) Timers() []float64 {
	return append([]float64(nil), m.timers...)
}
