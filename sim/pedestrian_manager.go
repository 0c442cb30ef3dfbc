package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/ecs/component"
	"github.com/samber/lo"
)

// PedestrianManager spawns the waiting batch when the car phase ends,
// releases it when crossing is allowed, and retires pedestrians that finish
// or are cleared.
type PedestrianManager struct {
	settings PedestrianSettings
}

func NewPedestrianManager(settings PedestrianSettings) *PedestrianManager {
	return &PedestrianManager{settings: settings}
}

// SpawnWaiting creates a random-sized group of waiting pedestrians around
// every waypoint, each heading to some other waypoint. It needs at least two
// waypoints and returns how many were spawned.
func (m *PedestrianManager) SpawnWaiting(s *Simulation) int {
	if len(s.waypoints) < 2 {
		return 0
	}
	spawned := 0
	for origin := range s.waypoints {
		count := intRange(s.rng, m.settings.PerWaypointMin, m.settings.PerWaypointMax)
		for range count {
			m.spawn(s, origin)
			spawned++
		}
	}
	return spawned
}

func (m *PedestrianManager) spawn(s *Simulation, origin int) ecs.Entity {
	n := len(s.waypoints)
	dest := s.rng.IntN(n)
	for dest == origin {
		dest = s.rng.IntN(n)
	}

	angle := uniform(s.rng, 0, 2*math.Pi)
	radius := uniform(s.rng, m.settings.RingInner, m.settings.RingOuter)
	start := s.waypoints[origin].Add(mgl64.Vec3{math.Cos(angle) * radius, 0, math.Sin(angle) * radius})

	j := m.settings.DestJitter
	end := s.waypoints[dest].Add(mgl64.Vec3{uniform(s.rng, -j, j), 0, uniform(s.rng, -j, j)})

	ped := &component.Pedestrian{
		Start:       start,
		End:         end,
		Origin:      origin,
		Destination: dest,
		Speed:       uniform(s.rng, m.settings.SpeedMin, m.settings.SpeedMax),
		Waiting:     true,
		IdleOffset:  uniform(s.rng, 0, 2*math.Pi),
	}
	pose := idlePose(ped, s.elapsed)

	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.PedestrianComponent.Kind(), ped)
	_ = ecs.Add(s.world, e, component.PoseComponent.Kind(), &pose)
	s.presenter.AgentCreated(pedestrianAgent(e, ped, &pose))
	return e
}

// Release sends every waiting pedestrian walking once crossing is allowed.
// Each gets a small negative progress so departures are staggered.
func (m *PedestrianManager) Release(s *Simulation) {
	if !s.phase.PedestriansMayWalk() {
		return
	}
	m.forEachWaiting(s, func(ped *component.Pedestrian) {
		ped.Waiting = false
		ped.Progress = uniform(s.rng, -m.settings.Stagger, 0)
	})
}

// ReleaseAll sends every waiting pedestrian walking as if it had left when
// the crossing phase began, timer seconds ago.
func (m *PedestrianManager) ReleaseAll(s *Simulation, timer float64) {
	m.forEachWaiting(s, func(ped *component.Pedestrian) {
		ped.Waiting = false
		ped.Progress = uniform(s.rng, -m.settings.Stagger, 0) + ped.Speed*timer
	})
}

func (m *PedestrianManager) forEachWaiting(s *Simulation, fn func(*component.Pedestrian)) {
	ecs.ForEach(s.world, component.PedestrianComponent.Kind(), func(_ ecs.Entity, ped *component.Pedestrian) {
		if ped.Waiting {
			fn(ped)
		}
	})
}

// Clear removes every pedestrian whatever its state and returns how many
// were removed. Completed ones already had their visual released.
func (m *PedestrianManager) Clear(s *Simulation) int {
	all := ecs.Collect(s.world, component.PedestrianComponent.Kind(), nil)
	for _, e := range all {
		ped, _ := ecs.Get(s.world, e, component.PedestrianComponent.Kind())
		completed := ped.Completed
		ecs.DestroyEntity(s.world, e)
		if !completed {
			s.presenter.AgentRemoved(e)
		}
	}
	return len(all)
}

// Sweep drops completed pedestrians from the active set.
func (m *PedestrianManager) Sweep(s *Simulation) int {
	done := ecs.Collect(s.world, component.PedestrianComponent.Kind(), func(p *component.Pedestrian) bool {
		return p.Completed
	})
	for _, e := range done {
		ecs.DestroyEntity(s.world, e)
	}
	return len(done)
}

// Count returns the number of pedestrians in the active set.
func (m *PedestrianManager) Count(s *Simulation) int {
	return ecs.Len(s.world, component.PedestrianComponent.Kind())
}

// Counts returns how many pedestrians are walking and how many are waiting.
func (m *PedestrianManager) Counts(s *Simulation) (walking, waiting int) {
	var peds []*component.Pedestrian
	ecs.ForEach(s.world, component.PedestrianComponent.Kind(), func(_ ecs.Entity, p *component.Pedestrian) {
		peds = append(peds, p)
	})
	walking = lo.CountBy(peds, func(p *component.Pedestrian) bool { return !p.Waiting && !p.Completed })
	waiting = lo.CountBy(peds, func(p *component.Pedestrian) bool { return p.Waiting })
	return walking, waiting
}
