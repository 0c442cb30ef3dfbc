// Package sim is the frame-driven engine of the intersection: it spawns and
// retires cars and pedestrians, moves them along their paths, and drives the
// signal phase. A Simulation is the whole mutable state of one run; nothing
// in this package is global, so independent simulations can run side by
// side.
package sim

import (
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/ecs/component"
	"github.com/milk9111/crosswalk/path"
	"github.com/milk9111/crosswalk/phase"
	"github.com/sirupsen/logrus"
)

// Simulation is not safe for concurrent use. Step, Start and Resync must be
// called from one goroutine.
type Simulation struct {
	world     *ecs.World
	rng       Source
	log       logrus.FieldLogger
	presenter Presenter
	now       func() time.Time

	paths     []*path.Path
	waypoints []mgl64.Vec3

	phase *phase.Controller
	cars  *CarManager
	peds  *PedestrianManager

	syncRef *time.Time
	started bool
	elapsed float64
	dt      float64
	frame   Frame

	stages *ecs.Scheduler[*Simulation]
}

type Option func(*Simulation)

func WithSource(src Source) Option {
	return func(s *Simulation) { s.rng = src }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Simulation) { s.log = log }
}

func WithPresenter(p Presenter) Option {
	return func(s *Simulation) { s.presenter = p }
}

// WithClock replaces time.Now for wall-clock synchronization.
func WithClock(now func() time.Time) Option {
	return func(s *Simulation) { s.now = now }
}

func WithDurations(d phase.Durations) Option {
	return func(s *Simulation) { s.phase = phase.NewController(d) }
}

func WithCarSettings(cs CarSettings) Option {
	return func(s *Simulation) { s.cars = NewCarManager(cs) }
}

func WithPedestrianSettings(ps PedestrianSettings) Option {
	return func(s *Simulation) { s.peds = NewPedestrianManager(ps) }
}

// WithSyncReference enables wall-clock synchronization: reference is an
// instant at which a Cars phase began.
func WithSyncReference(reference time.Time) Option {
	return func(s *Simulation) { s.syncRef = &reference }
}

// New builds a simulation over already-built paths and waypoint positions.
// Nothing moves until the first Step.
func New(paths []*path.Path, waypoints []mgl64.Vec3, opts ...Option) *Simulation {
	s := &Simulation{
		world:     ecs.NewWorld(),
		paths:     append([]*path.Path(nil), paths...),
		waypoints: append([]mgl64.Vec3(nil), waypoints...),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewSource(uint64(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("component", "sim")
	if s.presenter == nil {
		s.presenter = NopPresenter{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.phase == nil {
		s.phase = phase.NewController(phase.DefaultDurations())
	}
	if s.cars == nil {
		s.cars = NewCarManager(DefaultCarSettings())
	}
	if s.peds == nil {
		s.peds = NewPedestrianManager(DefaultPedestrianSettings())
	}

	s.stages = ecs.NewScheduler[*Simulation](
		ecs.SystemFunc[*Simulation](tickClock),
		ecs.SystemFunc[*Simulation](runSpawners),
		ecs.SystemFunc[*Simulation](runKinematics),
		ecs.SystemFunc[*Simulation](runSweeps),
		ecs.SystemFunc[*Simulation](evaluatePhase),
		ecs.SystemFunc[*Simulation](handOff),
	)
	return s
}

// Start seeds the first car on every path and, if a sync reference is set,
// jumps the phase to where the wall clock says it should be. Step calls it
// on first use; calling it again does nothing.
func (s *Simulation) Start() {
	if s.started {
		return
	}
	s.started = true
	s.cars.Seed(s)
	s.log.WithFields(logrus.Fields{
		"paths":     len(s.paths),
		"waypoints": len(s.waypoints),
	}).Info("simulation started")

	if s.syncRef != nil {
		s.applySync(*s.syncRef)
	}
}

// Step advances the simulation by dt seconds: clock, spawners, kinematics,
// removal sweeps, phase evaluation and finally the hand-off to the
// presenter, in that order.
func (s *Simulation) Step(dt float64) Frame {
	s.Start()
	s.dt = dt
	s.stages.Update(s)
	return s.frame
}

// Resync clears every pedestrian and re-derives the phase from reference.
func (s *Simulation) Resync(reference time.Time) {
	s.Start()
	s.syncRef = &reference
	if n := s.peds.Clear(s); n > 0 {
		s.log.WithField("count", n).Debug("pedestrians cleared for resync")
	}
	s.applySync(reference)
}

func (s *Simulation) applySync(reference time.Time) {
	effects := s.phase.Sync(reference, s.now())
	st := s.phase.State()
	s.log.WithFields(logrus.Fields{
		"reference": reference.UnixMilli(),
		"phase":     st.Phase.String(),
		"timer":     st.Timer,
	}).Info("phase synchronized to wall clock")
	s.applyEffects(effects)
}

func (s *Simulation) applyEffects(effects []phase.Effect) {
	for _, eff := range effects {
		switch eff {
		case phase.SpawnPedestrians:
			n := s.peds.SpawnWaiting(s)
			s.log.WithField("count", n).Debug("pedestrians spawned")
		case phase.ClearPedestrians:
			n := s.peds.Clear(s)
			s.log.WithField("count", n).Debug("pedestrians cleared")
		case phase.ReleasePedestrians:
			s.peds.ReleaseAll(s, s.phase.State().Timer)
		}
	}
}

func tickClock(s *Simulation) {
	s.elapsed += s.dt
}

func runSpawners(s *Simulation) {
	s.cars.Spawn(s, s.dt)
	s.peds.Release(s)
}

func runKinematics(s *Simulation) {
	UpdateCars(s, s.dt)
	UpdatePedestrians(s, s.dt)
}

func runSweeps(s *Simulation) {
	s.cars.Sweep(s)
	s.peds.Sweep(s)
}

func evaluatePhase(s *Simulation) {
	walking, _ := s.peds.Counts(s)
	from := s.phase.Phase()
	effects := s.phase.Advance(s.dt, phase.Conditions{
		CarsStopped:        s.cars.AllStopped(s),
		PedestriansWalking: walking,
	})
	if to := s.phase.Phase(); to != from {
		s.log.WithFields(logrus.Fields{
			"from":    from.String(),
			"to":      to.String(),
			"elapsed": s.elapsed,
		}).Info("phase changed")
	}
	s.applyEffects(effects)
}

func handOff(s *Simulation) {
	agents := make([]Agent, 0, s.cars.Count(s)+s.peds.Count(s))
	ecs.ForEach2(s.world, component.CarComponent.Kind(), component.PoseComponent.Kind(),
		func(e ecs.Entity, car *component.Car, pose *component.Pose) {
			if !car.Finished {
				agents = append(agents, carAgent(e, pose))
			}
		})
	ecs.ForEach2(s.world, component.PedestrianComponent.Kind(), component.PoseComponent.Kind(),
		func(e ecs.Entity, ped *component.Pedestrian, pose *component.Pose) {
			if !ped.Completed {
				agents = append(agents, pedestrianAgent(e, ped, pose))
			}
		})
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })

	st := s.phase.State()
	status := Status{
		Phase:       st.Phase,
		Countdown:   s.phase.Countdown(),
		Description: st.Phase.Description(),
	}
	if st.Phase == phase.Pedestrians {
		status.Walking, status.Waiting = s.peds.Counts(s)
	}

	s.frame = Frame{
		Elapsed: s.elapsed,
		Phase:   st,
		Status:  status,
		Agents:  agents,
	}
	s.presenter.Frame(s.frame)
}

func carAgent(e ecs.Entity, pose *component.Pose) Agent {
	return Agent{
		ID:          e,
		Kind:        KindCar,
		Position:    pose.Position,
		Orientation: pose.Rotation,
		Yaw:         pose.Yaw,
		State:       Driving,
	}
}

func pedestrianAgent(e ecs.Entity, ped *component.Pedestrian, pose *component.Pose) Agent {
	state := Walking
	if ped.Waiting {
		state = Waiting
	}
	return Agent{
		ID:          e,
		Kind:        KindPedestrian,
		Position:    pose.Position,
		Orientation: pose.Rotation,
		Yaw:         pose.Yaw,
		State:       state,
	}
}

// World exposes agent storage, mainly for tests and debug overlays.
func (s *Simulation) World() *ecs.World { return s.world }

func (s *Simulation) Phase() phase.State { return s.phase.State() }

func (s *Simulation) Durations() phase.Durations { return s.phase.Durations() }

func (s *Simulation) Elapsed() float64 { return s.elapsed }

func (s *Simulation) Paths() []*path.Path { return append([]*path.Path(nil), s.paths...) }

func (s *Simulation) Waypoints() []mgl64.Vec3 { return append([]mgl64.Vec3(nil), s.waypoints...) }

func (s *Simulation) Cars() *CarManager { return s.cars }

func (s *Simulation) Pedestrians() *PedestrianManager { return s.peds }

// LastFrame is the frame produced by the most recent Step.
func (s *Simulation) LastFrame() Frame { return s.frame }
