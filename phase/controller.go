package phase

import (
	"time"

	"github.com/milk9111/crosswalk/common"
)

// Controller owns the phase state of one simulation.
type Controller struct {
	state     State
	durations Durations
}

// NewController starts in Cars with a zero timer.
func NewController(d Durations) *Controller {
	return &Controller{durations: d}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Phase() Phase {
	return c.state.Phase
}

func (c *Controller) Durations() Durations {
	return c.durations
}

// PedestriansMayWalk is true exactly during Pedestrians.
func (c *Controller) PedestriansMayWalk() bool {
	return c.state.Phase == Pedestrians
}

// Countdown is the status string for the current state.
func (c *Controller) Countdown() string {
	return Countdown(c.state, c.durations)
}

// Advance adds dt to the phase timer and takes at most one transition.
// Every transition resets the timer to zero.
func (c *Controller) Advance(dt float64, cond Conditions) []Effect {
	c.state.Timer += dt
	d := c.durations

	switch c.state.Phase {
	case Cars:
		if c.state.Timer >= d.Cars {
			c.enter(TransitionToPedestrians)
			return []Effect{SpawnPedestrians}
		}
	case TransitionToPedestrians:
		if c.state.Timer >= d.StopTimeout || cond.CarsStopped {
			c.enter(Pedestrians)
		}
	case Pedestrians:
		if c.state.Timer >= d.Pedestrians {
			c.enter(TransitionToCars)
		}
	case TransitionToCars:
		if c.state.Timer >= d.ClearTimeout || cond.PedestriansWalking == 0 {
			c.enter(Cars)
			return []Effect{ClearPedestrians}
		}
	}
	return nil
}

func (c *Controller) enter(p Phase) {
	c.state = State{Phase: p}
}

// Sync replaces the state with the one derived from the wall clock. When
// that lands inside the crossing phase the pedestrians must be spawned and
// sent walking straight away.
func (c *Controller) Sync(reference, now time.Time) []Effect {
	c.state = Synced(reference, now, c.durations)
	if c.state.Phase == Pedestrians {
		return []Effect{SpawnPedestrians, ReleasePedestrians}
	}
	return nil
}

// Synced derives the phase from where now falls in the repeating cycle that
// started in Cars at reference. reference may be in the future.
func Synced(reference, now time.Time, d Durations) State {
	elapsed := float64(now.UnixMilli()-reference.UnixMilli()) / 1000
	pos := common.WrapMod(elapsed, d.Cycle())
	if pos < d.Cars {
		return State{Phase: Cars, Timer: pos}
	}
	return State{Phase: Pedestrians, Timer: pos - d.Cars}
}
