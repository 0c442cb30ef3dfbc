// Package phase is the signal state machine of the intersection. It is pure:
// Advance and Sync return the side effects a transition requires and leave
// carrying them out to the caller.
package phase

import (
	"fmt"
	"math"
)

// Phase is the current movement permission.
type Phase int

const (
	Cars Phase = iota
	TransitionToPedestrians
	Pedestrians
	TransitionToCars
)

func (p Phase) String() string {
	switch p {
	case Cars:
		return "CARS"
	case TransitionToPedestrians:
		return "TRANSITION_TO_PEDESTRIANS"
	case Pedestrians:
		return "PEDESTRIANS"
	case TransitionToCars:
		return "TRANSITION_TO_CARS"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Description is the human readable line shown next to the countdown.
func (p Phase) Description() string {
	switch p {
	case Cars:
		return "Vehicles proceed"
	case TransitionToPedestrians:
		return "Vehicles stopping"
	case Pedestrians:
		return "Pedestrians crossing"
	case TransitionToCars:
		return "Clearing crosswalks"
	default:
		return ""
	}
}

// Durations are in seconds. StopTimeout and ClearTimeout bound the two
// transition phases; they are not part of the cycle length.
type Durations struct {
	Cars         float64
	Pedestrians  float64
	StopTimeout  float64
	ClearTimeout float64
}

func DefaultDurations() Durations {
	return Durations{
		Cars:         125,
		Pedestrians:  45,
		StopTimeout:  3,
		ClearTimeout: 5,
	}
}

// Cycle is the nominal length of one full signal cycle.
func (d Durations) Cycle() float64 {
	return d.Cars + d.Pedestrians
}

// Effect is a side effect requested by a transition.
type Effect int

const (
	// SpawnPedestrians asks for the waiting batch at every waypoint.
	SpawnPedestrians Effect = iota + 1
	// ClearPedestrians asks for every pedestrian to be removed.
	ClearPedestrians
	// ReleasePedestrians asks for every waiting pedestrian to start walking
	// immediately, as if the crossing phase had been running all along.
	ReleasePedestrians
)

func (e Effect) String() string {
	switch e {
	case SpawnPedestrians:
		return "spawn_pedestrians"
	case ClearPedestrians:
		return "clear_pedestrians"
	case ReleasePedestrians:
		return "release_pedestrians"
	default:
		return fmt.Sprintf("Effect(%d)", int(e))
	}
}

// State is a phase plus the seconds spent in it.
type State struct {
	Phase Phase
	Timer float64
}

// Conditions are the agent observations the early exits depend on.
type Conditions struct {
	// CarsStopped is true when every active car reports itself stopped.
	CarsStopped bool
	// PedestriansWalking counts released pedestrians that have not finished.
	PedestriansWalking int
}

// Countdown formats the remaining time of a timed phase as M:SS, rounding
// up so the display never reads 0:00 while the phase is still running.
// Transition phases show a fixed word instead.
func Countdown(s State, d Durations) string {
	var remaining float64
	switch s.Phase {
	case Cars:
		remaining = d.Cars - s.Timer
	case Pedestrians:
		remaining = d.Pedestrians - s.Timer
	case TransitionToPedestrians:
		return "STOPPING"
	case TransitionToCars:
		return "CLEARING"
	}
	secs := int(math.Ceil(math.Max(0, remaining)))
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
