package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/phase"
)

type Kind int

const (
	KindCar Kind = iota + 1
	KindPedestrian
)

func (k Kind) String() string {
	switch k {
	case KindCar:
		return "car"
	case KindPedestrian:
		return "pedestrian"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type VisualState int

const (
	Driving VisualState = iota + 1
	Waiting
	Walking
)

func (v VisualState) String() string {
	switch v {
	case Driving:
		return "driving"
	case Waiting:
		return "waiting"
	case Walking:
		return "walking"
	default:
		return fmt.Sprintf("VisualState(%d)", int(v))
	}
}

func (v VisualState) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Agent is the per-agent render state handed to a Presenter.
type Agent struct {
	ID          ecs.Entity
	Kind        Kind
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Yaw         float64
	State       VisualState
}

// Heading is the unit direction of travel on the ground plane. Car yaw
// includes the model correction, which is taken back out here.
func (a Agent) Heading() mgl64.Vec3 {
	yaw := a.Yaw
	if a.Kind == KindCar {
		yaw -= carYawCorrection
	}
	return mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
}

// Status carries the strings a HUD shows. Walking and Waiting are only
// reported during the crossing phase.
type Status struct {
	Phase       phase.Phase
	Countdown   string
	Description string
	Walking     int
	Waiting     int
}

// Frame is everything a renderer needs after one Step.
type Frame struct {
	Elapsed float64
	Phase   phase.State
	Status  Status
	Agents  []Agent
}

// Presenter is the rendering side of the simulation. AgentCreated is called
// exactly once per agent when it spawns and AgentRemoved exactly once when it
// goes away; Frame is called at the end of every Step. All calls happen on
// the goroutine driving Step.
type Presenter interface {
	AgentCreated(a Agent)
	AgentRemoved(id ecs.Entity)
	Frame(f Frame)
}

// NopPresenter ignores everything.
type NopPresenter struct{}

func (NopPresenter) AgentCreated(Agent)      {}
func (NopPresenter) AgentRemoved(ecs.Entity) {}
func (NopPresenter) Frame(Frame)             {}
