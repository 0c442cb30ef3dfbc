package server

import (
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/sim"
	"github.com/samber/lo"
)

const (
	msgFrame   = "frame"
	msgCreated = "created"
	msgRemoved = "removed"
)

type agentMessage struct {
	ID          uint64          `json:"id"`
	Kind        sim.Kind        `json:"kind"`
	Position    [3]float64      `json:"position"`
	// Orientation is w, x, y, z.
	Orientation [4]float64      `json:"orientation"`
	Yaw         float64         `json:"yaw"`
	State       sim.VisualState `json:"state"`
}

type statusMessage struct {
	Phase       string  `json:"phase"`
	Timer       float64 `json:"timer"`
	Countdown   string  `json:"countdown"`
	Description string  `json:"description"`
	Walking     int     `json:"walking"`
	Waiting     int     `json:"waiting"`
}

type frameMessage struct {
	Type    string         `json:"type"`
	Elapsed float64        `json:"elapsed"`
	Status  statusMessage  `json:"status"`
	Agents  []agentMessage `json:"agents"`
}

type lifecycleMessage struct {
	Type  string        `json:"type"`
	ID    uint64        `json:"id"`
	Agent *agentMessage `json:"agent,omitempty"`
}

func toAgentMessage(a sim.Agent) agentMessage {
	q := a.Orientation
	return agentMessage{
		ID:          uint64(a.ID),
		Kind:        a.Kind,
		Position:    [3]float64{a.Position.X(), a.Position.Y(), a.Position.Z()},
		Orientation: [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()},
		Yaw:         a.Yaw,
		State:       a.State,
	}
}

func toStatusMessage(f sim.Frame) statusMessage {
	return statusMessage{
		Phase:       f.Phase.Phase.String(),
		Timer:       f.Phase.Timer,
		Countdown:   f.Status.Countdown,
		Description: f.Status.Description,
		Walking:     f.Status.Walking,
		Waiting:     f.Status.Waiting,
	}
}

func toFrameMessage(f sim.Frame) frameMessage {
	return frameMessage{
		Type:    msgFrame,
		Elapsed: f.Elapsed,
		Status:  toStatusMessage(f),
		Agents: lo.Map(f.Agents, func(a sim.Agent, _ int) agentMessage {
			return toAgentMessage(a)
		}),
	}
}

func createdMessage(a sim.Agent) lifecycleMessage {
	m := toAgentMessage(a)
	return lifecycleMessage{Type: msgCreated, ID: m.ID, Agent: &m}
}

func removedMessage(id ecs.Entity) lifecycleMessage {
	return lifecycleMessage{Type: msgRemoved, ID: uint64(id)}
}
