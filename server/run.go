package server

import (
	"context"
	"time"

	"github.com/milk9111/crosswalk/sim"
)

// Longest step taken after a stall, in seconds.
const maxStep = 0.1

// Run steps s at hz steps per second until ctx ends. Functions received on
// hooks run between steps on the stepping goroutine; this is how config
// reloads reach the simulation. hooks may be nil.
func Run(ctx context.Context, s *sim.Simulation, hz float64, hooks <-chan func(*sim.Simulation)) error {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
	defer ticker.Stop()

	s.Start()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn, ok := <-hooks:
			if !ok {
				hooks = nil
				continue
			}
			fn(s)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt <= 0 {
				dt = 1 / hz
			} else if dt > maxStep {
				dt = maxStep
			}
			s.Step(dt)
		}
	}
}
