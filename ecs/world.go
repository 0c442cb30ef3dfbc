package ecs

import "github.com/milk9111/crosswalk/ecs/component"

// World owns entities and their component tables. It is not safe for
// concurrent use; the simulation touches it from a single frame loop.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store)}
}

// CreateEntity allocates a new live entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes e and all of its components. It reports false if e
// was already dead.
func DestroyEntity(w *World, e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether e refers to a live entity.
func IsAlive(w *World, e Entity) bool {
	return w.entities.isAlive(e)
}

// Count returns the number of live entities.
func Count(w *World) int {
	return w.entities.alive
}

// Entities returns every live entity in id order.
func Entities(w *World) []Entity {
	out := make([]Entity, 0, w.entities.alive)
	for i, gen := range w.entities.gen {
		e := makeEntity(entityID(i+1), gen)
		if w.entities.isAlive(e) {
			out = append(out, e)
		}
	}
	return out
}
