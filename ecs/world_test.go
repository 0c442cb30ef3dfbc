package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/crosswalk/ecs/component"
)

func intPtr(i int) *int {
	return &i
}

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex < 0 {
				return
			}
			if !DestroyEntity(w, ents[c.destroyIndex]) {
				t.Fatalf("DestroyEntity should return true for alive entity")
			}
			if IsAlive(w, ents[c.destroyIndex]) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if DestroyEntity(w, ents[c.destroyIndex]) {
				t.Fatalf("second DestroyEntity should return false")
			}
			if Count(w) != c.create-1 {
				t.Fatalf("expected %d alive, got %d", c.create-1, Count(w))
			}
		})
	}
}

func TestRecycledIDGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	old := CreateEntity(w)
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected id %d to be reused, got %d", old.id(), fresh.id())
	}
	if fresh == old {
		t.Fatalf("recycled entity must differ from the destroyed one")
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle reported alive")
	}
	if (Entity(0)).Valid() || IsAlive(w, Entity(0)) {
		t.Fatalf("zero entity must never be valid")
	}
}

func TestAddGetRemove(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponent[int]().Kind()
	e := CreateEntity(w)

	if err := Add(w, e, kind, intPtr(10)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if v, ok := Get(w, e, kind); !ok || *v != 10 {
		t.Fatalf("expected 10, got %v ok=%v", v, ok)
	}
	if err := Add(w, e, kind, intPtr(11)); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if v, _ := Get(w, e, kind); *v != 11 || Len(w, kind) != 1 {
		t.Fatalf("expected replaced value 11 in a single slot")
	}
	if !Remove(w, e, kind) || Has(w, e, kind) {
		t.Fatalf("remove failed")
	}
	if Remove(w, e, kind) {
		t.Fatalf("second remove should report false")
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()
	e := CreateEntity(w)
	dead := CreateEntity(w)
	DestroyEntity(w, dead)

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"nil_value", Add(w, e, kind, nil), component.ErrNilComponent},
		{"dead_entity", Add(w, dead, kind, intPtr(1)), component.ErrEntityNotAlive},
		{"zero_kind", Add(w, e, component.ComponentKind[int]{}, intPtr(1)), component.ErrInvalidComponentKind},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !errors.Is(c.err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, c.err)
			}
		})
	}
}

func TestDestroyRemovesComponents(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[string]()
	e := CreateEntity(w)
	_ = Add(w, e, ka, intPtr(1))
	s := "x"
	_ = Add(w, e, kb, &s)

	DestroyEntity(w, e)
	if Len(w, ka) != 0 || Len(w, kb) != 0 {
		t.Fatalf("components survived destruction")
	}
}

func TestForEachToleratesDestroy(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()
	var ents []Entity
	for i := range 5 {
		e := CreateEntity(w)
		_ = Add(w, e, kind, intPtr(i))
		ents = append(ents, e)
	}

	visited := 0
	ForEach(w, kind, func(e Entity, v *int) {
		visited++
		if *v == 0 {
			// Destroy a later one; it must not be visited.
			DestroyEntity(w, ents[4])
		}
	})
	if visited != 4 {
		t.Fatalf("expected 4 visits, got %d", visited)
	}
}

func TestForEach2Intersection(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[int]()
	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	_ = Add(w, e1, ka, intPtr(1))
	_ = Add(w, e2, ka, intPtr(2))
	_ = Add(w, e2, kb, intPtr(3))
	_ = Add(w, e3, kb, intPtr(4))

	var res []Entity
	ForEach2(w, ka, kb, func(e Entity, a, b *int) {
		if *a != 2 || *b != 3 {
			t.Fatalf("unexpected values %d %d", *a, *b)
		}
		res = append(res, e)
	})
	if len(res) != 1 || res[0] != e2 {
		t.Fatalf("expected only e2, got %v", res)
	}
}

func TestCollect(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()
	for i := range 4 {
		_ = Add(w, CreateEntity(w), kind, intPtr(i))
	}

	all := Collect(w, kind, nil)
	if len(all) != 4 {
		t.Fatalf("expected 4, got %d", len(all))
	}
	even := Collect(w, kind, func(v *int) bool { return *v%2 == 0 })
	if len(even) != 2 {
		t.Fatalf("expected 2 even, got %d", len(even))
	}
	for _, e := range even {
		DestroyEntity(w, e)
	}
	if Len(w, kind) != 2 {
		t.Fatalf("expected 2 left, got %d", Len(w, kind))
	}
	if got := Collect(w, component.NewComponentKind[string](), nil); got != nil {
		t.Fatalf("unknown kind should collect nothing, got %v", got)
	}
}

func TestSchedulerRunsInOrder(t *testing.T) {
	var order []string
	s := NewScheduler[*[]string](
		SystemFunc[*[]string](func(o *[]string) { *o = append(*o, "a") }),
		SystemFunc[*[]string](func(o *[]string) { *o = append(*o, "b") }),
	)
	s.Add(SystemFunc[*[]string](func(o *[]string) { *o = append(*o, "c") }))

	s.Update(&order)
	s.Update(&order)
	if s.Len() != 3 {
		t.Fatalf("expected 3 systems, got %d", s.Len())
	}
	want := []string{"a", "b", "c", "a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}
