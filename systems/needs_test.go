package systems

import (
	"testing"

	"github.com/hivelab/hive/components"
)

func testNeedsParams() NeedsParams {
	return NeedsParams{
		Max:        255,
		HungerRate: 1.0,
		ThirstRate: 1.0,
		FoodFill:   120,
		WaterFill:  120,
	}
}

func TestAccumulateNeedsWholeUnits(t *testing.T) {
	p := testNeedsParams()
	n := &components.Needs{Alive: true}
	dt := 1.0 / 60.0

	// One simulated second at 60 Hz raises each need by exactly one unit.
	for i := 0; i < 60; i++ {
		if died := AccumulateNeeds(n, p, dt); died {
			t.Fatalf("died after %d ticks", i+1)
		}
	}
	if n.Hunger != 1 || n.Thirst != 1 {
		t.Fatalf("after 60 ticks hunger=%d thirst=%d, want 1 1", n.Hunger, n.Thirst)
	}
}

func TestAccumulateNeedsDeathAtMax(t *testing.T) {
	p := testNeedsParams()
	n := &components.Needs{Hunger: p.Max - 1, Alive: true}

	died := false
	for i := 0; i < 120 && !died; i++ {
		died = AccumulateNeeds(n, p, 1.0/60.0)
	}
	if !died {
		t.Fatal("agent never died at max hunger")
	}
	if n.Alive {
		t.Fatal("Alive still set after death")
	}
	if n.Hunger != p.Max {
		t.Fatalf("hunger %d at death, want clamped to %d", n.Hunger, p.Max)
	}
}

func TestAccumulateNeedsThirstAloneKills(t *testing.T) {
	p := testNeedsParams()
	n := &components.Needs{Thirst: p.Max, Hunger: 10, Alive: true}
	n.Thirst = p.Max - 1
	died := false
	for i := 0; i < 120 && !died; i++ {
		died = AccumulateNeeds(n, p, 1.0/60.0)
	}
	if !died {
		t.Fatal("agent survived maxed thirst")
	}
}

func TestEatDrinkFloorAtZero(t *testing.T) {
	p := testNeedsParams()
	n := &components.Needs{Hunger: 50, Thirst: 200, Alive: true}

	Eat(n, p)
	if n.Hunger != 0 {
		t.Fatalf("hunger %d after eating from 50, want 0", n.Hunger)
	}
	Drink(n, p)
	if n.Thirst != 80 {
		t.Fatalf("thirst %d after drinking from 200, want 80", n.Thirst)
	}
}

func TestWantsKind(t *testing.T) {
	n := &components.Needs{Hunger: 0, Thirst: 3, Alive: true}
	if WantsKind(n, Food) {
		t.Error("zero hunger should not want food")
	}
	if !WantsKind(n, Water) {
		t.Error("nonzero thirst should want water")
	}
	if WantsKind(n, Empty) {
		t.Error("empty tile is never wanted")
	}
}

func TestAccumulateNeedsPanicsOutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-bounds needs")
		}
	}()
	n := &components.Needs{Hunger: -1, Alive: true}
	AccumulateNeeds(n, testNeedsParams(), 1.0/60.0)
}
