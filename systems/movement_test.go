package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/hivelab/hive/components"
)

func testMovementParams() MovementParams {
	return MovementParams{
		HungerSeek: 100,
		ThirstSeek: 100,
		SeekSpeed:  8,
		GridStep:   8,
		WorldW:     600,
		WorldH:     600,
	}
}

func TestDecideTargetBelowThresholdWanders(t *testing.T) {
	p := testMovementParams()
	n := &components.Needs{Hunger: 99, Thirst: 99, Alive: true}
	m := &components.Memory{}
	RememberResource(m, Food, components.Coord{X: 8, Y: 8})
	RememberResource(m, Water, components.Coord{X: 16, Y: 16})

	if d := DecideTarget(n, m, p); d.Kind != TargetNone {
		t.Fatalf("decision %v below both thresholds, want none", d.Kind)
	}
}

func TestDecideTargetNeedsMemory(t *testing.T) {
	p := testMovementParams()
	n := &components.Needs{Hunger: 200, Alive: true}
	m := &components.Memory{}
	if d := DecideTarget(n, m, p); d.Kind != TargetNone {
		t.Fatalf("decision %v with no memory, want none", d.Kind)
	}
}

func TestDecideTargetHungerWinsTie(t *testing.T) {
	p := testMovementParams()
	n := &components.Needs{Hunger: 150, Thirst: 150, Alive: true}
	m := &components.Memory{}
	foodAt := components.Coord{X: 40, Y: 40}
	RememberResource(m, Food, foodAt)
	RememberResource(m, Water, components.Coord{X: 80, Y: 80})

	d := DecideTarget(n, m, p)
	if d.Kind != TargetFood || d.Pos != foodAt {
		t.Fatalf("decision %v at %v, want food at %v", d.Kind, d.Pos, foodAt)
	}
}

func TestDecideTargetGreaterNeedWins(t *testing.T) {
	p := testMovementParams()
	foodAt := components.Coord{X: 40, Y: 40}
	waterAt := components.Coord{X: 80, Y: 80}

	cases := []struct {
		name           string
		hunger, thirst int
		wantKind       TargetKind
		wantPos        components.Coord
	}{
		{"thirst greater", 120, 200, TargetWater, waterAt},
		{"hunger greater", 200, 120, TargetFood, foodAt},
		{"thirst barely greater", 150, 151, TargetWater, waterAt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := &components.Needs{Hunger: tc.hunger, Thirst: tc.thirst, Alive: true}
			m := &components.Memory{}
			RememberResource(m, Food, foodAt)
			RememberResource(m, Water, waterAt)

			d := DecideTarget(n, m, p)
			if d.Kind != tc.wantKind || d.Pos != tc.wantPos {
				t.Fatalf("decision %v at %v, want %v at %v", d.Kind, d.Pos, tc.wantKind, tc.wantPos)
			}
		})
	}
}

func TestDecideTargetFallsThroughToThirst(t *testing.T) {
	p := testMovementParams()
	n := &components.Needs{Hunger: 150, Thirst: 150, Alive: true}
	m := &components.Memory{}
	waterAt := components.Coord{X: 56, Y: 24}
	RememberResource(m, Water, waterAt)

	d := DecideTarget(n, m, p)
	if d.Kind != TargetWater || d.Pos != waterAt {
		t.Fatalf("decision %v at %v, want water at %v", d.Kind, d.Pos, waterAt)
	}
}

func TestStepTowardPerAxisSpeed(t *testing.T) {
	p := testMovementParams()
	pos := &components.Position{X: 0, Y: 0}
	StepToward(pos, components.Coord{X: 100, Y: 4}, p)
	if pos.X != 8 {
		t.Fatalf("x=%d after one step toward 100, want 8", pos.X)
	}
	// The y axis closes the remaining distance, then snaps to the grid.
	if pos.Y%p.GridStep != 0 {
		t.Fatalf("y=%d not grid aligned", pos.Y)
	}
}

func TestStepTowardArrives(t *testing.T) {
	p := testMovementParams()
	pos := &components.Position{X: 64, Y: 64}
	target := components.Coord{X: 24, Y: 88}
	for i := 0; i < 20; i++ {
		StepToward(pos, target, p)
	}
	if pos.Coord() != target {
		t.Fatalf("never arrived: at %v, want %v", pos.Coord(), target)
	}
}

func TestWanderStaysInBoundsAndAligned(t *testing.T) {
	p := testMovementParams()
	rng := rand.New(rand.NewPCG(7, 7))
	pos := &components.Position{X: 0, Y: p.WorldH - p.GridStep}
	for i := 0; i < 1000; i++ {
		Wander(pos, p, rng)
		if pos.X < 0 || pos.X > p.WorldW-p.GridStep || pos.Y < 0 || pos.Y > p.WorldH-p.GridStep {
			t.Fatalf("wandered out of bounds to %d,%d", pos.X, pos.Y)
		}
		if pos.X%p.GridStep != 0 || pos.Y%p.GridStep != 0 {
			t.Fatalf("off grid at %d,%d", pos.X, pos.Y)
		}
	}
}
