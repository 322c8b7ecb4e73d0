package systems

import (
	"math/rand/v2"

	"github.com/hivelab/hive/components"
)

// TargetKind classifies what an agent is currently moving toward.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetFood
	TargetWater
)

func (k TargetKind) String() string {
	switch k {
	case TargetFood:
		return "food"
	case TargetWater:
		return "water"
	default:
		return "none"
	}
}

// Resource maps the target back to the tile kind it seeks.
func (k TargetKind) Resource() ResourceKind {
	switch k {
	case TargetFood:
		return Food
	case TargetWater:
		return Water
	default:
		return Empty
	}
}

// Decision is the outcome of one movement choice: either seek a remembered
// location or wander.
type Decision struct {
	Kind TargetKind
	Pos  components.Coord // meaningful only when Kind != TargetNone
}

// MovementParams holds the seek thresholds and step sizes.
type MovementParams struct {
	HungerSeek int
	ThirstSeek int
	SeekSpeed  int
	GridStep   int
	WorldW     int
	WorldH     int
}

// DecideTarget picks what the agent heads for this tick. A need only drives
// seeking once it crosses its seek threshold and the agent remembers a
// matching location. When both needs qualify, the greater need wins; hunger
// wins an exact tie.
func DecideTarget(n *components.Needs, m *components.Memory, p MovementParams) Decision {
	var foodPos, waterPos components.Coord
	seekFood, seekWater := false, false
	if n.Hunger >= p.HungerSeek {
		foodPos, seekFood = RecallTarget(m, Food)
	}
	if n.Thirst >= p.ThirstSeek {
		waterPos, seekWater = RecallTarget(m, Water)
	}

	switch {
	case seekFood && seekWater:
		if n.Thirst > n.Hunger {
			return Decision{Kind: TargetWater, Pos: waterPos}
		}
		return Decision{Kind: TargetFood, Pos: foodPos}
	case seekFood:
		return Decision{Kind: TargetFood, Pos: foodPos}
	case seekWater:
		return Decision{Kind: TargetWater, Pos: waterPos}
	}
	return Decision{Kind: TargetNone}
}

// StepToward moves pos one tick toward target, at most SeekSpeed per axis.
func StepToward(pos *components.Position, target components.Coord, p MovementParams) {
	pos.X += stepAxis(pos.X, target.X, p.SeekSpeed)
	pos.Y += stepAxis(pos.Y, target.Y, p.SeekSpeed)
	clampSnap(pos, p)
}

func stepAxis(cur, want, speed int) int {
	d := want - cur
	if d > speed {
		return speed
	}
	if d < -speed {
		return -speed
	}
	return d
}

// Wander nudges pos by one grid step in a random direction on each axis,
// independently; an axis may also stay put.
func Wander(pos *components.Position, p MovementParams, rng *rand.Rand) {
	pos.X += (rng.IntN(3) - 1) * p.GridStep
	pos.Y += (rng.IntN(3) - 1) * p.GridStep
	clampSnap(pos, p)
}

// clampSnap keeps pos inside [0, world-step] on both axes and aligned to the
// grid, so every agent position is always a valid tile coordinate.
func clampSnap(pos *components.Position, p MovementParams) {
	pos.X = clampAxis(pos.X, p.WorldW-p.GridStep)
	pos.Y = clampAxis(pos.Y, p.WorldH-p.GridStep)
	pos.X -= pos.X % p.GridStep
	pos.Y -= pos.Y % p.GridStep
}

func clampAxis(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
