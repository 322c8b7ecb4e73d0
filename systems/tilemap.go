// Package systems provides the world surface, spatial index, and per-tick
// agent update rules for the simulation.
package systems

import (
	"math/rand/v2"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/hivelab/hive/components"
)

// ResourceKind is the content of a world tile.
type ResourceKind uint8

const (
	Empty ResourceKind = iota
	Food
	Water
)

func (k ResourceKind) String() string {
	switch k {
	case Food:
		return "food"
	case Water:
		return "water"
	default:
		return "empty"
	}
}

// World is the resource surface the engine consumes. The engine never holds a
// private copy of tile state across ticks; everything goes through these
// three calls.
type World interface {
	// Lookup returns the tile kind at the grid cell containing c.
	Lookup(c components.Coord) ResourceKind
	// Consume removes the resource at c. Returns false if the tile was
	// already empty; the first consumer in a tick wins.
	Consume(c components.Coord) bool
	// IsEmpty reports whether the tile at c holds no resource.
	IsEmpty(c components.Coord) bool
}

// TileMap implements World on a dense grid. Resources respawn over time
// inside fixed fertile patches carved by simplex noise, so remembered
// locations stay worth revisiting.
//
// All methods assume single-goroutine access; within a tick the sequential
// agent update order makes Consume first-writer-wins.
type TileMap struct {
	step   int
	cols   int
	rows   int
	width  int
	height int

	tiles []ResourceKind

	// Fertile cell indices per kind, precomputed at construction.
	fertileFood  []int
	fertileWater []int

	foodCount   int
	waterCount  int
	targetFood  int
	targetWater int

	regenPerSecond float64
	foodAccum      float64
	waterAccum     float64

	rng *rand.Rand
}

// TileMapParams configures a TileMap.
type TileMapParams struct {
	Width          int
	Height         int
	GridStep       int
	InitialFood    int
	InitialWater   int
	RegenPerSecond float64
	PatchScale     float64
	PatchThreshold float64
	Seed           int64
}

// NewTileMap creates a tile map with fertile patches and spawns the initial
// resources.
func NewTileMap(p TileMapParams, rng *rand.Rand) *TileMap {
	cols := p.Width / p.GridStep
	rows := p.Height / p.GridStep

	tm := &TileMap{
		step:           p.GridStep,
		cols:           cols,
		rows:           rows,
		width:          p.Width,
		height:         p.Height,
		tiles:          make([]ResourceKind, cols*rows),
		targetFood:     p.InitialFood,
		targetWater:    p.InitialWater,
		regenPerSecond: p.RegenPerSecond,
		rng:            rng,
	}

	// Two independent noise fields so food and water cluster in different
	// places.
	foodNoise := opensimplex.New(p.Seed)
	waterNoise := opensimplex.New(p.Seed + 1)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			idx := row*cols + col
			fx := float64(col*p.GridStep) * p.PatchScale
			fy := float64(row*p.GridStep) * p.PatchScale
			if foodNoise.Eval2(fx, fy) > p.PatchThreshold {
				tm.fertileFood = append(tm.fertileFood, idx)
			}
			if waterNoise.Eval2(fx, fy) > p.PatchThreshold {
				tm.fertileWater = append(tm.fertileWater, idx)
			}
		}
	}

	for i := 0; i < p.InitialFood; i++ {
		tm.spawnOne(Food)
	}
	for i := 0; i < p.InitialWater; i++ {
		tm.spawnOne(Water)
	}

	return tm
}

// index returns the flat tile index for a world coordinate, or -1 when out
// of bounds.
func (tm *TileMap) index(c components.Coord) int {
	if c.X < 0 || c.Y < 0 || c.X >= tm.width || c.Y >= tm.height {
		return -1
	}
	return (c.Y/tm.step)*tm.cols + (c.X / tm.step)
}

// Lookup returns the tile kind at the grid cell containing c.
func (tm *TileMap) Lookup(c components.Coord) ResourceKind {
	idx := tm.index(c)
	if idx < 0 {
		return Empty
	}
	return tm.tiles[idx]
}

// Consume removes the resource at c. The first consumer wins; later callers
// in the same tick see false.
func (tm *TileMap) Consume(c components.Coord) bool {
	idx := tm.index(c)
	if idx < 0 || tm.tiles[idx] == Empty {
		return false
	}
	switch tm.tiles[idx] {
	case Food:
		tm.foodCount--
	case Water:
		tm.waterCount--
	}
	tm.tiles[idx] = Empty
	return true
}

// IsEmpty reports whether the tile at c holds no resource.
func (tm *TileMap) IsEmpty(c components.Coord) bool {
	return tm.Lookup(c) == Empty
}

// Regenerate respawns resources inside fertile patches at the configured
// rate, capped at the initial counts. Runs between ticks, never inside the
// agent phases.
func (tm *TileMap) Regenerate(dt float64) {
	tm.foodAccum += tm.regenPerSecond * dt
	for tm.foodAccum >= 1 {
		tm.foodAccum--
		if tm.foodCount >= tm.targetFood {
			continue
		}
		tm.spawnOne(Food)
	}

	tm.waterAccum += tm.regenPerSecond * dt
	for tm.waterAccum >= 1 {
		tm.waterAccum--
		if tm.waterCount >= tm.targetWater {
			continue
		}
		tm.spawnOne(Water)
	}
}

// spawnOne places a resource on a random empty fertile cell. Gives up after a
// bounded number of attempts when the patch is saturated.
func (tm *TileMap) spawnOne(kind ResourceKind) {
	fertile := tm.fertileFood
	if kind == Water {
		fertile = tm.fertileWater
	}
	if len(fertile) == 0 {
		// Degenerate noise config: fall back to anywhere on the grid.
		fertile = nil
	}

	const maxAttempts = 64
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var idx int
		if fertile != nil {
			idx = fertile[tm.rng.IntN(len(fertile))]
		} else {
			idx = tm.rng.IntN(len(tm.tiles))
		}
		if tm.tiles[idx] != Empty {
			continue
		}
		tm.tiles[idx] = kind
		if kind == Food {
			tm.foodCount++
		} else {
			tm.waterCount++
		}
		return
	}
}

// FoodCount returns the number of food tiles currently on the map.
func (tm *TileMap) FoodCount() int {
	return tm.foodCount
}

// WaterCount returns the number of water tiles currently on the map.
func (tm *TileMap) WaterCount() int {
	return tm.waterCount
}

// SetTile forces a tile kind at c, adjusting counts. Test and scenario setup
// hook; the simulation itself only consumes and regenerates.
func (tm *TileMap) SetTile(c components.Coord, kind ResourceKind) {
	idx := tm.index(c)
	if idx < 0 {
		return
	}
	switch tm.tiles[idx] {
	case Food:
		tm.foodCount--
	case Water:
		tm.waterCount--
	}
	tm.tiles[idx] = kind
	switch kind {
	case Food:
		tm.foodCount++
	case Water:
		tm.waterCount++
	}
}

// ForEachResource calls fn for every non-empty tile. Used by rendering and
// telemetry; fn must not mutate the map.
func (tm *TileMap) ForEachResource(fn func(c components.Coord, kind ResourceKind)) {
	for idx, kind := range tm.tiles {
		if kind == Empty {
			continue
		}
		c := components.Coord{
			X: (idx % tm.cols) * tm.step,
			Y: (idx / tm.cols) * tm.step,
		}
		fn(c, kind)
	}
}
