package systems

import "github.com/mlange-42/ark/ecs"

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DistSq int // Squared distance in world units
}

// SpatialGrid provides cheap radius lookups over agent positions. Rebuilt at
// the start of every tick; hearing delivery queries it per broadcast.
type SpatialGrid struct {
	cellSize int
	cols     int
	rows     int
	width    int
	height   int
	cells    [][]gridEntry
}

type gridEntry struct {
	e    ecs.Entity
	x, y int
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize int) *SpatialGrid {
	cols := width/cellSize + 1
	rows := height/cellSize + 1

	cells := make([][]gridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y int) {
	idx := g.cellIndex(x, y)
	if idx >= 0 && idx < len(g.cells) {
		g.cells[idx] = append(g.cells[idx], gridEntry{e: e, x: x, y: y})
	}
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// A dense cluster of agents must not cause unbounded delivery work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius of (x, y) and appends them to
// dst (up to MaxQueryResults). Returns the updated slice. Reuse dst across
// calls to avoid allocations. The world is bounded, not toroidal.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius int, exclude ecs.Entity) []Neighbor {
	cellRadius := radius/g.cellSize + 1

	centerCol := x / g.cellSize
	centerRow := y / g.cellSize

	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}

			for _, entry := range g.cells[row*g.cols+col] {
				if entry.e == exclude {
					continue
				}

				dx := entry.x - x
				dy := entry.y - y
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: entry.e, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y int) int {
	col := x / g.cellSize
	row := y / g.cellSize

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
