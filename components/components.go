// Package components defines ECS components for the simulation.
package components

import "github.com/hivelab/hive/lexicon"

// Coord is a grid coordinate, always a multiple of the world grid step.
type Coord struct {
	X, Y int
}

// Agent holds agent identity. IDs are assigned in creation order and never
// reused; tick processing order follows them.
type Agent struct {
	ID uint32
}

// Position is an agent's world position, snapped to the grid step.
type Position struct {
	X, Y int
}

// Coord returns the position as a grid coordinate.
func (p Position) Coord() Coord {
	return Coord{X: p.X, Y: p.Y}
}

// Needs tracks hunger and thirst in [0, max]. The fractional accumulators
// carry sub-integer per-tick gains so slow rates still bite at 60 Hz.
type Needs struct {
	Hunger int
	Thirst int

	HungerFrac float32
	ThirstFrac float32

	Alive bool
}

// MemoryEntry is a decaying pointer to a last-known resource location.
// Valid is false exactly when no memory exists; Pos is meaningless then.
type MemoryEntry struct {
	Pos   Coord
	Age   float32 // seconds since last refreshed
	Valid bool
}

// Refresh points the entry at pos with age zero.
func (m *MemoryEntry) Refresh(pos Coord) {
	m.Pos = pos
	m.Age = 0
	m.Valid = true
}

// Invalidate forgets the location. Invalidation nulls the entry rather than
// flagging it, so a stale coordinate can never leak into a decision.
func (m *MemoryEntry) Invalidate() {
	m.Pos = Coord{}
	m.Age = 0
	m.Valid = false
}

// Memory holds one entry per resource kind.
type Memory struct {
	Food  MemoryEntry
	Water MemoryEntry
}

// MaxPending caps an agent's queue of unresolved heard chirps.
const MaxPending = 16

// Expectation is a heard chirp awaiting validation or timeout.
type Expectation struct {
	Chirp        uint16
	Concept      lexicon.Concept
	DeadlineTick int32
}

// PendingQueue is an ordered fixed-capacity expectation queue. When full, the
// oldest expectation is dropped to admit the newest.
type PendingQueue struct {
	Items [MaxPending]Expectation
	Count uint8
}

// Push appends an expectation, evicting the oldest when full.
func (q *PendingQueue) Push(e Expectation) {
	if q.Count == MaxPending {
		copy(q.Items[:], q.Items[1:])
		q.Items[MaxPending-1] = e
		return
	}
	q.Items[q.Count] = e
	q.Count++
}

// RemoveAt deletes the expectation at index i, preserving order.
func (q *PendingQueue) RemoveAt(i int) {
	if i < 0 || i >= int(q.Count) {
		return
	}
	copy(q.Items[i:], q.Items[i+1:q.Count])
	q.Count--
}

// NoBroadcastYet initializes LastBroadcastTick so no cooldown applies to a
// fresh agent.
const NoBroadcastYet = -1 << 20

// Comms holds an agent's signalling state.
type Comms struct {
	// LastBroadcastTick rate-limits chirps.
	LastBroadcastTick int32

	// Preferred is the chirp this agent emits per concept, -1 until chosen.
	// Stable once set unless the agent's own confidence relearns it.
	Preferred [lexicon.NumConcepts]int32

	Pending PendingQueue
}

// NewComms returns a Comms with no chirp history and no preferences.
func NewComms() Comms {
	c := Comms{LastBroadcastTick: NoBroadcastYet}
	for i := range c.Preferred {
		c.Preferred[i] = -1
	}
	return c
}

// Vocab wraps the agent's private lexicon as a component.
type Vocab struct {
	Table lexicon.Table
}
