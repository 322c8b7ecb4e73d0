package systems

import "github.com/hivelab/hive/components"

// AgeMemory advances both memory slots by dt and drops any entry that has
// grown older than span or whose remembered tile no longer holds the expected
// resource. Checking the world every tick keeps agents from walking to spots
// a rival already emptied.
func AgeMemory(m *components.Memory, w World, span float64, dt float64) {
	ageSlot(&m.Food, w, Food, span, dt)
	ageSlot(&m.Water, w, Water, span, dt)
}

func ageSlot(e *components.MemoryEntry, w World, kind ResourceKind, span float64, dt float64) {
	if !e.Valid {
		return
	}
	e.Age += float32(dt)
	if float64(e.Age) > span || w.Lookup(e.Pos) != kind {
		e.Invalidate()
	}
}

// RememberResource refreshes the memory slot for the given kind at pos.
// Called both on consumption and on discovery, i.e. standing on a matching
// tile without consuming it.
func RememberResource(m *components.Memory, kind ResourceKind, pos components.Coord) {
	switch kind {
	case Food:
		m.Food.Refresh(pos)
	case Water:
		m.Water.Refresh(pos)
	}
}

// ForgetAt drops any memory slot pointing at pos. Called when an agent
// stands on pos and finds the remembered resource already gone, so a lost
// race invalidates the stale entry in the same tick instead of waiting for
// the next aging pass.
func ForgetAt(m *components.Memory, pos components.Coord) {
	if m.Food.Valid && m.Food.Pos == pos {
		m.Food.Invalidate()
	}
	if m.Water.Valid && m.Water.Pos == pos {
		m.Water.Invalidate()
	}
}

// RecallTarget returns the remembered location for kind, if any.
func RecallTarget(m *components.Memory, kind ResourceKind) (components.Coord, bool) {
	switch kind {
	case Food:
		if m.Food.Valid {
			return m.Food.Pos, true
		}
	case Water:
		if m.Water.Valid {
			return m.Water.Pos, true
		}
	}
	return components.Coord{}, false
}
