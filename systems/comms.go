package systems

import (
	"math/rand/v2"

	"github.com/hivelab/hive/components"
	"github.com/hivelab/hive/lexicon"
)

// BroadcastEvent is one chirp emitted into the world. Concept is the
// emitter's context (what it was doing when it chirped), used by
// non-confident listeners as the grounding signal for tentative adoption.
type BroadcastEvent struct {
	Chirp   uint16
	Concept lexicon.Concept
	Origin  components.Coord
	Tick    int32
	Emitter uint32
}

// CommsParams holds the signaling protocol tuning.
type CommsParams struct {
	ChirpRadius       int
	BroadcastCooldown int32
	ExpectationWindow int32
	ChirpIDSpace      int
	LexParams         lexicon.Params
}

// EventBuffer collects the chirps of one tick so delivery happens in a
// separate phase. Emitters never hear the chirps of the same tick, and no
// agent's hearing depends on update order within the tick.
type EventBuffer struct {
	events []BroadcastEvent
}

// Reset clears the buffer for the next tick, keeping capacity.
func (b *EventBuffer) Reset() { b.events = b.events[:0] }

// Add appends an event, silently dropping malformed ones.
func (b *EventBuffer) Add(ev BroadcastEvent, worldW, worldH int) {
	if !ev.Concept.Valid() {
		return
	}
	if ev.Origin.X < 0 || ev.Origin.X >= worldW || ev.Origin.Y < 0 || ev.Origin.Y >= worldH {
		return
	}
	b.events = append(b.events, ev)
}

// Events returns the buffered chirps for delivery.
func (b *EventBuffer) Events() []BroadcastEvent { return b.events }

// Len reports the number of buffered chirps.
func (b *EventBuffer) Len() int { return len(b.events) }

// CanBroadcast reports whether the emitter's cooldown has elapsed.
func CanBroadcast(c *components.Comms, tick int32, p CommsParams) bool {
	return c.LastBroadcastTick == components.NoBroadcastYet ||
		tick-c.LastBroadcastTick >= p.BroadcastCooldown
}

// ChooseChirp picks the chirp id an agent uses for a concept. Once chosen,
// the same id is reused for the rest of the agent's life unless its lexicon
// comes to favor another: stable emission is what gives listeners something
// to converge on. Preference order is the sticky per-concept choice, then the
// lexicon's strongest mapping, then a fresh random id.
func ChooseChirp(c *components.Comms, v *lexicon.Table, concept lexicon.Concept, p CommsParams, rng *rand.Rand) uint16 {
	if id := c.Preferred[concept]; id >= 0 {
		return uint16(id)
	}
	if id, ok := v.PreferredChirp(concept); ok {
		c.Preferred[concept] = int32(id)
		return id
	}
	id := uint16(rng.IntN(p.ChirpIDSpace))
	c.Preferred[concept] = int32(id)
	return id
}

// Broadcast records the emission on the emitter and buffers the event.
// The emitter also reinforces its own chirp-concept pair: using a word is
// itself evidence for it.
func Broadcast(emitter uint32, c *components.Comms, v *lexicon.Table, concept lexicon.Concept, origin components.Coord, tick int32, buf *EventBuffer, worldW, worldH int, p CommsParams, rng *rand.Rand) uint16 {
	chirp := ChooseChirp(c, v, concept, p, rng)
	c.LastBroadcastTick = tick
	v.Reinforce(chirp, concept, p.LexParams)
	buf.Add(BroadcastEvent{
		Chirp:   chirp,
		Concept: concept,
		Origin:  origin,
		Tick:    tick,
		Emitter: emitter,
	}, worldW, worldH)
	return chirp
}

// Hear processes one delivered chirp on a listener. A listener confident in
// its own mapping for the chirp interprets it by that belief; otherwise it
// tentatively adopts the emitter's context as the chirp's meaning. Either way
// an expectation is queued: the interpretation is validated or punished by
// what the listener actually finds before the window closes.
func Hear(c *components.Comms, v *lexicon.Table, ev BroadcastEvent, p CommsParams) lexicon.Concept {
	concept, ok := v.Confident(ev.Chirp, p.LexParams)
	if !ok {
		concept = ev.Concept
		v.Adopt(ev.Chirp, concept, p.LexParams)
	}
	c.Pending.Push(components.Expectation{
		Chirp:        ev.Chirp,
		Concept:      concept,
		DeadlineTick: ev.Tick + p.ExpectationWindow,
	})
	return concept
}

// InRadius reports whether a listener position is close enough to hear a
// chirp from origin, using the same euclidean cutoff as the spatial grid.
func InRadius(origin, listener components.Coord, radius int) bool {
	dx := origin.X - listener.X
	dy := origin.Y - listener.Y
	return dx*dx+dy*dy <= radius*radius
}

// ValidateExpectations runs when the listener consumes a resource: every
// pending expectation for that concept whose window is still open counts as
// confirmed and reinforces the chirp-concept pair. Returns the number of
// confirmations.
func ValidateExpectations(c *components.Comms, v *lexicon.Table, consumed lexicon.Concept, tick int32, p CommsParams) int {
	confirmed := 0
	for i := 0; i < int(c.Pending.Count); {
		e := c.Pending.Items[i]
		if e.Concept == consumed && tick < e.DeadlineTick {
			v.Reinforce(e.Chirp, e.Concept, p.LexParams)
			c.Pending.RemoveAt(i)
			confirmed++
			continue
		}
		i++
	}
	return confirmed
}

// ExpireExpectations weakens every pending pair whose window has closed.
// Returns the number of expiries.
func ExpireExpectations(c *components.Comms, v *lexicon.Table, tick int32, p CommsParams) int {
	expired := 0
	for i := 0; i < int(c.Pending.Count); {
		e := c.Pending.Items[i]
		if tick >= e.DeadlineTick {
			v.Weaken(e.Chirp, e.Concept, p.LexParams)
			c.Pending.RemoveAt(i)
			expired++
			continue
		}
		i++
	}
	return expired
}
