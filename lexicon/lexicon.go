// Package lexicon implements per-agent chirp vocabularies: confidence-weighted
// mappings from chirp identifiers to concepts, updated by reinforcement and
// eroded by time decay.
package lexicon

import "sort"

// Concept is a discrete communicable idea a chirp may come to represent.
type Concept uint8

const (
	ConceptFood Concept = iota
	ConceptWater
	NumConcepts
)

// Valid reports whether c is a known concept. Events carrying anything else
// are dropped before they reach a listener.
func (c Concept) Valid() bool {
	return c < NumConcepts
}

func (c Concept) String() string {
	switch c {
	case ConceptFood:
		return "food"
	case ConceptWater:
		return "water"
	default:
		return "unknown"
	}
}

// MaxSlots is the compile-time slot capacity of a Table. The runtime cap
// (Params.MaxEntries) may be lower, never higher.
const MaxSlots = 32

// Entry is one weighted belief: "chirp means concept, with this confidence".
type Entry struct {
	Chirp   uint16
	Concept Concept
	Weight  float32
}

// Params holds the reinforcement-learning tuning for a table.
type Params struct {
	LearnRate       float32 // Weight gained on a validated expectation
	ForgetRate      float32 // Weight lost on an expired expectation
	DecayRate       float32 // Multiplicative decay per second
	InitialWeight   float32 // Weight of a freshly adopted belief
	ConfidentWeight float32 // Weight at which a mapping overrides heard concepts
	Epsilon         float32 // Weights below this are pruned
	MaxEntries      int     // Runtime slot cap, <= MaxSlots
}

// Table is a fixed-capacity lexicon. The zero value is an empty table; it is
// a plain value type so it can live inside an ECS component without the tick
// loop touching the heap.
type Table struct {
	entries [MaxSlots]Entry
	n       uint8
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return int(t.n)
}

// Entries copies the live entries into dst and returns it. Pass a reused
// slice to avoid allocation.
func (t *Table) Entries(dst []Entry) []Entry {
	return append(dst, t.entries[:t.n]...)
}

// Weight returns the confidence that chirp means concept, 0 if unmapped.
func (t *Table) Weight(chirp uint16, concept Concept) float32 {
	for i := uint8(0); i < t.n; i++ {
		if t.entries[i].Chirp == chirp && t.entries[i].Concept == concept {
			return t.entries[i].Weight
		}
	}
	return 0
}

// find returns the slot index for (chirp, concept), or -1.
func (t *Table) find(chirp uint16, concept Concept) int {
	for i := uint8(0); i < t.n; i++ {
		if t.entries[i].Chirp == chirp && t.entries[i].Concept == concept {
			return int(i)
		}
	}
	return -1
}

// cap returns the effective slot cap for the given params.
func capFor(p Params) int {
	if p.MaxEntries > 0 && p.MaxEntries < MaxSlots {
		return p.MaxEntries
	}
	return MaxSlots
}

// upsert sets the weight for (chirp, concept), inserting if absent. When the
// table is full the weakest entry is evicted to make room.
func (t *Table) upsert(chirp uint16, concept Concept, weight float32, p Params) {
	if idx := t.find(chirp, concept); idx >= 0 {
		t.entries[idx].Weight = weight
		return
	}

	if int(t.n) < capFor(p) {
		t.entries[t.n] = Entry{Chirp: chirp, Concept: concept, Weight: weight}
		t.n++
		return
	}

	// Full: evict the weakest belief, but never for something weaker still.
	minIdx := 0
	for i := 1; i < int(t.n); i++ {
		if t.entries[i].Weight < t.entries[minIdx].Weight {
			minIdx = i
		}
	}
	if weight > t.entries[minIdx].Weight {
		t.entries[minIdx] = Entry{Chirp: chirp, Concept: concept, Weight: weight}
	}
}

// remove deletes slot i by swapping with the last entry.
func (t *Table) remove(i int) {
	t.n--
	t.entries[i] = t.entries[t.n]
}

// Adopt records a tentative belief at InitialWeight if (chirp, concept) is not
// already mapped. An existing mapping keeps its weight.
func (t *Table) Adopt(chirp uint16, concept Concept, p Params) {
	if t.find(chirp, concept) >= 0 {
		return
	}
	t.upsert(chirp, concept, p.InitialWeight, p)
}

// Best returns the strongest concept mapping for chirp.
func (t *Table) Best(chirp uint16) (Concept, float32, bool) {
	var best Concept
	var bestW float32
	found := false
	for i := uint8(0); i < t.n; i++ {
		e := &t.entries[i]
		if e.Chirp != chirp {
			continue
		}
		if !found || e.Weight > bestW {
			best, bestW, found = e.Concept, e.Weight, true
		}
	}
	return best, bestW, found
}

// Confident returns the listener's own interpretation of chirp if it holds
// one at or above ConfidentWeight.
func (t *Table) Confident(chirp uint16, p Params) (Concept, bool) {
	concept, w, ok := t.Best(chirp)
	if !ok || w < p.ConfidentWeight {
		return 0, false
	}
	return concept, true
}

// Reinforce applies positive reinforcement: the validated mapping steps toward
// 1 by LearnRate, and competing concepts sharing the chirp are scaled down by
// (1 - LearnRate). The comparative scaling is what lets one meaning win a
// chirp instead of all meanings growing without bound.
func (t *Table) Reinforce(chirp uint16, concept Concept, p Params) {
	idx := t.find(chirp, concept)
	if idx < 0 {
		t.upsert(chirp, concept, p.InitialWeight, p)
		idx = t.find(chirp, concept)
		if idx < 0 {
			return // evicted on insert into a full table of stronger beliefs
		}
	}

	w := t.entries[idx].Weight + p.LearnRate
	if w > 1 {
		w = 1
	}
	t.entries[idx].Weight = w

	for i := uint8(0); i < t.n; i++ {
		e := &t.entries[i]
		if e.Chirp == chirp && e.Concept != concept {
			e.Weight *= 1 - p.LearnRate
		}
	}
}

// Weaken applies negative reinforcement to a mapping whose expectation
// expired unvalidated. The entry survives at a floor of 0; decay prunes it.
func (t *Table) Weaken(chirp uint16, concept Concept, p Params) {
	idx := t.find(chirp, concept)
	if idx < 0 {
		return
	}
	w := t.entries[idx].Weight - p.ForgetRate
	if w < 0 {
		w = 0
	}
	t.entries[idx].Weight = w
}

// Decay erodes every weight multiplicatively by DecayRate over dt seconds and
// prunes entries that fall below Epsilon. This keeps tables self-bounding and
// lets the population drift toward a changing consensus instead of freezing
// on first impressions.
func (t *Table) Decay(dt float32, p Params) {
	factor := 1 - p.DecayRate*dt
	if factor < 0 {
		factor = 0
	}
	for i := 0; i < int(t.n); {
		t.entries[i].Weight *= factor
		if t.entries[i].Weight < p.Epsilon {
			t.remove(i)
			continue // swapped-in entry still needs decaying
		}
		i++
	}
}

// PreferredChirp returns the chirp the agent itself most strongly associates
// with concept. Used to keep an agent's outgoing signal stable once learned.
func (t *Table) PreferredChirp(concept Concept) (uint16, bool) {
	var best uint16
	var bestW float32
	found := false
	for i := uint8(0); i < t.n; i++ {
		e := &t.entries[i]
		if e.Concept != concept {
			continue
		}
		if !found || e.Weight > bestW {
			best, bestW, found = e.Chirp, e.Weight, true
		}
	}
	return best, found
}

// Top appends the n highest-weight entries to dst, strongest first.
func (t *Table) Top(dst []Entry, n int) []Entry {
	start := len(dst)
	dst = append(dst, t.entries[:t.n]...)
	sort.Slice(dst[start:], func(i, j int) bool {
		return dst[start+i].Weight > dst[start+j].Weight
	})
	if len(dst)-start > n {
		dst = dst[:start+n]
	}
	return dst
}
