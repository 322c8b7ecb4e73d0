package lexicon

import (
	"math"
	"testing"
)

// testParams mirrors the shipped defaults.
func testParams() Params {
	return Params{
		LearnRate:       0.2,
		ForgetRate:      0.05,
		DecayRate:       0.01,
		InitialWeight:   0.2,
		ConfidentWeight: 0.6,
		Epsilon:         0.001,
		MaxEntries:      32,
	}
}

func approx(t *testing.T, got, want float32, tol float64, msg string) {
	t.Helper()
	if math.Abs(float64(got-want)) > tol {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestAdoptSetsInitialWeight(t *testing.T) {
	p := testParams()
	var tab Table

	tab.Adopt(42, ConceptFood, p)
	approx(t, tab.Weight(42, ConceptFood), 0.2, 1e-6, "adopted weight")

	// Adopting again must not reset an existing weight
	tab.Reinforce(42, ConceptFood, p)
	tab.Adopt(42, ConceptFood, p)
	approx(t, tab.Weight(42, ConceptFood), 0.4, 1e-6, "weight after re-adopt")
}

func TestReinforceStepsTowardOne(t *testing.T) {
	p := testParams()
	var tab Table
	tab.Adopt(10, ConceptFood, p)

	tab.Reinforce(10, ConceptFood, p)
	approx(t, tab.Weight(10, ConceptFood), 0.4, 1e-6, "weight after one reinforcement")

	// Repeated reinforcement caps at 1.0
	for i := 0; i < 10; i++ {
		tab.Reinforce(10, ConceptFood, p)
	}
	approx(t, tab.Weight(10, ConceptFood), 1.0, 1e-6, "weight cap")
}

func TestReinforceSuppressesCompetingConcepts(t *testing.T) {
	p := testParams()
	var tab Table
	tab.upsert(10, ConceptFood, 0.5, p)
	tab.upsert(10, ConceptWater, 0.5, p)
	tab.upsert(20, ConceptWater, 0.5, p) // different chirp, untouched

	tab.Reinforce(10, ConceptFood, p)

	approx(t, tab.Weight(10, ConceptFood), 0.7, 1e-6, "reinforced weight")
	approx(t, tab.Weight(10, ConceptWater), 0.4, 1e-6, "competing weight scaled by 1-learn_rate")
	approx(t, tab.Weight(20, ConceptWater), 0.5, 1e-6, "other chirp unaffected")
}

func TestWeakenFloorsAtZero(t *testing.T) {
	p := testParams()
	var tab Table
	tab.upsert(7, ConceptWater, 0.04, p)

	tab.Weaken(7, ConceptWater, p)
	approx(t, tab.Weight(7, ConceptWater), 0, 1e-6, "weakened below forget_rate floors at 0")

	// Weakening an unmapped chirp is a no-op
	tab.Weaken(99, ConceptFood, p)
	if tab.Len() != 1 {
		t.Errorf("Len = %d after weakening unknown chirp, want 1", tab.Len())
	}
}

func TestDecayMatchesMultiplicativeFormula(t *testing.T) {
	p := testParams()
	var tab Table
	tab.upsert(10, ConceptFood, 0.8, p)
	tab.upsert(20, ConceptWater, 0.9, p)

	// 50 simulated seconds at 60 Hz
	const dt = float32(1.0 / 60.0)
	ticks := 50 * 60
	for i := 0; i < ticks; i++ {
		tab.Decay(dt, p)
	}

	factor := math.Pow(float64(1-p.DecayRate*dt), float64(ticks))
	approx(t, tab.Weight(10, ConceptFood), float32(0.8*factor), 1e-3, "food weight after 50s decay")
	approx(t, tab.Weight(20, ConceptWater), float32(0.9*factor), 1e-3, "water weight after 50s decay")

	// Sanity: the per-tick product tracks exp(-rate * t)
	if math.Abs(factor-math.Exp(-float64(p.DecayRate)*50)) > 0.05 {
		t.Errorf("decay multiplier %v drifted from exp target %v", factor, math.Exp(-float64(p.DecayRate)*50))
	}
}

func TestDecayPrunesBelowEpsilon(t *testing.T) {
	p := testParams()
	var tab Table
	tab.upsert(30, ConceptFood, 0.0009, p) // already below epsilon
	tab.upsert(31, ConceptFood, 0.5, p)

	tab.Decay(1.0/60.0, p)

	if tab.Weight(30, ConceptFood) != 0 || tab.find(30, ConceptFood) >= 0 {
		t.Error("sub-epsilon entry survived decay")
	}
	if tab.find(31, ConceptFood) < 0 {
		t.Error("healthy entry was pruned")
	}
}

func TestWeightsStayInUnitInterval(t *testing.T) {
	p := testParams()
	var tab Table
	tab.Adopt(5, ConceptFood, p)

	for i := 0; i < 100; i++ {
		tab.Reinforce(5, ConceptFood, p)
		tab.Weaken(5, ConceptWater, p)
		tab.Decay(1.0/60.0, p)
		var scratch [MaxSlots]Entry
		for _, e := range tab.Entries(scratch[:0]) {
			if e.Weight < 0 || e.Weight > 1 {
				t.Fatalf("weight %v out of [0,1] at iteration %d", e.Weight, i)
			}
		}
	}
}

func TestUpsertEvictsWeakestWhenFull(t *testing.T) {
	p := testParams()
	p.MaxEntries = 4
	var tab Table
	tab.upsert(1, ConceptFood, 0.9, p)
	tab.upsert(2, ConceptFood, 0.1, p)
	tab.upsert(3, ConceptFood, 0.8, p)
	tab.upsert(4, ConceptFood, 0.7, p)

	// Stronger newcomer replaces the weakest slot
	tab.upsert(5, ConceptWater, 0.5, p)
	if tab.Len() != 4 {
		t.Fatalf("Len = %d, want 4", tab.Len())
	}
	if tab.find(2, ConceptFood) >= 0 {
		t.Error("weakest entry was not evicted")
	}
	if tab.find(5, ConceptWater) < 0 {
		t.Error("newcomer was not inserted")
	}

	// Weaker newcomer bounces off a full table
	tab.upsert(6, ConceptWater, 0.05, p)
	if tab.find(6, ConceptWater) >= 0 {
		t.Error("weak newcomer displaced a stronger belief")
	}
}

func TestConfidentAndBest(t *testing.T) {
	p := testParams()
	var tab Table
	tab.upsert(10, ConceptFood, 0.7, p)
	tab.upsert(10, ConceptWater, 0.3, p)

	concept, w, ok := tab.Best(10)
	if !ok || concept != ConceptFood {
		t.Fatalf("Best = (%v, %v, %v), want food", concept, w, ok)
	}

	if c, ok := tab.Confident(10, p); !ok || c != ConceptFood {
		t.Errorf("Confident = (%v, %v), want (food, true)", c, ok)
	}

	tab.upsert(10, ConceptFood, 0.5, p)
	if _, ok := tab.Confident(10, p); ok {
		t.Error("Confident reported true below confident_weight")
	}
}

func TestPreferredChirp(t *testing.T) {
	p := testParams()
	var tab Table

	if _, ok := tab.PreferredChirp(ConceptFood); ok {
		t.Error("empty table reported a preferred chirp")
	}

	tab.upsert(10, ConceptFood, 0.4, p)
	tab.upsert(11, ConceptFood, 0.9, p)
	tab.upsert(12, ConceptWater, 0.95, p)

	chirp, ok := tab.PreferredChirp(ConceptFood)
	if !ok || chirp != 11 {
		t.Errorf("PreferredChirp(food) = (%d, %v), want (11, true)", chirp, ok)
	}
}

func TestTopOrdersByWeight(t *testing.T) {
	p := testParams()
	var tab Table
	tab.upsert(1, ConceptFood, 0.2, p)
	tab.upsert(2, ConceptWater, 0.9, p)
	tab.upsert(3, ConceptFood, 0.5, p)

	top := tab.Top(nil, 2)
	if len(top) != 2 {
		t.Fatalf("Top returned %d entries, want 2", len(top))
	}
	if top[0].Chirp != 2 || top[1].Chirp != 3 {
		t.Errorf("Top order = [%d %d], want [2 3]", top[0].Chirp, top[1].Chirp)
	}
}

// Closed-loop reinforcement: twenty hear/validate cycles against slow decay
// must drive the validated mapping past 0.9 while the competitor starves
// below epsilon. This mirrors how a listener actually learns in the sim.
func TestRepeatedValidationConverges(t *testing.T) {
	p := testParams()
	var tab Table
	tab.upsert(42, ConceptWater, 0.3, p) // wrong initial belief to overcome

	const dt = float32(1.0 / 60.0)
	for cycle := 0; cycle < 20; cycle++ {
		tab.Adopt(42, ConceptFood, p)
		tab.Reinforce(42, ConceptFood, p)
		// A few seconds of decay between encounters
		for i := 0; i < 3*60; i++ {
			tab.Decay(dt, p)
		}
	}

	if w := tab.Weight(42, ConceptFood); w < 0.9 {
		t.Errorf("validated mapping weight = %v, want >= 0.9", w)
	}
	if w := tab.Weight(42, ConceptWater); w >= p.Epsilon {
		t.Errorf("competing mapping weight = %v, want pruned below epsilon", w)
	}
}
