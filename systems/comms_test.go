package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/hivelab/hive/components"
	"github.com/hivelab/hive/lexicon"
)

func testCommsParams() CommsParams {
	return CommsParams{
		ChirpRadius:       32,
		BroadcastCooldown: 120,
		ExpectationWindow: 180,
		ChirpIDSpace:      256,
		LexParams: lexicon.Params{
			LearnRate:       0.2,
			ForgetRate:      0.05,
			DecayRate:       0.01,
			InitialWeight:   0.2,
			ConfidentWeight: 0.6,
			Epsilon:         0.001,
			MaxEntries:      32,
		},
	}
}

func TestEventBufferDropsMalformed(t *testing.T) {
	var buf EventBuffer
	buf.Add(BroadcastEvent{Chirp: 1, Concept: lexicon.Concept(99), Origin: components.Coord{X: 8, Y: 8}}, 600, 600)
	buf.Add(BroadcastEvent{Chirp: 1, Concept: lexicon.ConceptFood, Origin: components.Coord{X: -8, Y: 8}}, 600, 600)
	buf.Add(BroadcastEvent{Chirp: 1, Concept: lexicon.ConceptFood, Origin: components.Coord{X: 8, Y: 600}}, 600, 600)
	if buf.Len() != 0 {
		t.Fatalf("%d malformed events accepted", buf.Len())
	}
	buf.Add(BroadcastEvent{Chirp: 1, Concept: lexicon.ConceptWater, Origin: components.Coord{X: 8, Y: 8}}, 600, 600)
	if buf.Len() != 1 {
		t.Fatal("valid event dropped")
	}
}

func TestCanBroadcastCooldown(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	if !CanBroadcast(&c, 0, p) {
		t.Fatal("fresh agent blocked from broadcasting")
	}
	c.LastBroadcastTick = 100
	if CanBroadcast(&c, 219, p) {
		t.Fatal("broadcast allowed inside cooldown")
	}
	if !CanBroadcast(&c, 220, p) {
		t.Fatal("broadcast blocked after cooldown elapsed")
	}
}

func TestChooseChirpSticky(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	rng := rand.New(rand.NewPCG(3, 9))

	first := ChooseChirp(&c, &v, lexicon.ConceptFood, p, rng)
	for i := 0; i < 50; i++ {
		if got := ChooseChirp(&c, &v, lexicon.ConceptFood, p, rng); got != first {
			t.Fatalf("chirp changed from %d to %d on reuse", first, got)
		}
	}
}

func TestChooseChirpPrefersLexicon(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	v.Adopt(42, lexicon.ConceptWater, p.LexParams)
	rng := rand.New(rand.NewPCG(1, 1))

	if got := ChooseChirp(&c, &v, lexicon.ConceptWater, p, rng); got != 42 {
		t.Fatalf("chose %d, want lexicon-preferred 42", got)
	}
}

func TestBroadcastReinforcesOwnPair(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	var buf EventBuffer
	rng := rand.New(rand.NewPCG(5, 5))

	chirp := Broadcast(7, &c, &v, lexicon.ConceptFood, components.Coord{X: 16, Y: 16}, 10, &buf, 600, 600, p, rng)
	if buf.Len() != 1 {
		t.Fatal("event not buffered")
	}
	ev := buf.Events()[0]
	if ev.Chirp != chirp || ev.Concept != lexicon.ConceptFood || ev.Emitter != 7 || ev.Tick != 10 {
		t.Fatalf("event %+v inconsistent with broadcast", ev)
	}
	if c.LastBroadcastTick != 10 {
		t.Fatalf("LastBroadcastTick=%d, want 10", c.LastBroadcastTick)
	}
	if v.Weight(chirp, lexicon.ConceptFood) <= 0 {
		t.Fatal("emitter did not reinforce its own pair")
	}
}

func TestHearNaiveListenerAdopts(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	ev := BroadcastEvent{Chirp: 17, Concept: lexicon.ConceptFood, Tick: 50}

	got := Hear(&c, &v, ev, p)
	if got != lexicon.ConceptFood {
		t.Fatalf("interpreted as %v, want food", got)
	}
	if w := v.Weight(17, lexicon.ConceptFood); w != p.LexParams.InitialWeight {
		t.Fatalf("adopted weight %v, want %v", w, p.LexParams.InitialWeight)
	}
	if c.Pending.Count != 1 {
		t.Fatal("no expectation queued")
	}
	e := c.Pending.Items[0]
	if e.Chirp != 17 || e.Concept != lexicon.ConceptFood || e.DeadlineTick != 50+p.ExpectationWindow {
		t.Fatalf("expectation %+v wrong", e)
	}
}

func TestHearConfidentListenerKeepsBelief(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	// Build a confident chirp->water belief, then hear the same chirp in a
	// food context: the listener trusts itself.
	v.Adopt(17, lexicon.ConceptWater, p.LexParams)
	for v.Weight(17, lexicon.ConceptWater) < p.LexParams.ConfidentWeight {
		v.Reinforce(17, lexicon.ConceptWater, p.LexParams)
	}

	got := Hear(&c, &v, BroadcastEvent{Chirp: 17, Concept: lexicon.ConceptFood, Tick: 0}, p)
	if got != lexicon.ConceptWater {
		t.Fatalf("interpreted as %v, want own belief water", got)
	}
	if v.Weight(17, lexicon.ConceptFood) != 0 {
		t.Fatal("confident listener still adopted the heard context")
	}
	if c.Pending.Items[0].Concept != lexicon.ConceptWater {
		t.Fatal("expectation queued with heard concept instead of own belief")
	}
}

func TestInRadius(t *testing.T) {
	origin := components.Coord{X: 100, Y: 100}
	if !InRadius(origin, components.Coord{X: 132, Y: 100}, 32) {
		t.Error("edge of radius should hear")
	}
	if InRadius(origin, components.Coord{X: 133, Y: 100}, 32) {
		t.Error("outside radius heard")
	}
	if InRadius(origin, components.Coord{X: 68, Y: 132}, 32) {
		t.Error("corner outside euclidean radius heard")
	}
	if !InRadius(origin, components.Coord{X: 116, Y: 116}, 32) {
		t.Error("diagonal inside euclidean radius should hear")
	}
}

func TestValidateExpectations(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	v.Adopt(5, lexicon.ConceptFood, p.LexParams)
	v.Adopt(6, lexicon.ConceptWater, p.LexParams)
	c.Pending.Push(components.Expectation{Chirp: 5, Concept: lexicon.ConceptFood, DeadlineTick: 200})
	c.Pending.Push(components.Expectation{Chirp: 6, Concept: lexicon.ConceptWater, DeadlineTick: 200})

	n := ValidateExpectations(&c, &v, lexicon.ConceptFood, 150, p)
	if n != 1 {
		t.Fatalf("confirmed %d, want 1", n)
	}
	if w := v.Weight(5, lexicon.ConceptFood); w <= p.LexParams.InitialWeight {
		t.Fatalf("food pair weight %v not reinforced", w)
	}
	if w := v.Weight(6, lexicon.ConceptWater); w != p.LexParams.InitialWeight {
		t.Fatalf("water pair weight %v touched", w)
	}
	if c.Pending.Count != 1 {
		t.Fatalf("pending count %d, want the water expectation left", c.Pending.Count)
	}
}

func TestValidateExpectationsRespectsDeadline(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	v.Adopt(5, lexicon.ConceptFood, p.LexParams)
	c.Pending.Push(components.Expectation{Chirp: 5, Concept: lexicon.ConceptFood, DeadlineTick: 100})

	if n := ValidateExpectations(&c, &v, lexicon.ConceptFood, 100, p); n != 0 {
		t.Fatal("expectation validated at its deadline tick")
	}
}

func TestExpireExpectations(t *testing.T) {
	p := testCommsParams()
	c := components.NewComms()
	var v lexicon.Table
	v.Adopt(5, lexicon.ConceptFood, p.LexParams)
	c.Pending.Push(components.Expectation{Chirp: 5, Concept: lexicon.ConceptFood, DeadlineTick: 100})
	c.Pending.Push(components.Expectation{Chirp: 5, Concept: lexicon.ConceptFood, DeadlineTick: 300})

	n := ExpireExpectations(&c, &v, 100, p)
	if n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}
	want := p.LexParams.InitialWeight - p.LexParams.ForgetRate
	if w := v.Weight(5, lexicon.ConceptFood); !approx32(w, want) {
		t.Fatalf("weight %v after expiry, want %v", w, want)
	}
	if c.Pending.Count != 1 {
		t.Fatalf("pending count %d, want 1", c.Pending.Count)
	}
}

func approx32(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-5
}
