package advisor

import (
	"testing"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Tick: 1200,
		Agents: []AgentState{
			{ID: 0, X: 8, Y: 16, Hunger: 100, Thirst: 30, Alive: true},
			{ID: 1, X: 592, Y: 0, Hunger: 255, Thirst: 255, Alive: false},
			{ID: 7, X: 304, Y: 304, Hunger: 0, Thirst: 0, Alive: true},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	want := sampleSnapshot()
	data, err := EncodeSnapshot(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tick != want.Tick || len(got.Agents) != len(want.Agents) {
		t.Fatalf("got tick %d with %d agents, want tick %d with %d", got.Tick, len(got.Agents), want.Tick, len(want.Agents))
	}
	for i := range want.Agents {
		if got.Agents[i] != want.Agents[i] {
			t.Errorf("agent %d: got %+v, want %+v", i, got.Agents[i], want.Agents[i])
		}
	}
}

func TestSuggestionsRoundTrip(t *testing.T) {
	want := Suggestions{
		Tick: 1200,
		Moves: []Suggestion{
			{ID: 0, DX: 1, DY: -1},
			{ID: 7, DX: 0, DY: 1},
		},
	}
	data, err := EncodeSuggestions(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSuggestions(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tick != want.Tick || len(got.Moves) != len(want.Moves) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want.Moves {
		if got.Moves[i] != want.Moves[i] {
			t.Errorf("move %d: got %+v, want %+v", i, got.Moves[i], want.Moves[i])
		}
	}
}

func TestDecodeSuggestionsDropsWildMoves(t *testing.T) {
	data, err := EncodeSuggestions(Suggestions{
		Tick: 5,
		Moves: []Suggestion{
			{ID: 1, DX: 1, DY: 0},
			{ID: 2, DX: 3, DY: 0}, // out of range, must be dropped alone
			{ID: 3, DX: -1, DY: -1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSuggestions(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Moves) != 2 {
		t.Fatalf("kept %d moves, want 2", len(got.Moves))
	}
	for _, m := range got.Moves {
		if m.ID == 2 {
			t.Error("out-of-range move survived decode")
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("not even s2")); err == nil {
		t.Error("garbage snapshot decoded")
	}
	// A valid reply payload is not a snapshot.
	data, err := EncodeSuggestions(Suggestions{Tick: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeSnapshot(data); err == nil {
		t.Error("reply payload decoded as snapshot")
	}
}

func TestEncodeSnapshotSizeLimit(t *testing.T) {
	s := Snapshot{Agents: make([]AgentState, MaxAgents+1)}
	if _, err := EncodeSnapshot(s); err == nil {
		t.Error("oversized snapshot encoded")
	}
}
