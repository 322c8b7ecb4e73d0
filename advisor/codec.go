// Package advisor implements the optional sidecar link: each tick the
// simulation can publish a world snapshot over UDP and apply movement nudges
// an external process sends back. The link is advisory in every sense; lost,
// late or absent packets never stall or alter the tick loop beyond the
// nudges themselves.
package advisor

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"
)

// AgentState is one agent's row in a published snapshot.
type AgentState struct {
	ID     uint32
	X, Y   int32
	Hunger uint8
	Thirst uint8
	Alive  bool
}

// Snapshot is the world state published each advisor interval.
type Snapshot struct {
	Tick   int32
	Agents []AgentState
}

// Suggestion is one movement nudge from the sidecar: a per-axis direction in
// {-1, 0, 1}, applied in grid steps.
type Suggestion struct {
	ID     uint32
	DX, DY int8
}

// Suggestions is the sidecar's reply to a snapshot. Tick echoes the snapshot
// it answers, which is how the client ages replies.
type Suggestions struct {
	Tick  int32
	Moves []Suggestion
}

// Wire layout constants. Payloads are little-endian, s2-compressed, and
// split into chunked datagrams (see chunk.go).
const (
	snapshotMagic   = "HVS1"
	suggestionMagic = "HVA1"

	agentStateSize = 4 + 4 + 4 + 1 + 1 + 1
	suggestionSize = 4 + 1 + 1

	// MaxAgents bounds decode allocations against hostile or corrupt input.
	MaxAgents = 4096
)

// EncodeSnapshot packs and compresses a snapshot payload.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if len(s.Agents) > MaxAgents {
		return nil, fmt.Errorf("advisor: snapshot holds %d agents, limit %d", len(s.Agents), MaxAgents)
	}
	le := binary.LittleEndian
	raw := make([]byte, 0, 4+4+2+len(s.Agents)*agentStateSize)
	raw = append(raw, snapshotMagic...)
	raw = le.AppendUint32(raw, uint32(s.Tick))
	raw = le.AppendUint16(raw, uint16(len(s.Agents)))
	for _, a := range s.Agents {
		raw = le.AppendUint32(raw, a.ID)
		raw = le.AppendUint32(raw, uint32(a.X))
		raw = le.AppendUint32(raw, uint32(a.Y))
		raw = append(raw, a.Hunger, a.Thirst, boolByte(a.Alive))
	}
	return s2.Encode(nil, raw), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	raw, err := s2.Decode(nil, data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("advisor: decompress snapshot: %w", err)
	}
	if len(raw) < 10 || string(raw[:4]) != snapshotMagic {
		return Snapshot{}, fmt.Errorf("advisor: not a snapshot payload")
	}
	le := binary.LittleEndian
	s := Snapshot{Tick: int32(le.Uint32(raw[4:8]))}
	n := int(le.Uint16(raw[8:10]))
	if n > MaxAgents {
		return Snapshot{}, fmt.Errorf("advisor: snapshot claims %d agents, limit %d", n, MaxAgents)
	}
	if len(raw) != 10+n*agentStateSize {
		return Snapshot{}, fmt.Errorf("advisor: snapshot length %d, want %d for %d agents", len(raw), 10+n*agentStateSize, n)
	}
	s.Agents = make([]AgentState, n)
	for i := range s.Agents {
		off := 10 + i*agentStateSize
		s.Agents[i] = AgentState{
			ID:     le.Uint32(raw[off : off+4]),
			X:      int32(le.Uint32(raw[off+4 : off+8])),
			Y:      int32(le.Uint32(raw[off+8 : off+12])),
			Hunger: raw[off+12],
			Thirst: raw[off+13],
			Alive:  raw[off+14] != 0,
		}
	}
	return s, nil
}

// EncodeSuggestions packs and compresses a reply payload.
func EncodeSuggestions(s Suggestions) ([]byte, error) {
	if len(s.Moves) > MaxAgents {
		return nil, fmt.Errorf("advisor: reply holds %d moves, limit %d", len(s.Moves), MaxAgents)
	}
	le := binary.LittleEndian
	raw := make([]byte, 0, 4+4+2+len(s.Moves)*suggestionSize)
	raw = append(raw, suggestionMagic...)
	raw = le.AppendUint32(raw, uint32(s.Tick))
	raw = le.AppendUint16(raw, uint16(len(s.Moves)))
	for _, m := range s.Moves {
		raw = le.AppendUint32(raw, m.ID)
		raw = append(raw, byte(m.DX), byte(m.DY))
	}
	return s2.Encode(nil, raw), nil
}

// DecodeSuggestions reverses EncodeSuggestions. Moves with a direction
// outside {-1, 0, 1} are dropped rather than failing the whole reply.
func DecodeSuggestions(data []byte) (Suggestions, error) {
	raw, err := s2.Decode(nil, data)
	if err != nil {
		return Suggestions{}, fmt.Errorf("advisor: decompress reply: %w", err)
	}
	if len(raw) < 10 || string(raw[:4]) != suggestionMagic {
		return Suggestions{}, fmt.Errorf("advisor: not a reply payload")
	}
	le := binary.LittleEndian
	s := Suggestions{Tick: int32(le.Uint32(raw[4:8]))}
	n := int(le.Uint16(raw[8:10]))
	if n > MaxAgents {
		return Suggestions{}, fmt.Errorf("advisor: reply claims %d moves, limit %d", n, MaxAgents)
	}
	if len(raw) != 10+n*suggestionSize {
		return Suggestions{}, fmt.Errorf("advisor: reply length %d, want %d for %d moves", len(raw), 10+n*suggestionSize, n)
	}
	s.Moves = make([]Suggestion, 0, n)
	for i := 0; i < n; i++ {
		off := 10 + i*suggestionSize
		m := Suggestion{
			ID: le.Uint32(raw[off : off+4]),
			DX: int8(raw[off+4]),
			DY: int8(raw[off+5]),
		}
		if m.DX < -1 || m.DX > 1 || m.DY < -1 || m.DY > 1 {
			continue
		}
		s.Moves = append(s.Moves, m)
	}
	return s, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
