package advisor

import (
	"encoding/binary"
	"fmt"
)

// Datagram chunking. UDP payloads above the configured packet size are split
// into numbered chunks; the receiver reassembles a message once every chunk
// of its id has arrived. Only the newest message id is tracked, so a chunk
// from a superseded message is simply discarded with the rest of it. Loss of
// any single chunk loses the whole message, which is fine for state that is
// republished every interval.

const (
	chunkMagic      = "HVC1"
	chunkHeaderSize = 4 + 4 + 2 + 2

	// MaxChunks bounds reassembly memory per message.
	MaxChunks = 64
)

// Chunk splits a payload into datagrams no larger than maxPacket.
func Chunk(msgID uint32, payload []byte, maxPacket int) ([][]byte, error) {
	body := maxPacket - chunkHeaderSize
	if body <= 0 {
		return nil, fmt.Errorf("advisor: packet size %d below chunk header", maxPacket)
	}
	total := (len(payload) + body - 1) / body
	if total == 0 {
		total = 1
	}
	if total > MaxChunks {
		return nil, fmt.Errorf("advisor: payload needs %d chunks, limit %d", total, MaxChunks)
	}

	le := binary.LittleEndian
	out := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		start := i * body
		end := start + body
		if end > len(payload) {
			end = len(payload)
		}
		pkt := make([]byte, 0, chunkHeaderSize+end-start)
		pkt = append(pkt, chunkMagic...)
		pkt = le.AppendUint32(pkt, msgID)
		pkt = le.AppendUint16(pkt, uint16(i))
		pkt = le.AppendUint16(pkt, uint16(total))
		pkt = append(pkt, payload[start:end]...)
		out = append(out, pkt)
	}
	return out, nil
}

// Assembler reassembles chunked messages, keeping only the newest message id
// seen. Not safe for concurrent use.
type Assembler struct {
	msgID  uint32
	total  int
	have   int
	chunks [][]byte
}

// Accept feeds one received datagram. When it completes a message, the joined
// payload is returned with ok=true. Malformed datagrams and chunks of
// abandoned messages return an error or are silently dropped.
func (a *Assembler) Accept(pkt []byte) (payload []byte, ok bool, err error) {
	if len(pkt) < chunkHeaderSize || string(pkt[:4]) != chunkMagic {
		return nil, false, fmt.Errorf("advisor: not a chunk datagram")
	}
	le := binary.LittleEndian
	msgID := le.Uint32(pkt[4:8])
	index := int(le.Uint16(pkt[8:10]))
	total := int(le.Uint16(pkt[10:12]))
	if total == 0 || total > MaxChunks || index >= total {
		return nil, false, fmt.Errorf("advisor: chunk %d/%d out of range", index, total)
	}

	// Older message ids are stale; newer ones preempt the partial assembly.
	if a.chunks == nil || msgID != a.msgID {
		if a.chunks != nil && olderID(msgID, a.msgID) {
			return nil, false, nil
		}
		a.msgID = msgID
		a.total = total
		a.have = 0
		a.chunks = make([][]byte, total)
	}
	if total != a.total {
		return nil, false, fmt.Errorf("advisor: chunk count changed mid-message")
	}
	if a.chunks[index] != nil {
		return nil, false, nil
	}
	a.chunks[index] = append([]byte(nil), pkt[chunkHeaderSize:]...)
	a.have++
	if a.have < a.total {
		return nil, false, nil
	}

	size := 0
	for _, c := range a.chunks {
		size += len(c)
	}
	joined := make([]byte, 0, size)
	for _, c := range a.chunks {
		joined = append(joined, c...)
	}
	a.chunks = nil
	return joined, true, nil
}

// olderID compares sequence numbers with wraparound.
func olderID(a, b uint32) bool {
	return int32(a-b) < 0
}
