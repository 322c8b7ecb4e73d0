// Package sound synthesizes the short chirp samples agents emit. Every chirp
// id maps to a distinct, stable voice so a listener (human or otherwise) can
// tell emitters apart: frequency, duration and waveform are all derived from
// the id. Output is a complete in-memory WAV file ready for the audio device.
package sound

import (
	"encoding/binary"
	"math"
)

const (
	// SampleRate is deliberately lo-fi. The chirps are diagnostic beeps, not
	// music, and small buffers keep per-chirp synthesis cheap.
	SampleRate    = 8000
	bitsPerSample = 8
	numChannels   = 1

	baseFreqHz  = 400
	freqStepHz  = 2
	baseDurMs   = 60
	durStepMs   = 20
	durVariants = 3
)

// Freq returns the tone frequency in Hz for a chirp id.
func Freq(chirp uint16) float64 {
	return float64(baseFreqHz + freqStepHz*int(chirp))
}

// Duration returns the tone length in milliseconds for a chirp id.
func Duration(chirp uint16) int {
	return baseDurMs + int(chirp%durVariants)*durStepMs
}

// Chirp renders the WAV file for a chirp id: an 8 kHz 8-bit mono tone, square
// wave for even ids and sine for odd, so adjacent ids sound clearly different.
func Chirp(chirp uint16) []byte {
	freq := Freq(chirp)
	n := SampleRate * Duration(chirp) / 1000

	samples := make([]byte, n)
	for i := range samples {
		phase := freq * float64(i) / SampleRate
		var v float64
		if chirp%2 == 0 {
			if math.Mod(phase, 1) < 0.5 {
				v = 1
			} else {
				v = -1
			}
		} else {
			v = math.Sin(2 * math.Pi * phase)
		}
		// 8-bit WAV samples are unsigned, centered on 128.
		samples[i] = byte(128 + v*100)
	}
	return wrapWAV(samples)
}

// wrapWAV prepends a canonical 44-byte RIFF/WAVE header for 8-bit mono PCM.
func wrapWAV(samples []byte) []byte {
	dataLen := len(samples)
	byteRate := SampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	out := make([]byte, 0, 44+dataLen)
	le := binary.LittleEndian

	out = append(out, "RIFF"...)
	out = le.AppendUint32(out, uint32(36+dataLen))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = le.AppendUint32(out, 16) // PCM chunk size
	out = le.AppendUint16(out, 1)  // PCM format
	out = le.AppendUint16(out, numChannels)
	out = le.AppendUint32(out, SampleRate)
	out = le.AppendUint32(out, uint32(byteRate))
	out = le.AppendUint16(out, uint16(blockAlign))
	out = le.AppendUint16(out, bitsPerSample)

	out = append(out, "data"...)
	out = le.AppendUint32(out, uint32(dataLen))
	out = append(out, samples...)
	return out
}

// Bank caches rendered chirps by id so repeated emissions reuse the buffer.
// Not safe for concurrent use; the tick loop is the only caller.
type Bank struct {
	waves map[uint16][]byte
}

// NewBank returns an empty chirp cache.
func NewBank() *Bank {
	return &Bank{waves: make(map[uint16][]byte)}
}

// Get returns the WAV bytes for a chirp id, rendering on first use.
func (b *Bank) Get(chirp uint16) []byte {
	if w, ok := b.waves[chirp]; ok {
		return w
	}
	w := Chirp(chirp)
	b.waves[chirp] = w
	return w
}

// Len reports how many distinct chirps have been rendered.
func (b *Bank) Len() int {
	return len(b.waves)
}
