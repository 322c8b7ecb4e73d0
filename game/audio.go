package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// audioPlayer plays chirp waveforms through raylib, loading each chirp's
// sound lazily from the synthesized WAV bytes.
type audioPlayer struct {
	sounds map[uint16]rl.Sound
	ready  bool
}

func newAudioPlayer() *audioPlayer {
	rl.InitAudioDevice()
	if !rl.IsAudioDeviceReady() {
		slog.Warn("audio device unavailable, chirps muted")
		return &audioPlayer{}
	}
	return &audioPlayer{sounds: make(map[uint16]rl.Sound), ready: true}
}

// playChirp plays the voice for a chirp id. A nil player (headless or audio
// disabled) is a no-op.
func (g *Game) playChirp(chirp uint16) {
	if g.audio == nil || !g.audio.ready {
		return
	}
	s, ok := g.audio.sounds[chirp]
	if !ok {
		data := g.bank.Get(chirp)
		wave := rl.LoadWaveFromMemory(".wav", data, int32(len(data)))
		s = rl.LoadSoundFromWave(wave)
		rl.UnloadWave(wave)
		g.audio.sounds[chirp] = s
	}
	if !rl.IsSoundPlaying(s) {
		rl.PlaySound(s)
	}
}

func (a *audioPlayer) unload() {
	if !a.ready {
		return
	}
	for _, s := range a.sounds {
		rl.UnloadSound(s)
	}
	rl.CloseAudioDevice()
}
