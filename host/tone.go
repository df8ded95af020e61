package host

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	TONE_SAMPLE_RATE = 44100 // Default samples per second.
	TONE_FREQUENCY   = 440   // Default square wave frequency, in Hz.
	TONE_VOLUME      = 0.25  // Default amplitude, 0 to 1.
)

// Tone is a gated square wave generator. Its Read produces mono
// float32 little-endian samples, suitable for an audio player.
type Tone struct {
	SampleRate int     // Samples per second. If zero, TONE_SAMPLE_RATE.
	Frequency  float64 // Square wave frequency. If zero, TONE_FREQUENCY.
	Volume     float64 // Amplitude. If zero, TONE_VOLUME.

	on    atomic.Bool
	phase float64 // Position in the current cycle, 0 to 1.
}

// SetTone starts or stops the tone.
func (tone *Tone) SetTone(on bool) {
	tone.on.Store(on)
}

// Playing returns true if the tone is on.
func (tone *Tone) Playing() bool {
	return tone.on.Load()
}

// Read fills p with whole samples; silence while the tone is off.
func (tone *Tone) Read(p []byte) (n int, err error) {
	rate := float64(tone.SampleRate)
	if rate <= 0 {
		rate = TONE_SAMPLE_RATE
	}
	freq := tone.Frequency
	if freq <= 0 {
		freq = TONE_FREQUENCY
	}
	volume := tone.Volume
	if volume <= 0 {
		volume = TONE_VOLUME
	}

	on := tone.on.Load()
	step := freq / rate

	for n = 0; n+4 <= len(p); n += 4 {
		var sample float64
		if on {
			sample = volume
			if tone.phase >= 0.5 {
				sample = -volume
			}
			tone.phase += step
			tone.phase -= math.Floor(tone.phase)
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(float32(sample)))
	}

	return
}
