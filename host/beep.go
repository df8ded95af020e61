//go:build !headless

package host

import (
	"time"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a Tone through the host audio device.
type Beeper struct {
	*Tone

	ctx    *oto.Context
	player *oto.Player
}

// NewBeeper opens the audio device, and starts the (silent) tone.
func NewBeeper(sampleRate int) (beeper *Beeper, err error) {
	if sampleRate <= 0 {
		sampleRate = TONE_SAMPLE_RATE
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return
	}
	<-ready

	beeper = &Beeper{
		Tone: &Tone{SampleRate: sampleRate},
		ctx:  ctx,
	}
	beeper.player = ctx.NewPlayer(beeper.Tone)
	beeper.player.Play()

	return
}

// Close stops playback.
func (beeper *Beeper) Close() (err error) {
	beeper.SetTone(false)
	err = beeper.player.Close()

	return
}
