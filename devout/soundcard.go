// SPDX-License-Identifier: EPL-2.0

package devout

import (
	"fmt"

	"github.com/juju/loggo"

	"github.com/ik5/gsaudio/config"
	"github.com/ik5/gsaudio/stream"
)

var logger = loggo.GetLogger("gsaudio.devout")

// Soundcard is a PCM output device.
type Soundcard interface {
	Presets() stream.Presets
	// LockBuffer and UnlockBuffer guard the buffer returned by Buffer.
	LockBuffer()
	UnlockBuffer()
	// Buffer returns the interleaved output buffer of
	// BufferSize * Channels samples.
	Buffer() *stream.Buffer
	// Play hands the buffer to the device and clears it.
	Play() error
	Close() error
}

// Open creates the soundcard selected by cfg.
func Open(cfg config.Config) (Soundcard, error) {
	presets := stream.Presets{
		Channels:   cfg.Soundcard.PCMChannels,
		Samplerate: cfg.Soundcard.Samplerate,
		BufferSize: cfg.Soundcard.BufferSize,
		Format:     cfg.SampleFormat(),
	}

	var (
		card Soundcard
		err  error
	)

	switch cfg.Soundcard.Backend {
	case config.BackendHeadless:
		card, err = NewHeadless(presets)
	case config.BackendOto:
		card, err = NewOto(presets)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Soundcard.Backend)
	}

	if err != nil {
		return nil, err
	}

	return card, nil
}

// Interleave writes frames of a mono buffer into channel ch of an
// interleaved buffer with channels channels, mixing onto what is there.
func Interleave(dst *stream.Buffer, channels, ch int, src *stream.Buffer) {
	if channels <= 0 || ch < 0 || ch >= channels {
		return
	}

	frames := min(src.Len(), dst.Len()/channels)
	for i := range frames {
		j := i*channels + ch
		dst.SetSample(j, dst.Sample(j)+src.Sample(i))
	}
}
