// SPDX-License-Identifier: EPL-2.0

package gsaudio

import (
	"fmt"
	"io"
	"os"

	"github.com/ik5/gsaudio/audio"
	"github.com/ik5/gsaudio/engine"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("gsaudio")

// LoadSample decodes r and installs it as the template signal of every
// audio channel of input pad. The sample is converted to the presets of
// the audio; a mono sample feeds all channels.
func LoadSample(a *engine.Audio, pad int, dec audio.Decoder, r io.Reader) error {
	if pad < 0 || pad >= a.Pads(engine.Input) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidPad, pad, a.Pads(engine.Input))
	}

	presets := a.Presets()
	res, err := audio.Open(dec, r, presets)
	if err != nil {
		return err
	}
	defer res.Close()

	frames := res.Info().Frames
	length := (frames + presets.BufferSize - 1) / presets.BufferSize
	sourceChannels := res.Presets().Channels

	for c := range a.AudioChannels() {
		ch := a.ChannelAt(engine.Input, pad, c)
		rec := ch.Recycling()
		if rec == nil {
			return fmt.Errorf("%w: input line %d", ErrNoRecycling, ch.Line())
		}

		if _, err := res.Seek(0, io.SeekStart); err != nil {
			return errors.Trace(err)
		}

		sig := engine.NewAudioSignal(presets, nil, length)
		for i := range length {
			if _, err := res.Read(sig.Stream().At(i), c%sourceChannels, presets.BufferSize); err != nil {
				return errors.Annotatef(err, "reading buffer %d", i)
			}
		}
		rec.SetTemplate(sig)
	}

	logger.Debugf("loaded %d frames into %s pad %d", frames, a.Name(), pad)

	return nil
}

// LoadSampleFile opens path with the decoder registered for its extension
// and loads it into input pad.
func LoadSampleFile(a *engine.Audio, pad int, reg *audio.Registry, path string) error {
	dec, err := reg.ForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Annotatef(err, "opening sample %q", path)
	}
	defer f.Close()

	return errors.Annotatef(LoadSample(a, pad, dec, f), "loading %q", path)
}
