// SPDX-License-Identifier: EPL-2.0

package gsaudio

import (
	"context"
	"fmt"
	"io"

	"github.com/ik5/gsaudio/audio"
	"github.com/ik5/gsaudio/devout"
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/stream"
	"github.com/juju/errors"
)

// Render plays a in scope for blocks blocks on the headless soundcard of
// e and encodes the output as WAV into w. The run is stopped afterwards.
func Render(ctx context.Context, e *engine.Engine, a *engine.Audio, scope engine.SoundScope, blocks int, w io.WriteSeeker) error {
	card, ok := e.Soundcard().(*devout.Headless)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrNotHeadless, e.Soundcard())
	}
	card.Reset()

	id, err := e.Start(a, scope)
	if err != nil {
		return errors.Annotatef(err, "starting %s", a.Name())
	}

	runErr := e.RunBlocks(ctx, blocks)
	if err := e.Stop(id); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return errors.Annotate(runErr, "rendering")
	}

	presets := card.Presets()
	res, err := audio.Create(w, presets)
	if err != nil {
		return err
	}

	channel := stream.NewBuffer(stream.FormatDouble, presets.BufferSize)
	interleaved := make([]float64, presets.BufferSize*presets.Channels)

	for i, block := range card.Blocks() {
		n := block.ReadFloat64(interleaved, 0) / presets.Channels

		for c := range presets.Channels {
			for f := range n {
				channel.SetSample(f, interleaved[f*presets.Channels+c])
			}

			if _, err := res.Seek(int64(i*presets.BufferSize), io.SeekStart); err != nil {
				return errors.Trace(err)
			}
			if _, err := res.Write(channel, c, n); err != nil {
				return errors.Annotatef(err, "writing block %d", i)
			}
		}
	}

	logger.Infof("rendered %d blocks of %s", len(card.Blocks()), a.Name())

	return errors.Annotate(res.Close(), "closing output")
}
