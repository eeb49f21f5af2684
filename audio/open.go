// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/gsaudio/stream"
	jujuerrors "github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("gsaudio.audio")

const readChunk = 4096

// ReadAll drains src and returns its frames, one slice per channel.
func ReadAll(src Source) ([][]float64, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannel, channels)
	}

	out := make([][]float64, channels)
	buf := make([]float64, readChunk*channels)

	for {
		n, err := src.ReadSamples(buf)
		for i := range n - n%channels {
			out[i%channels] = append(out[i%channels], buf[i])
		}

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w", err)
		}
	}
}

// Open decodes r with dec into memory. The stream is resampled to
// presets.Samplerate and mixed down when presets.Channels is 1; any other
// channel count keeps the channels of the stream. Zero presets fields
// take the value of the stream or the stream package defaults.
func Open(dec Decoder, r io.Reader, presets stream.Presets) (*MemoryResource, error) {
	src, err := dec.Decode(r)
	if err != nil {
		return nil, jujuerrors.Annotate(err, "decoding audio")
	}
	defer src.Close()

	if presets.Samplerate == 0 {
		presets.Samplerate = src.SampleRate()
	}
	if presets.BufferSize == 0 {
		presets.BufferSize = readChunk
	}
	if presets.Format == stream.FormatUnknown {
		presets.Format = stream.DefaultFormat
	}

	var pipeline Source = src
	if src.SampleRate() != presets.Samplerate {
		pipeline = NewResampler(pipeline, presets.Samplerate)
	}
	if presets.Channels == 1 && src.Channels() > 1 {
		pipeline = NewMonoMixer(pipeline)
	}
	presets.Channels = pipeline.Channels()

	data, err := ReadAll(pipeline)
	if err != nil {
		return nil, jujuerrors.Annotate(err, "reading audio")
	}

	logger.Debugf("decoded %d frames at %d Hz from %d Hz, %d channels",
		len(data[0]), presets.Samplerate, src.SampleRate(), presets.Channels)

	return NewMemoryResource(presets, data)
}

// Create returns an empty resource that Flush and Close encode as WAV
// into w.
func Create(w io.WriteSeeker, presets stream.Presets) (*MemoryResource, error) {
	m, err := NewMemoryResource(presets, nil)
	if err != nil {
		return nil, err
	}
	m.w = w
	m.dirty = true

	return m, nil
}
