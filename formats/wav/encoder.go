// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/gsaudio/audio"
	"github.com/ik5/gsaudio/utils"
	jujuerrors "github.com/juju/errors"
)

const encodeChunk = 4096

// Encode drains src into w as integer PCM WAV of bitDepth bits. src is not
// closed.
func Encode(w io.WriteSeeker, src audio.Source, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	channels := src.Channels()
	enc := wav.NewEncoder(w, src.SampleRate(), bitDepth, channels, formatPCM)
	samples := make([]float64, encodeChunk*channels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: src.SampleRate()},
		SourceBitDepth: bitDepth,
	}

	for {
		n, err := src.ReadSamples(samples)
		if n > 0 {
			buf.Data = buf.Data[:0]
			for _, v := range samples[:n] {
				buf.Data = append(buf.Data, utils.FloatToInt(v, bitDepth))
			}
			if werr := enc.Write(buf); werr != nil {
				return jujuerrors.Annotate(werr, "encoding wav")
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return jujuerrors.Annotate(err, "reading source")
		}
	}

	return jujuerrors.Annotate(enc.Close(), "closing wav encoder")
}
