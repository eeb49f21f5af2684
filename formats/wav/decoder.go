// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/ik5/gsaudio/audio"
	"github.com/ik5/gsaudio/formats/internal/pcm"
	"github.com/juju/errors"
)

const formatPCM = 1

type Decoder struct{}

// Decode reads integer PCM WAV data of 8, 16, 24 or 32 bits. Readers that
// cannot seek are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Annotate(err, "reading wav data")
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, errors.Annotate(err, "reading wav header")
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	bias := 0
	switch dec.BitDepth {
	case 8:
		bias = 128
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Annotate(err, "seeking wav data")
	}

	return pcm.NewSource(dec, int(dec.BitDepth), bias), nil
}
