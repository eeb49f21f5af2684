// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/ik5/gsaudio/audio"
	"github.com/ik5/gsaudio/formats/internal/pcm"
	"github.com/juju/errors"
)

type Decoder struct{}

// Decode reads big endian PCM AIFF data of 8, 16, 24 or 32 bits.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Annotate(err, "reading aiff data")
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	if f := dec.Format(); f == nil || f.NumChannels == 0 {
		return nil, ErrMissingFormat
	}

	return pcm.NewSource(dec, int(dec.BitDepth), 0), nil
}
