// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/gsaudio/audio"
	"github.com/juju/errors"
)

// go-mp3 always produces 16 bit little endian stereo.
const (
	channels       = 2
	bytesPerSample = 2
)

type pcmReader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec     pcmReader
	buf     []byte
	pending int
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	want := len(dst) * bytesPerSample
	if cap(s.buf) < want {
		buf := make([]byte, want)
		copy(buf, s.buf[:s.pending])
		s.buf = buf
	}
	s.buf = s.buf[:want]

	n, err := io.ReadAtLeast(s.dec, s.buf[s.pending:], min(bytesPerSample, want-s.pending))
	n += s.pending

	samples := n / bytesPerSample
	for i := range samples {
		dst[i] = float64(int16(binary.LittleEndian.Uint16(s.buf[i*bytesPerSample:]))) / 32768
	}

	// An odd trailing byte waits for the next read.
	s.pending = copy(s.buf, s.buf[samples*bytesPerSample:n])

	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return samples, io.EOF
	case err != nil:
		return samples, err
	default:
		return samples, nil
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, errors.Annotate(err, "opening mp3 stream")
	}

	return &source{dec: dec}, nil
}
