// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts the go-audio integer decoders to audio.Source.
package pcm

import (
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/gsaudio/utils"
)

// Reader is the part of the go-audio wav and aiff decoders a Source uses.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source normalizes the integer samples of a Reader.
type Source struct {
	dec      Reader
	rate     int
	channels int
	bitDepth int
	bias     int
	buf      *goaudio.IntBuffer
}

// NewSource reads samples of bitDepth bits from dec. bias is subtracted
// from every sample, as 8 bit WAV data is unsigned.
func NewSource(dec Reader, bitDepth, bias int) *Source {
	f := dec.Format()

	return &Source{
		dec:      dec,
		rate:     f.SampleRate,
		channels: f.NumChannels,
		bitDepth: bitDepth,
		bias:     bias,
	}
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BitDepth() int   { return s.bitDepth }
func (s *Source) Close() error    { return nil }

func (s *Source) ReadSamples(dst []float64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.buf == nil || cap(s.buf.Data) < len(dst) {
		s.buf = &goaudio.IntBuffer{Data: make([]int, len(dst)), Format: s.dec.Format()}
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	for i, v := range s.buf.Data[:n] {
		dst[i] = utils.IntToFloat(v-s.bias, s.bitDepth)
	}

	switch {
	case err != nil:
		return n, err
	case n < len(dst):
		return n, io.EOF
	default:
		return n, nil
	}
}
