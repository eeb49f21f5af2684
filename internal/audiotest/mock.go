// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides generated PCM sources for tests.
package audiotest

import (
	"io"
	"math"
)

// Source generates frames from a waveform. It satisfies audio.Source
// without importing it.
type Source struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	waveform   func(frame, channel int) float64

	Closed bool
}

// NewSource returns a source of frames frames.
func NewSource(sampleRate, channels, frames int, waveform func(frame, channel int) float64) *Source {
	return &Source{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

func Silence(sampleRate, channels, frames int) *Source {
	return Constant(sampleRate, channels, frames, 0)
}

func Constant(sampleRate, channels, frames int, v float64) *Source {
	return NewSource(sampleRate, channels, frames, func(int, int) float64 { return v })
}

// Sine is a sine of freq Hz on every channel.
func Sine(sampleRate, channels, frames int, freq float64) *Source {
	return NewSource(sampleRate, channels, frames, func(frame, _ int) float64 {
		return math.Sin(2 * math.Pi * freq * float64(frame) / float64(sampleRate))
	})
}

// Ramp rises linearly from 0 to 1 over the source; channel c is scaled by
// 1/(c+1).
func Ramp(sampleRate, channels, frames int) *Source {
	return NewSource(sampleRate, channels, frames, func(frame, c int) float64 {
		return float64(frame) / float64(max(frames-1, 1)) / float64(c+1)
	})
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }

func (s *Source) Close() error {
	s.Closed = true
	return nil
}

// Reset rewinds the source.
func (s *Source) Reset() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float64) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for c := range s.channels {
			dst[f*s.channels+c] = s.waveform(s.pos+f, c)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}

	return n * s.channels, nil
}
