// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/gsaudio/utils"
)

// lowPassAlpha is the coefficient of the one-pole filter run before
// downsampling.
const lowPassAlpha = 0.5

// Resampler converts src to another sample rate with cubic interpolation,
// preserving the channel count.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64
	channels int

	// window holds source frames cur-1 to cur+2. Past the end of the
	// source the last frame is repeated.
	window [4][]float64
	cur    int
	known  int
	pos    float64

	started bool
	eof     bool
	frame   []float64

	lowPass bool
	state   []float64
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		frame:    make([]float64, channels),
		lowPass:  ratio > 1,
		state:    make([]float64, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float64, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// next reads one source frame into r.frame and reports false once the
// source is exhausted.
func (r *Resampler) next() (bool, error) {
	for !r.eof {
		n, err := r.src.ReadSamples(r.frame)
		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}

		if n < r.channels {
			continue
		}

		if r.lowPass {
			if r.known == 0 {
				copy(r.state, r.frame)
			}
			for c, v := range r.frame {
				r.state[c] = lowPassAlpha*v + (1-lowPassAlpha)*r.state[c]
				r.frame[c] = r.state[c]
			}
		}
		r.known++

		return true, nil
	}

	return false, nil
}

func (r *Resampler) start() error {
	r.started = true

	ok, err := r.next()
	if err != nil || !ok {
		return err
	}

	for i := range r.window {
		copy(r.window[i], r.frame)
	}

	for i := 2; i < 4; i++ {
		ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		for j := i; j < 4; j++ {
			copy(r.window[j], r.frame)
		}
	}

	return nil
}

// advance moves the window one source frame forward.
func (r *Resampler) advance() error {
	oldest := r.window[0]
	copy(r.window[:3], r.window[1:])
	r.window[3] = oldest
	r.cur++

	ok, err := r.next()
	if err != nil {
		return err
	}

	if ok {
		copy(r.window[3], r.frame)
	} else {
		copy(r.window[3], r.window[2])
	}

	return nil
}

// ReadSamples produces samples at the destination rate. len(dst) must be
// a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float64) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.started {
		if err := r.start(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written < len(dst)/r.channels {
		for r.pos >= 1 {
			r.pos--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if r.cur >= r.known {
			return written * r.channels, io.EOF
		}

		out := dst[written*r.channels:]
		for c := range r.channels {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], r.pos)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
