// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"slices"
	"sync"

	"github.com/ik5/gsaudio/stream"
)

// WaveBuffer is one buffer of recorded audio starting at frame X.
type WaveBuffer struct {
	X      uint64
	Buffer *stream.Buffer
}

// Wave is one bucket of recorded audio for one line.
type Wave struct {
	mu sync.Mutex

	line       int
	ts         Timestamp
	samplerate int
	bufferSize int
	format     stream.Format
	buffers    []*WaveBuffer
}

func NewWave(line int, ts Timestamp, samplerate, bufferSize int, format stream.Format) *Wave {
	return &Wave{
		line:       line,
		ts:         ts,
		samplerate: samplerate,
		bufferSize: bufferSize,
		format:     format,
	}
}

func (w *Wave) Line() int            { return w.line }
func (w *Wave) Timestamp() Timestamp { return w.ts }

// Presets returns samplerate, buffer size and format.
func (w *Wave) Presets() (samplerate, bufferSize int, format stream.Format) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.samplerate, w.bufferSize, w.format
}

// Buffer returns the buffer starting at frame x, allocating it if missing.
func (w *Wave) Buffer(x uint64) *WaveBuffer {
	w.mu.Lock()
	defer w.mu.Unlock()

	i, found := slices.BinarySearchFunc(w.buffers, x, func(b *WaveBuffer, x uint64) int {
		switch {
		case b.X < x:
			return -1
		case b.X > x:
			return 1
		default:
			return 0
		}
	})
	if found {
		return w.buffers[i]
	}

	b := &WaveBuffer{X: x, Buffer: stream.NewBuffer(w.format, w.bufferSize)}
	w.buffers = slices.Insert(w.buffers, i, b)

	return b
}

// Buffers returns a snapshot of the buffers ordered by X.
func (w *Wave) Buffers() []*WaveBuffer {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.buffers)
}
