// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/gsaudio/stream"
	"github.com/ik5/gsaudio/utils"
	"github.com/juju/errors"
)

// Info describes the frames held by a resource.
type Info struct {
	Frames    int
	LoopStart int
	LoopEnd   int
}

// Resource is random access PCM storage. Read and Write work on one audio
// channel at the current offset and advance it; a caller reading several
// channels seeks back between them.
type Resource interface {
	Info() Info
	Presets() stream.Presets
	SetPresets(p stream.Presets) error
	Read(dst *stream.Buffer, channel, frames int) (int, error)
	Write(src *stream.Buffer, channel, frames int) (int, error)
	// Seek follows io.Seeker with offsets in frames.
	Seek(offset int64, whence int) (int64, error)
	Flush() error
	Close() error
}

// MemoryResource keeps every frame in memory, one slice per channel. A
// resource created with a writer encodes itself as WAV on Flush.
type MemoryResource struct {
	mu sync.Mutex

	presets   stream.Presets
	data      [][]float64
	offset    int
	loopStart int
	loopEnd   int

	w      io.WriteSeeker
	dirty  bool
	closed bool
}

// NewMemoryResource wraps data, one slice per channel of presets.
func NewMemoryResource(presets stream.Presets, data [][]float64) (*MemoryResource, error) {
	if !presets.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPresets, presets)
	}

	m := &MemoryResource{presets: presets, data: make([][]float64, presets.Channels)}
	frames := 0
	for _, ch := range data {
		frames = max(frames, len(ch))
	}
	for c := range m.data {
		m.data[c] = make([]float64, frames)
		if c < len(data) {
			copy(m.data[c], data[c])
		}
	}

	return m, nil
}

func (m *MemoryResource) frames() int {
	if len(m.data) == 0 {
		return 0
	}

	return len(m.data[0])
}

func (m *MemoryResource) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Info{Frames: m.frames(), LoopStart: m.loopStart, LoopEnd: m.loopEnd}
}

// SetLoop sets the loop points in frames.
func (m *MemoryResource) SetLoop(start, end int) {
	m.mu.Lock()
	m.loopStart, m.loopEnd = start, end
	m.mu.Unlock()
}

func (m *MemoryResource) Presets() stream.Presets {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.presets
}

// SetPresets converts the stored frames to p. A new sample rate resamples
// the data and scales the offset and loop points; a new channel count
// drops channels or adds silent ones.
func (m *MemoryResource) SetPresets(p stream.Presets) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidPresets, p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Samplerate != m.presets.Samplerate {
		ratio := float64(m.presets.Samplerate) / float64(p.Samplerate)
		frames := int(math.Ceil(float64(m.frames()) / ratio))
		for c, src := range m.data {
			dst := make([]float64, frames)
			for i := range dst {
				dst[i] = utils.SampleAt(src, float64(i)*ratio)
			}
			m.data[c] = dst
		}

		scale := func(v int) int { return int(math.Round(float64(v) / ratio)) }
		m.offset, m.loopStart, m.loopEnd = scale(m.offset), scale(m.loopStart), scale(m.loopEnd)
	}

	if p.Channels != len(m.data) {
		data := make([][]float64, p.Channels)
		for c := range data {
			if c < len(m.data) {
				data[c] = m.data[c]
			} else {
				data[c] = make([]float64, m.frames())
			}
		}
		m.data = data
	}

	m.presets = p
	m.dirty = true

	return nil
}

func (m *MemoryResource) check(channel int) error {
	if m.closed {
		return ErrClosed
	}
	if channel < 0 || channel >= len(m.data) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidChannel, channel, len(m.data))
	}

	return nil
}

// Read copies up to frames samples of channel into dst, converting to its
// format. It returns io.EOF at the end of the data.
func (m *MemoryResource) Read(dst *stream.Buffer, channel, frames int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(channel); err != nil {
		return 0, err
	}

	n := max(min(frames, dst.Len(), m.frames()-m.offset), 0)
	if n == 0 {
		if frames > 0 {
			return 0, io.EOF
		}
		return 0, nil
	}

	dst.WriteFloat64(m.data[channel][m.offset:m.offset+n], 0)
	m.offset += n

	return n, nil
}

// Write stores up to frames samples of src into channel, growing every
// channel as needed.
func (m *MemoryResource) Write(src *stream.Buffer, channel, frames int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(channel); err != nil {
		return 0, err
	}
	if m.w == nil {
		return 0, ErrReadOnly
	}

	n := max(min(frames, src.Len()), 0)
	if end := m.offset + n; end > m.frames() {
		for c := range m.data {
			m.data[c] = append(m.data[c], make([]float64, end-len(m.data[c]))...)
		}
	}

	src.ReadFloat64(m.data[channel][m.offset:m.offset+n], 0)
	m.offset += n
	m.dirty = true

	return n, nil
}

// Seek moves the offset. Offsets past the end are allowed; reads there
// return io.EOF and writes fill the gap with silence.
func (m *MemoryResource) Seek(offset int64, whence int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(m.offset)
	case io.SeekEnd:
		base = int64(m.frames())
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidWhence, whence)
	}

	next := base + offset
	if next < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeOffset, next)
	}
	m.offset = int(next)

	return next, nil
}

// Flush encodes the data as WAV into the writer of a created resource.
// Float formats are written as 32 bit PCM.
func (m *MemoryResource) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.flush()
}

func (m *MemoryResource) flush() error {
	if m.w == nil || !m.dirty {
		return nil
	}

	bitDepth := m.presets.Format.BitDepth()
	if !m.presets.Format.IsInteger() {
		bitDepth = 32
	}

	if _, err := m.w.Seek(0, io.SeekStart); err != nil {
		return errors.Annotate(err, "rewinding wav output")
	}

	channels := len(m.data)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: m.presets.Samplerate},
		Data:           make([]int, m.frames()*channels),
		SourceBitDepth: bitDepth,
	}
	for c, samples := range m.data {
		for i, v := range samples {
			buf.Data[i*channels+c] = utils.FloatToInt(v, bitDepth)
		}
	}

	enc := wav.NewEncoder(m.w, m.presets.Samplerate, bitDepth, channels, 1)
	if err := enc.Write(buf); err != nil {
		return errors.Annotate(err, "encoding wav")
	}
	if err := enc.Close(); err != nil {
		return errors.Annotate(err, "closing wav encoder")
	}

	m.dirty = false

	return nil
}

// Close flushes pending writes. Further calls fail with ErrClosed.
func (m *MemoryResource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	err := m.flush()
	m.closed = true

	return err
}
