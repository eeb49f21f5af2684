// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync"

	"github.com/ik5/gsaudio/stream"
	"github.com/ik5/gsaudio/timeline"
)

// SignalFlags describe the role of an AudioSignal in its Recycling.
type SignalFlags uint32

const (
	// SignalTemplate is the pad's sample, cloned for every sub-run.
	SignalTemplate SignalFlags = 1 << iota
	// SignalMaster is the mix bus of a run on an output channel. Its
	// stream has one buffer that is reused every block.
	SignalMaster
	// SignalFeed is fed block by block while recording.
	SignalFeed
	// SignalStream is the played copy of a template.
	SignalStream
)

// AudioSignal is a stream of buffers with a playback cursor.
type AudioSignal struct {
	mu sync.Mutex

	flags     SignalFlags
	recycling *Recycling
	recallID  *RecallID
	presets   stream.Presets
	stream    *stream.Stream
	// current is the index of the buffer being played, -1 once exhausted.
	current   int
	loopStart int
	loopEnd   int
	note      *timeline.Note
}

// NewAudioSignal creates a signal of length buffers. Presets.Channels is
// ignored, a signal is always mono.
func NewAudioSignal(presets stream.Presets, id *RecallID, length int) *AudioSignal {
	presets.Channels = 1

	return &AudioSignal{
		recallID: id,
		presets:  presets,
		stream:   stream.NewStream(presets.Format, presets.BufferSize, length),
	}
}

func (s *AudioSignal) Flags() SignalFlags {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flags
}

func (s *AudioSignal) HasFlags(f SignalFlags) bool {
	return s.Flags()&f == f
}

func (s *AudioSignal) SetFlags(f SignalFlags) {
	s.mu.Lock()
	s.flags |= f
	s.mu.Unlock()
}

func (s *AudioSignal) UnsetFlags(f SignalFlags) {
	s.mu.Lock()
	s.flags &^= f
	s.mu.Unlock()
}

// RecallID returns the run owning the signal, nil for templates.
func (s *AudioSignal) RecallID() *RecallID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recallID
}

func (s *AudioSignal) Recycling() *Recycling {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recycling
}

func (s *AudioSignal) setRecycling(r *Recycling) {
	s.mu.Lock()
	s.recycling = r
	s.mu.Unlock()
}

func (s *AudioSignal) Presets() stream.Presets {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.presets
}

// Stream returns the underlying stream. It may only be written while the
// signal is not attached to a running Recycling.
func (s *AudioSignal) Stream() *stream.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stream
}

// Length returns the signal length in buffers.
func (s *AudioSignal) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stream.Len()
}

// Frames returns the signal length in frames.
func (s *AudioSignal) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stream.Frames()
}

// StreamCurrent returns the buffer being played, or nil once exhausted.
func (s *AudioSignal) StreamCurrent() *stream.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 {
		return nil
	}

	return s.stream.At(s.current)
}

// Position returns the current buffer index, -1 once exhausted.
func (s *AudioSignal) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

func (s *AudioSignal) Exhausted() bool {
	return s.Position() < 0
}

// Next advances the cursor by one buffer. Master signals never move.
// Past the end the cursor wraps to the loop start when a loop is set,
// otherwise the signal is exhausted.
func (s *AudioSignal) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flags&SignalMaster != 0 || s.current < 0 {
		return
	}

	s.current++

	size := s.stream.BufferSize()
	if s.loopEnd > s.loopStart && size > 0 && s.current*size >= s.loopEnd {
		s.current = s.loopStart / size
		return
	}

	if s.current >= s.stream.Len() {
		s.current = -1
	}
}

// Rewind moves the cursor back to the first buffer.
func (s *AudioSignal) Rewind() {
	s.mu.Lock()
	s.current = 0
	s.mu.Unlock()
}

// Loop returns the loop points in frames. They are equal when no loop is set.
func (s *AudioSignal) Loop() (start, end int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loopStart, s.loopEnd
}

func (s *AudioSignal) SetLoop(start, end int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := s.stream.Frames()
	start = min(max(start, 0), frames)
	end = min(max(end, start), frames)
	s.loopStart, s.loopEnd = start, end
}

// Note returns the note played by a sub-run signal.
func (s *AudioSignal) Note() *timeline.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.note
}

func (s *AudioSignal) SetNote(n *timeline.Note) {
	s.mu.Lock()
	s.note = n
	s.mu.Unlock()
}

// Resize changes the signal length in buffers.
func (s *AudioSignal) Resize(length int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stream.Resize(length)
	if s.current >= s.stream.Len() {
		s.current = -1
	}
}

// SetPresets reallocates every buffer for the new format and buffer size.
// The cursor keeps its position in frames.
func (s *AudioSignal) SetPresets(p stream.Presets) error {
	p.Channels = 1

	s.mu.Lock()
	defer s.mu.Unlock()

	oldSize := s.stream.BufferSize()
	if err := s.stream.Realloc(p.Format, p.BufferSize); err != nil {
		return err
	}

	if s.flags&SignalMaster != 0 {
		s.stream.Resize(1)
	}

	if s.current > 0 && oldSize > 0 {
		s.current = s.current * oldSize / p.BufferSize
		if s.current >= s.stream.Len() {
			s.current = -1
		}
	}

	s.presets = p

	return nil
}

// Duplicate returns a playing copy bound to id. The template flag is not
// copied.
func (s *AudioSignal) Duplicate(id *RecallID) *AudioSignal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &AudioSignal{
		flags:     (s.flags &^ (SignalTemplate | SignalMaster)) | SignalStream,
		recallID:  id,
		presets:   s.presets,
		stream:    s.stream.Clone(),
		loopStart: s.loopStart,
		loopEnd:   s.loopEnd,
	}
}
