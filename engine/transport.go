// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"sync"

	"github.com/ik5/gsaudio/config"
)

// Transport is the sequencer clock. One tick is a sixteenth note and
// lasts Delay blocks.
type Transport struct {
	mu sync.Mutex

	bpm         float64
	delayFactor float64
	samplerate  int
	bufferSize  int

	loop               bool
	loopStart, loopEnd uint64

	noteOffset         uint64
	noteOffsetAbsolute uint64
	delayCounter       float64
	tickStart          bool
}

func NewTransport(cfg config.Config) *Transport {
	return &Transport{
		bpm:         cfg.Sequencer.BPM,
		delayFactor: cfg.Sequencer.DelayFactor,
		samplerate:  cfg.Soundcard.Samplerate,
		bufferSize:  cfg.Soundcard.BufferSize,
		loop:        cfg.Sequencer.Loop,
		loopStart:   cfg.Sequencer.LoopStart,
		loopEnd:     cfg.Sequencer.LoopEnd,
		noteOffset:  cfg.Sequencer.LoopStart * boolToUint(cfg.Sequencer.Loop),
		tickStart:   true,
	}
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

func (t *Transport) delay() float64 {
	if t.bpm <= 0 || t.bufferSize <= 0 || t.delayFactor <= 0 {
		return 1
	}

	return config.TickDelay(t.samplerate, t.bufferSize, t.bpm, t.delayFactor)
}

// Delay returns the number of blocks per tick.
func (t *Transport) Delay() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.delay()
}

// NoteOffset returns the current tick, wrapped into the loop.
func (t *Transport) NoteOffset() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.noteOffset
}

// NoteOffsetAbsolute returns the number of ticks since the start.
func (t *Transport) NoteOffsetAbsolute() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.noteOffsetAbsolute
}

// DelayCounter returns the number of blocks played in the current tick.
func (t *Transport) DelayCounter() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.delayCounter
}

// IsTickStart reports whether the current block is the first of its tick.
func (t *Transport) IsTickStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.tickStart
}

func (t *Transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.bpm
}

// SetBPM changes the tempo. A tempo whose tick would be shorter than one
// buffer is refused and the current tempo kept.
func (t *Transport) SetBPM(bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("%w: %v", config.ErrInvalidBPM, bpm)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if d := config.TickDelay(t.samplerate, t.bufferSize, bpm, t.delayFactor); d < 1 {
		return fmt.Errorf("%w: %.3f buffers per tick at %v bpm", config.ErrTickShorterThanBlock, d, bpm)
	}

	t.bpm = bpm

	return nil
}

// SetLoop sets the loop range [start, end). Loop is off when end <= start.
func (t *Transport) SetLoop(loop bool, start, end uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loop = loop && end > start
	t.loopStart, t.loopEnd = start, end
}

// Seek moves to tick offset.
func (t *Transport) Seek(offset uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.noteOffset = offset
	t.delayCounter = 0
	t.tickStart = true
}

// Tick advances the clock by one block.
func (t *Transport) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tickStart = false
	t.delayCounter++

	for delay := t.delay(); t.delayCounter >= delay; {
		t.delayCounter -= delay
		t.noteOffset++
		t.noteOffsetAbsolute++
		t.tickStart = true

		if t.loop && t.noteOffset >= t.loopEnd {
			t.noteOffset = t.loopStart
		}
	}
}
