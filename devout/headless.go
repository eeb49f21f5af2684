// SPDX-License-Identifier: EPL-2.0

package devout

import (
	"fmt"
	"sync"

	"github.com/ik5/gsaudio/stream"
)

// Headless is a soundcard keeping every played block in memory.
type Headless struct {
	presets stream.Presets

	bufMu  sync.Mutex
	buffer *stream.Buffer

	mu     sync.Mutex
	blocks []*stream.Buffer
	closed bool
}

func NewHeadless(presets stream.Presets) (*Headless, error) {
	if !presets.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPresets, presets)
	}

	return &Headless{
		presets: presets,
		buffer:  stream.NewBuffer(presets.Format, presets.BufferSize*presets.Channels),
	}, nil
}

func (h *Headless) Presets() stream.Presets { return h.presets }
func (h *Headless) LockBuffer()             { h.bufMu.Lock() }
func (h *Headless) UnlockBuffer()           { h.bufMu.Unlock() }
func (h *Headless) Buffer() *stream.Buffer  { return h.buffer }

// Play stores a copy of the buffer and clears it.
func (h *Headless) Play() error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return ErrClosed
	}

	h.bufMu.Lock()
	block := h.buffer.Clone()
	h.buffer.Clear()
	h.bufMu.Unlock()

	h.mu.Lock()
	h.blocks = append(h.blocks, block)
	h.mu.Unlock()

	return nil
}

// Blocks returns the played blocks.
func (h *Headless) Blocks() []*stream.Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]*stream.Buffer(nil), h.blocks...)
}

// Reset drops the played blocks.
func (h *Headless) Reset() {
	h.mu.Lock()
	h.blocks = nil
	h.mu.Unlock()
}

func (h *Headless) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	return nil
}
