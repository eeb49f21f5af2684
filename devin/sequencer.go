// SPDX-License-Identifier: EPL-2.0

package devin

import "sync"

// Sequencer is a MIDI input device.
type Sequencer interface {
	// LockBuffer and UnlockBuffer guard the slice returned by Buffer.
	LockBuffer()
	UnlockBuffer()
	// Buffer returns the raw bytes of the current block. The caller must
	// hold the buffer lock and must not keep the slice after unlocking.
	Buffer() []byte
	// Tic advances to the next block.
	Tic()
}

// Memory is a sequencer fed from memory, one chunk per block.
type Memory struct {
	name string

	mu      sync.Mutex
	current []byte
	queue   [][]byte

	bufMu sync.Mutex
}

func NewMemory(name string) *Memory {
	return &Memory{name: name}
}

func (m *Memory) Name() string { return m.name }

// Feed queues a chunk delivered by a later Tic. Empty chunks are kept so
// callers can schedule silent blocks.
func (m *Memory) Feed(chunk []byte) {
	m.mu.Lock()
	m.queue = append(m.queue, append([]byte(nil), chunk...))
	m.mu.Unlock()
}

// Pending returns the number of queued chunks.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.queue)
}

func (m *Memory) LockBuffer()   { m.bufMu.Lock() }
func (m *Memory) UnlockBuffer() { m.bufMu.Unlock() }

func (m *Memory) Buffer() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

// Tic makes the oldest queued chunk current, or clears the buffer when
// nothing is queued.
func (m *Memory) Tic() {
	m.bufMu.Lock()
	defer m.bufMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if len(m.queue) > 0 {
		m.current = m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
	}
}
