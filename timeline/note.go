// SPDX-License-Identifier: EPL-2.0

package timeline

import "sync"

// NoteFlags mark how a note is played.
type NoteFlags uint32

const (
	// NoteEnvelope applies the note's envelope during playback.
	NoteEnvelope NoteFlags = 1 << iota
	// NoteFeed marks a note that is still being recorded.
	NoteFeed
	// NoteRuntime marks a note created during playback.
	NoteRuntime
)

// Envelope is the shape of a note. Each point's real part is the segment
// length as a fraction of the note, the imaginary part is the level
// reached at its end. Ratio's imaginary part scales the whole envelope.
type Envelope struct {
	Attack  complex128
	Decay   complex128
	Sustain complex128
	Release complex128
	Ratio   complex128
}

// DefaultEnvelope is flat at full level.
var DefaultEnvelope = Envelope{
	Attack:  complex(0.25, 1.0),
	Decay:   complex(0.25, 1.0),
	Sustain: complex(0.25, 1.0),
	Release: complex(0.25, 1.0),
	Ratio:   complex(0.0, 1.0),
}

// Note is a pitched event spanning ticks [x0, x1) at pad y.
type Note struct {
	mu sync.Mutex

	flags    NoteFlags
	x0, x1   uint64
	y        uint32
	velocity uint8
	envelope Envelope
}

func NewNote(x0, x1 uint64, y uint32) *Note {
	return &Note{
		x0:       x0,
		x1:       x1,
		y:        y,
		velocity: 127,
		envelope: DefaultEnvelope,
	}
}

func (n *Note) X0() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.x0
}

func (n *Note) X1() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.x1
}

// Range returns x0 and x1 under one lock.
func (n *Note) Range() (x0, x1 uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.x0, n.x1
}

// SetX1 moves the end of the note. An end before x0+1 is raised to x0+1.
func (n *Note) SetX1(x1 uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.x1 = max(x1, n.x0+1)
}

func (n *Note) Y() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.y
}

func (n *Note) Velocity() uint8 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.velocity
}

func (n *Note) SetVelocity(v uint8) {
	n.mu.Lock()
	n.velocity = v
	n.mu.Unlock()
}

func (n *Note) Flags() NoteFlags {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.flags
}

func (n *Note) SetFlags(f NoteFlags) {
	n.mu.Lock()
	n.flags |= f
	n.mu.Unlock()
}

func (n *Note) UnsetFlags(f NoteFlags) {
	n.mu.Lock()
	n.flags &^= f
	n.mu.Unlock()
}

func (n *Note) HasFlags(f NoteFlags) bool {
	return n.Flags()&f == f
}

func (n *Note) Envelope() Envelope {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.envelope
}

// SetEnvelope replaces the envelope and turns on NoteEnvelope.
func (n *Note) SetEnvelope(e Envelope) {
	n.mu.Lock()
	n.envelope = e
	n.flags |= NoteEnvelope
	n.mu.Unlock()
}

// Clone returns an independent copy.
func (n *Note) Clone() *Note {
	n.mu.Lock()
	defer n.mu.Unlock()

	return &Note{
		flags:    n.flags,
		x0:       n.x0,
		x1:       n.x1,
		y:        n.y,
		velocity: n.velocity,
		envelope: n.envelope,
	}
}
