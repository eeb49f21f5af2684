// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"slices"
	"sync"
)

// Notation is one bucket of notes for one audio channel line.
type Notation struct {
	mu sync.Mutex

	line  int
	ts    Timestamp
	notes []*Note
}

func NewNotation(line int, ts Timestamp) *Notation {
	return &Notation{line: line, ts: ts}
}

func (n *Notation) Line() int            { return n.line }
func (n *Notation) Timestamp() Timestamp { return n.ts }

func compareNotes(a, b *Note) int {
	ax0, ay := a.X0(), a.Y()
	bx0, by := b.X0(), b.Y()

	switch {
	case ax0 < bx0:
		return -1
	case ax0 > bx0:
		return 1
	case ay < by:
		return -1
	case ay > by:
		return 1
	default:
		return 0
	}
}

// AddNote inserts note ordered by x0, then y. With replace set an existing
// note at the same (x0, y) is replaced, otherwise both are kept.
func (n *Notation) AddNote(note *Note, replace bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	i, found := slices.BinarySearchFunc(n.notes, note, compareNotes)
	if found && replace {
		n.notes[i] = note
		return
	}

	n.notes = slices.Insert(n.notes, i, note)
}

// RemoveNote removes note and reports whether it was present.
func (n *Notation) RemoveNote(note *Note) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.Index(n.notes, note)
	if i < 0 {
		return false
	}

	n.notes = slices.Delete(n.notes, i, i+1)

	return true
}

// RemoveNoteAt removes the first note starting at x0 on pad y.
func (n *Notation) RemoveNoteAt(x0 uint64, y uint32) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, note := range n.notes {
		if note.X0() == x0 && note.Y() == y {
			n.notes = slices.Delete(n.notes, i, i+1)
			return true
		}
	}

	return false
}

// Notes returns a snapshot of the notes.
func (n *Notation) Notes() []*Note {
	n.mu.Lock()
	defer n.mu.Unlock()

	return slices.Clone(n.notes)
}

func (n *Notation) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.notes)
}

// StartingAt returns the notes whose x0 equals offset.
func (n *Notation) StartingAt(offset uint64) []*Note {
	var out []*Note
	for _, note := range n.Notes() {
		if note.X0() == offset {
			out = append(out, note)
		}
	}

	return out
}

// Overlapping returns the notes sounding at some tick of [x0, x1).
func (n *Notation) Overlapping(x0, x1 uint64) []*Note {
	var out []*Note
	for _, note := range n.Notes() {
		nx0, nx1 := note.Range()
		if nx0 < x1 && nx1 > x0 {
			out = append(out, note)
		}
	}

	return out
}
