// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"slices"
	"sync"

	"github.com/ik5/gsaudio/stream"
)

// Channel is one line of an Audio: one pad by one audio channel, in one
// direction. Channels are linked to their neighbours in the grid.
type Channel struct {
	mu sync.Mutex

	audio     *Audio
	direction Direction

	pad, audioChannel, line int

	presets stream.Presets

	next, prev       *Channel
	nextPad, prevPad *Channel
	link             *Channel

	recycling *Recycling
	patterns  []*Pattern

	play   []Recall
	recall []Recall
}

func newChannel(a *Audio, dir Direction, presets stream.Presets, withRecycling bool) *Channel {
	presets.Channels = 1

	ch := &Channel{audio: a, direction: dir, presets: presets}
	if withRecycling {
		ch.recycling = NewRecycling(ch, presets)
	}

	return ch
}

func (ch *Channel) Audio() *Audio           { return ch.audio }
func (ch *Channel) Direction() Direction    { return ch.direction }
func (ch *Channel) IsInput() bool           { return ch.direction == Input }
func (ch *Channel) IsOutput() bool          { return ch.direction == Output }
func (ch *Channel) Pad() int                { return ch.locked(func() int { return ch.pad }) }
func (ch *Channel) AudioChannel() int       { return ch.locked(func() int { return ch.audioChannel }) }
func (ch *Channel) Line() int               { return ch.locked(func() int { return ch.line }) }
func (ch *Channel) Next() *Channel          { return ch.neighbour(func() *Channel { return ch.next }) }
func (ch *Channel) Prev() *Channel          { return ch.neighbour(func() *Channel { return ch.prev }) }
func (ch *Channel) NextPad() *Channel       { return ch.neighbour(func() *Channel { return ch.nextPad }) }
func (ch *Channel) PrevPad() *Channel       { return ch.neighbour(func() *Channel { return ch.prevPad }) }
func (ch *Channel) Link() *Channel          { return ch.neighbour(func() *Channel { return ch.link }) }
func (ch *Channel) Presets() stream.Presets { ch.mu.Lock(); defer ch.mu.Unlock(); return ch.presets }

func (ch *Channel) locked(fn func() int) int {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return fn()
}

func (ch *Channel) neighbour(fn func() *Channel) *Channel {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return fn()
}

// SetLink connects ch to a channel of the opposite direction, usually of
// another audio. Both ends are updated. A nil link disconnects.
func (ch *Channel) SetLink(other *Channel) {
	ch.mu.Lock()
	old := ch.link
	ch.link = other
	ch.mu.Unlock()

	if old != nil && old != other {
		old.mu.Lock()
		if old.link == ch {
			old.link = nil
		}
		old.mu.Unlock()
	}

	if other != nil {
		other.mu.Lock()
		other.link = ch
		other.mu.Unlock()
	}
}

// Recycling returns the channel's recycling, or the one of its link when
// the channel has none.
func (ch *Channel) Recycling() *Recycling {
	ch.mu.Lock()
	r, link := ch.recycling, ch.link
	ch.mu.Unlock()

	if r == nil && link != nil {
		link.mu.Lock()
		r = link.recycling
		link.mu.Unlock()
	}

	return r
}

// OwnRecycling returns the recycling owned by ch, or nil.
func (ch *Channel) OwnRecycling() *Recycling {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return ch.recycling
}

func (ch *Channel) Patterns() []*Pattern {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return slices.Clone(ch.patterns)
}

func (ch *Channel) AddPattern(p *Pattern) {
	ch.mu.Lock()
	ch.patterns = append(ch.patterns, p)
	ch.mu.Unlock()
}

func (ch *Channel) list(play bool) *[]Recall {
	if play {
		return &ch.play
	}

	return &ch.recall
}

// Recalls returns a snapshot of the play or recall list.
func (ch *Channel) Recalls(play bool) []Recall {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return slices.Clone(*ch.list(play))
}

// AddRecall appends r and binds it to ch.
func (ch *Channel) AddRecall(r Recall, play bool) {
	ch.InsertRecall(r, play, -1)
}

// InsertRecall inserts r at position, or appends it when position is out
// of range.
func (ch *Channel) InsertRecall(r Recall, play bool, position int) {
	if r.Base().Channel() != ch {
		r.Base().SetChannel(ch)
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	l := ch.list(play)
	if slices.Contains(*l, r) {
		return
	}

	if position < 0 || position > len(*l) {
		position = len(*l)
	}
	*l = slices.Insert(*l, position, r)
}

func (ch *Channel) RemoveRecall(r Recall, play bool) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	l := ch.list(play)
	i := slices.Index(*l, r)
	if i < 0 {
		return false
	}
	*l = slices.Delete(*l, i, i+1)

	return true
}

// SetPresets changes samplerate, format and buffer size of the channel,
// reallocates every signal of its recycling and notifies the recalls of
// a buffer size change.
func (ch *Channel) SetPresets(p stream.Presets) error {
	p.Channels = 1

	ch.mu.Lock()
	oldSize := ch.presets.BufferSize
	ch.presets = p
	rec := ch.recycling
	recalls := append(slices.Clone(ch.play), ch.recall...)
	ch.mu.Unlock()

	if rec != nil {
		if err := rec.SetPresets(p); err != nil {
			return err
		}
	}

	if oldSize != p.BufferSize {
		for _, r := range recalls {
			notifyBufferSize(r, p.BufferSize)
		}
	}

	return nil
}

// SetBufferSize changes the buffer size only.
func (ch *Channel) SetBufferSize(size int) error {
	p := ch.Presets()
	p.BufferSize = size

	return ch.SetPresets(p)
}

func notifyBufferSize(r Recall, size int) {
	if l, ok := r.(BufferSizeListener); ok {
		l.BufferSizeChanged(size)
	}

	for _, c := range r.Base().Children() {
		notifyBufferSize(c, size)
	}
}

// free ends the recalls of a removed channel.
func (ch *Channel) free() {
	ch.mu.Lock()
	recalls := append(slices.Clone(ch.play), ch.recall...)
	ch.play, ch.recall = nil, nil
	ch.next, ch.prev, ch.nextPad, ch.prevPad = nil, nil, nil, nil
	ch.mu.Unlock()

	ch.SetLink(nil)

	for _, r := range recalls {
		r.Base().Done()
		r.Base().Free()
	}
}
