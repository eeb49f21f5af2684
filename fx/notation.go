// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"github.com/ik5/gsaudio/engine"
)

const (
	NotationName = "ags-fx-notation"

	notationChannelXML    = "ags-fx-notation-channel"
	notationChannelRunXML = "ags-fx-notation-channel-processor"
)

// NotationChannel plays the notation of its channel's pad.
type NotationChannel struct {
	engine.RecallChannel

	window uint64
}

// NewNotationChannel creates the static recall. window is the notation
// bucket size in ticks.
func NewNotationChannel(window uint64) *NotationChannel {
	n := &NotationChannel{window: window}
	n.Init(n, NotationName, notationChannelXML)

	return n
}

// NotationChannelRun starts one sub-run for every note of its pad that
// begins at the current tick.
type NotationChannelRun struct {
	engine.RecallChannelRun

	static *NotationChannel
}

func newNotationChannelRun(static *NotationChannel) *NotationChannelRun {
	r := &NotationChannelRun{static: static}
	r.Init(r, NotationName, notationChannelRunXML)
	r.AddDependency(DelayName)

	return r
}

func (r *NotationChannelRun) Duplicate() engine.Recall { return newNotationChannelRun(r.static) }

func (r *NotationChannelRun) RunPre() {
	audio, id := r.Audio(), r.RecallID()
	if audio == nil || id == nil || !playsNotation(audio, id) {
		return
	}

	delay := delayOf(&r.RecallBase)
	if delay == nil || !delay.IsTickStart() {
		return
	}

	ch := r.Channel()
	pad := uint32(ch.Pad())
	offset := delay.NoteOffset()

	for _, note := range audio.NotesStartingAt(ch.AudioChannel(), offset, r.static.window) {
		if note.Y() != pad {
			continue
		}

		if x0, x1 := note.Range(); x1 <= x0 {
			logger.Tracef("%v: skipping empty note at %d", r, x0)
			continue
		}

		spawnSubRun(&r.RecallBase, note)
	}
}
