// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/timeline"
)

const (
	PatternName = "ags-fx-pattern"

	patternChannelXML    = "ags-fx-pattern-channel"
	patternChannelRunXML = "ags-fx-pattern-channel-processor"

	bank0Port = "./bank-index-0[0]"
	bank1Port = "./bank-index-1[0]"
)

// PatternChannel selects the pattern bank played by its channel.
type PatternChannel struct {
	engine.RecallChannel
}

func NewPatternChannel() *PatternChannel {
	p := &PatternChannel{}
	p.Init(p, PatternName, patternChannelXML)
	addPorts(&p.RecallBase, []portSpec{
		intPort(bank0Port, 0, 255, 0),
		intPort(bank1Port, 0, 255, 0),
	})

	return p
}

// PatternChannelRun starts a sub-run whenever the step of the current
// tick is set in the channel's first pattern.
type PatternChannelRun struct {
	engine.RecallChannelRun

	static *PatternChannel
}

func newPatternChannelRun(static *PatternChannel) *PatternChannelRun {
	r := &PatternChannelRun{static: static}
	r.Init(r, PatternName, patternChannelRunXML)
	r.AddDependency(DelayName)
	r.AddDependency(CountBeatsName)

	return r
}

func (r *PatternChannelRun) Duplicate() engine.Recall { return newPatternChannelRun(r.static) }

func (r *PatternChannelRun) RunPre() {
	audio, id := r.Audio(), r.RecallID()
	if audio == nil || id == nil || !playsPattern(audio, id) {
		return
	}

	delay, beats := delayOf(&r.RecallBase), countBeatsOf(&r.RecallBase)
	if delay == nil || beats == nil || !delay.IsTickStart() {
		return
	}

	ch := r.Channel()
	patterns := ch.Patterns()
	if len(patterns) == 0 {
		return
	}

	pat := patterns[0]
	_, _, length := pat.Dim()
	if length == 0 {
		return
	}

	i := int(readFloat(&r.static.RecallBase, bank0Port, 0))
	j := int(readFloat(&r.static.RecallBase, bank1Port, 0))
	step := int(beats.SequencerCounter() % uint64(length))
	if !pat.IsOn(i, j, step) {
		return
	}

	offset := delay.NoteOffset()
	note := timeline.NewNote(offset, offset+1, uint32(ch.Pad()))
	note.SetFlags(timeline.NoteRuntime)

	if sig := spawnSubRun(&r.RecallBase, note); sig != nil {
		logger.Tracef("%v: step %d on line %d", r, step, ch.Line())
	}
}
