// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"sync"

	"github.com/ik5/gsaudio/engine"
)

const (
	CountBeatsName = "ags-count-beats"

	countBeatsAudioXML    = "ags-count-beats-audio"
	countBeatsAudioRunXML = "ags-count-beats-audio-run"

	loopPort      = "./sequencer-loop[0]"
	loopStartPort = "./sequencer-loop-start[0]"
	loopEndPort   = "./sequencer-loop-end[0]"
)

// CountBeatsAudio owns the sequencer loop ports.
type CountBeatsAudio struct {
	engine.RecallAudio
}

func NewCountBeatsAudio() *CountBeatsAudio {
	c := &CountBeatsAudio{}
	c.Init(c, CountBeatsName, countBeatsAudioXML)
	addPorts(&c.RecallBase, []portSpec{
		boolPort(loopPort, true),
		intPort(loopStartPort, 0, 65535, 0),
		intPort(loopEndPort, 0, 65535, 16),
	})

	return c
}

// CountBeatsAudioRun counts the steps played by its run.
type CountBeatsAudioRun struct {
	engine.RecallAudioRun

	static *CountBeatsAudio

	mu        sync.Mutex
	sequencer uint64
	notation  uint64
}

func newCountBeatsAudioRun(static *CountBeatsAudio) *CountBeatsAudioRun {
	r := &CountBeatsAudioRun{static: static}
	r.Init(r, CountBeatsName, countBeatsAudioRunXML)
	r.AddDependency(DelayName)

	return r
}

func (r *CountBeatsAudioRun) Duplicate() engine.Recall { return newCountBeatsAudioRun(r.static) }

func (r *CountBeatsAudioRun) RunPre() {
	delay := delayOf(&r.RecallBase)
	if delay == nil {
		return
	}

	offset := delay.NoteOffset()
	counter := offset

	s := &r.static.RecallBase
	if readBool(s, loopPort) {
		start := uint64(readFloat(s, loopStartPort, 0))
		end := uint64(readFloat(s, loopEndPort, 0))
		if end > start && offset >= start {
			counter = start + (offset-start)%(end-start)
		}
	}

	r.mu.Lock()
	r.sequencer = counter
	r.notation = offset
	r.mu.Unlock()
}

// SequencerCounter returns the pattern step of the current block.
func (r *CountBeatsAudioRun) SequencerCounter() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sequencer
}

// NotationCounter returns the tick of the current block.
func (r *CountBeatsAudioRun) NotationCounter() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.notation
}

func countBeatsOf(b *engine.RecallBase) *CountBeatsAudioRun {
	c, _ := b.Dependency(CountBeatsName).(*CountBeatsAudioRun)
	return c
}
