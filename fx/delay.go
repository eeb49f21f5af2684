// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"github.com/ik5/gsaudio/engine"
)

const (
	DelayName = "ags-delay"

	delayAudioXML    = "ags-delay-audio"
	delayAudioRunXML = "ags-delay-audio-run"

	bpmPort = "./bpm[0]"
)

// DelayAudio owns the tempo port of the transport.
type DelayAudio struct {
	engine.RecallAudio

	transport *engine.Transport
}

func NewDelayAudio(transport *engine.Transport) *DelayAudio {
	d := &DelayAudio{transport: transport}
	d.Init(d, DelayName, delayAudioXML)
	addPorts(&d.RecallBase, []portSpec{
		floatPort(bpmPort, 1, 1000, transport.BPM()),
	})

	return d
}

// DelayAudioRun exposes the transport to the recalls of its run.
type DelayAudioRun struct {
	engine.RecallAudioRun

	static  *DelayAudio
	lastBPM float64
}

func newDelayAudioRun(static *DelayAudio) *DelayAudioRun {
	r := &DelayAudioRun{static: static}
	r.Init(r, DelayName, delayAudioRunXML)

	return r
}

func (r *DelayAudioRun) Duplicate() engine.Recall { return newDelayAudioRun(r.static) }

func (r *DelayAudioRun) RunInitPre() {
	r.lastBPM = readFloat(&r.static.RecallBase, bpmPort, r.static.transport.BPM())
}

// RunPre applies a changed bpm port to the transport.
func (r *DelayAudioRun) RunPre() {
	bpm := readFloat(&r.static.RecallBase, bpmPort, 0)
	if bpm > 0 && bpm != r.lastBPM {
		r.lastBPM = bpm
		if err := r.static.transport.SetBPM(bpm); err != nil {
			logger.Warningf("%v: %v", r, err)
			return
		}
		logger.Debugf("%v: bpm %v", r, bpm)
	}
}

func (r *DelayAudioRun) NoteOffset() uint64         { return r.static.transport.NoteOffset() }
func (r *DelayAudioRun) NoteOffsetAbsolute() uint64 { return r.static.transport.NoteOffsetAbsolute() }
func (r *DelayAudioRun) DelayCounter() float64      { return r.static.transport.DelayCounter() }
func (r *DelayAudioRun) Delay() float64             { return r.static.transport.Delay() }
func (r *DelayAudioRun) IsTickStart() bool          { return r.static.transport.IsTickStart() }
func (r *DelayAudioRun) BPM() float64               { return r.static.transport.BPM() }

// FramesPerTick returns the length of one tick in frames of the run's
// audio.
func (r *DelayAudioRun) FramesPerTick() float64 {
	size := 0
	if a := r.Audio(); a != nil {
		size = a.Presets().BufferSize
	}

	return r.Delay() * float64(size)
}

// delayOf returns the resolved ags-delay run of b, or nil.
func delayOf(b *engine.RecallBase) *DelayAudioRun {
	d, _ := b.Dependency(DelayName).(*DelayAudioRun)
	return d
}
