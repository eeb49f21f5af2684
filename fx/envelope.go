// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/timeline"
)

const (
	EnvelopeName = "ags-fx-envelope"

	envelopeChannelXML     = "ags-fx-envelope-channel"
	envelopeChannelRunXML  = "ags-fx-envelope-channel-processor"
	envelopeAudioSignalXML = "ags-fx-envelope-audio-signal"

	fixedLengthPort = "./fixed-length[0]"
)

// envelopeLevel returns the level of env at frame of a note lasting
// frames frames. The curve starts at 0 and runs through the attack,
// decay, sustain and release points linearly. Past the release point it
// holds the release level.
func envelopeLevel(env timeline.Envelope, frame, frames float64) float64 {
	if frames <= 0 {
		return imag(env.Release)
	}

	points := [...]complex128{env.Attack, env.Decay, env.Sustain, env.Release}

	x0, y0 := 0.0, 0.0
	for _, p := range points {
		x1 := x0 + real(p)*frames
		y1 := imag(p)

		if frame <= x1 {
			if x1 <= x0 {
				return y1
			}

			return y0 + (y1-y0)*(frame-x0)/(x1-x0)
		}

		x0, y0 = x1, y1
	}

	return y0
}

// EnvelopeChannel owns the envelope length port.
type EnvelopeChannel struct {
	engine.RecallChannel
}

func NewEnvelopeChannel() *EnvelopeChannel {
	e := &EnvelopeChannel{}
	e.Init(e, EnvelopeName, envelopeChannelXML)
	addPorts(&e.RecallBase, []portSpec{
		// ticks, 0 uses the note length
		intPort(fixedLengthPort, 0, 65535, 0),
	})

	return e
}

type EnvelopeChannelRun struct {
	engine.RecallChannelRun

	static *EnvelopeChannel
}

func newEnvelopeChannelRun(static *EnvelopeChannel) *EnvelopeChannelRun {
	r := &EnvelopeChannelRun{static: static}
	r.Init(r, EnvelopeName, envelopeChannelRunXML)
	r.AddDependency(DelayName)

	return r
}

func (r *EnvelopeChannelRun) Duplicate() engine.Recall { return newEnvelopeChannelRun(r.static) }

func (r *EnvelopeChannelRun) NewAudioSignalRecall(src *engine.AudioSignal) engine.Recall {
	if src.HasFlags(engine.SignalMaster) {
		return nil
	}

	s := &EnvelopeAudioSignal{static: r.static, run: r}
	s.Init(s, EnvelopeName, envelopeAudioSignalXML)

	return s
}

// EnvelopeAudioSignal shapes one sub-run with the envelope of its note.
type EnvelopeAudioSignal struct {
	engine.RecallAudioSignal

	static *EnvelopeChannel
	run    *EnvelopeChannelRun
	frame  int
	data   []float64
}

func (s *EnvelopeAudioSignal) RunInter() {
	src := s.Source()
	buf := src.StreamCurrent()
	if buf == nil {
		return
	}

	n := buf.Len()
	start := s.frame
	s.frame += n

	note := src.Note()
	if note == nil || !note.HasFlags(timeline.NoteEnvelope) {
		return
	}

	delay := delayOf(&s.run.RecallBase)
	if delay == nil {
		return
	}

	ticks := readFloat(&s.static.RecallBase, fixedLengthPort, 0)
	if ticks <= 0 {
		x0, x1 := note.Range()
		ticks = float64(x1 - x0)
	}

	frames := ticks * delay.FramesPerTick()
	env := note.Envelope()
	gain := imag(env.Ratio)

	if cap(s.data) < n {
		s.data = make([]float64, n)
	}
	data := s.data[:n]

	buf.ReadFloat64(data, 0)
	for i := range data {
		data[i] *= envelopeLevel(env, float64(start+i), frames) * gain
	}
	buf.WriteFloat64(data, 0)
}
