// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"math"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/utils"
)

const (
	WahWahName = "ags-fx-wah_wah"

	wahWahChannelXML     = "ags-fx-wah_wah-channel"
	wahWahChannelRunXML  = "ags-fx-wah_wah-channel-processor"
	wahWahAudioSignalXML = "ags-fx-wah_wah-audio-signal"

	lfoDepthPort  = "./lfo-depth[0]"
	lfoFreqPort   = "./lfo-freq[0]"
	lfoTuningPort = "./lfo-tuning[0]"

	// maximum vibrato delay in seconds at full depth
	wahWahMaxDelay = 0.002
)

// WahWahChannel owns the LFO ports.
type WahWahChannel struct {
	engine.RecallChannel
}

func NewWahWahChannel() *WahWahChannel {
	w := &WahWahChannel{}
	w.Init(w, WahWahName, wahWahChannelXML)
	addPorts(&w.RecallBase, []portSpec{
		floatPort(lfoDepthPort, 0, 1, 0.25),
		floatPort(lfoFreqPort, 0.01, 10, 6),
		// cents
		floatPort(lfoTuningPort, -1200, 1200, 0),
	})

	return w
}

type WahWahChannelRun struct {
	engine.RecallChannelRun

	static *WahWahChannel
}

func newWahWahChannelRun(static *WahWahChannel) *WahWahChannelRun {
	r := &WahWahChannelRun{static: static}
	r.Init(r, WahWahName, wahWahChannelRunXML)
	r.AddDependency(DelayName)

	return r
}

func (r *WahWahChannelRun) Duplicate() engine.Recall { return newWahWahChannelRun(r.static) }

func (r *WahWahChannelRun) NewAudioSignalRecall(src *engine.AudioSignal) engine.Recall {
	if src.HasFlags(engine.SignalMaster) {
		return nil
	}

	s := &WahWahAudioSignal{static: r.static, run: r}
	s.Init(s, WahWahName, wahWahAudioSignalXML)

	return s
}

// WahWahAudioSignal applies the note envelope and the LFO to one sub-run.
type WahWahAudioSignal struct {
	engine.RecallAudioSignal

	static *WahWahChannel
	run    *WahWahChannelRun

	frame   int
	history []float64
	data    []float64
	out     []float64
}

func (s *WahWahAudioSignal) RunInter() {
	src := s.Source()
	buf := src.StreamCurrent()
	if buf == nil {
		s.Done()
		return
	}

	delay := delayOf(&s.run.RecallBase)
	if delay == nil {
		return
	}

	st := &s.static.RecallBase
	depth := readFloat(st, lfoDepthPort, 0)
	freq := readFloat(st, lfoFreqPort, 0) * math.Exp2(readFloat(st, lfoTuningPort, 0)/1200)
	samplerate := float64(src.Presets().Samplerate)
	if samplerate <= 0 {
		return
	}

	n := buf.Len()
	hist := int(wahWahMaxDelay*samplerate) + 4
	if len(s.history) != hist {
		s.history = make([]float64, hist)
	}
	if cap(s.data) < hist+n {
		s.data = make([]float64, hist+n)
	}
	data := s.data[:hist+n]
	copy(data, s.history)
	buf.ReadFloat64(data[hist:], 0)

	var level func(i int) float64
	trailing := false

	if note := src.Note(); note != nil {
		env := note.Envelope()
		gain := imag(env.Ratio)
		x0, x1 := note.Range()

		if x1 < delay.NoteOffset() {
			// the note ended before this block: fade from the release
			// level to silence once
			release := imag(env.Release) * gain
			level = func(i int) float64 { return release * (1 - float64(i)/float64(n)) }
			trailing = true
		} else {
			frames := float64(x1-x0) * delay.FramesPerTick()
			start := float64(s.frame)
			level = func(i int) float64 { return envelopeLevel(env, start+float64(i), frames) * gain }
		}
	}

	if cap(s.out) < n {
		s.out = make([]float64, n)
	}
	out := s.out[:n]

	for i := range out {
		t := float64(s.frame+i) / samplerate
		lfo := 0.5 - 0.5*math.Cos(2*math.Pi*freq*t)

		v := utils.SampleAt(data, float64(hist+i)-depth*wahWahMaxDelay*samplerate*lfo)
		v *= 1 - depth*lfo
		if level != nil {
			v *= level(i)
		}

		out[i] = v
	}

	buf.WriteFloat64(out, 0)
	copy(s.history, data[n:])
	s.frame += n

	if trailing {
		s.Done()
		if id := src.RecallID(); id != nil && id.IsSubRun() {
			id.Done()
		}
	}
}
