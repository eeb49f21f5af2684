// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/stream"
)

const (
	BufferName = "ags-fx-buffer"

	bufferChannelXML     = "ags-fx-buffer-channel"
	bufferChannelRunXML  = "ags-fx-buffer-channel-processor"
	bufferAudioSignalXML = "ags-fx-buffer-audio-signal"
)

// BufferChannel routes the sub-runs of an input channel to the outputs.
type BufferChannel struct {
	engine.RecallChannel
}

func NewBufferChannel() *BufferChannel {
	b := &BufferChannel{}
	b.Init(b, BufferName, bufferChannelXML)

	return b
}

type BufferChannelRun struct {
	engine.RecallChannelRun
}

func newBufferChannelRun() *BufferChannelRun {
	r := &BufferChannelRun{}
	r.Init(r, BufferName, bufferChannelRunXML)

	return r
}

func (r *BufferChannelRun) Duplicate() engine.Recall { return newBufferChannelRun() }

func (r *BufferChannelRun) NewAudioSignalRecall(src *engine.AudioSignal) engine.Recall {
	if id := src.RecallID(); id == nil || !id.IsSubRun() {
		return nil
	}

	s := &BufferAudioSignal{run: r}
	s.Init(s, BufferName, bufferAudioSignalXML)

	return s
}

// BufferAudioSignal mixes the current buffer of its sub-run into the
// master of the output it is routed to.
type BufferAudioSignal struct {
	engine.RecallAudioSignal

	run *BufferChannelRun
}

// output returns the output channel fed by input channel in.
func output(a *engine.Audio, in *engine.Channel) *engine.Channel {
	pad := in.Pad()
	if !a.HasFlags(engine.AudioSync) || pad >= a.Pads(engine.Output) {
		pad = 0
	}

	return a.ChannelAt(engine.Output, pad, in.AudioChannel())
}

func (s *BufferAudioSignal) RunPost() {
	buf := s.Source().StreamCurrent()
	if buf == nil {
		return
	}

	a, in, id := s.Audio(), s.Channel(), s.run.RecallID()
	if a == nil || in == nil || id == nil {
		return
	}

	out := output(a, in)
	if out == nil {
		return
	}

	rec := out.OwnRecycling()
	if rec == nil {
		return
	}

	master := rec.Master(id)
	if master == nil {
		logger.Tracef("%v: no master on output line %d", s, out.Line())
		return
	}

	if dst := master.StreamCurrent(); dst != nil {
		stream.Mix(dst, 0, buf, 0, min(dst.Len(), buf.Len()))
	}
}
