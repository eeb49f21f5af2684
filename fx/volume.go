// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/port"
)

const (
	VolumeName = "ags-fx-volume"

	volumeChannelXML     = "ags-fx-volume-channel"
	volumeChannelRunXML  = "ags-fx-volume-channel-processor"
	volumeAudioSignalXML = "ags-fx-volume-audio-signal"

	volumePort = "./volume[0]"
	mutedPort  = "./muted[0]"
)

type VolumeChannel struct {
	engine.RecallChannel
}

func NewVolumeChannel() *VolumeChannel {
	v := &VolumeChannel{}
	v.Init(v, VolumeName, volumeChannelXML)

	vol := floatPort(volumePort, 0, 2, 1)
	vol.conv = port.LogConversion{}
	addPorts(&v.RecallBase, []portSpec{vol, boolPort(mutedPort, false)})

	return v
}

// gain returns the factor applied to every sample.
func (v *VolumeChannel) gain() float64 {
	if readBool(&v.RecallBase, mutedPort) {
		return 0
	}

	return readFloat(&v.RecallBase, volumePort, 1)
}

type VolumeChannelRun struct {
	engine.RecallChannelRun

	static *VolumeChannel
}

func newVolumeChannelRun(static *VolumeChannel) *VolumeChannelRun {
	r := &VolumeChannelRun{static: static}
	r.Init(r, VolumeName, volumeChannelRunXML)

	return r
}

func (r *VolumeChannelRun) Duplicate() engine.Recall { return newVolumeChannelRun(r.static) }

func (r *VolumeChannelRun) NewAudioSignalRecall(*engine.AudioSignal) engine.Recall {
	s := &VolumeAudioSignal{static: r.static}
	s.Init(s, VolumeName, volumeAudioSignalXML)

	return s
}

type VolumeAudioSignal struct {
	engine.RecallAudioSignal

	static *VolumeChannel
	data   []float64
}

// RunInter scales a sub-run before it is mixed.
func (s *VolumeAudioSignal) RunInter() {
	if !s.Source().HasFlags(engine.SignalMaster) {
		s.apply()
	}
}

// RunPost scales a master after the inputs were mixed into it.
func (s *VolumeAudioSignal) RunPost() {
	if s.Source().HasFlags(engine.SignalMaster) {
		s.apply()
	}
}

func (s *VolumeAudioSignal) apply() {
	buf := s.Source().StreamCurrent()
	if buf == nil {
		return
	}

	g := s.static.gain()
	if g == 1 {
		return
	}

	n := buf.Len()
	if cap(s.data) < n {
		s.data = make([]float64, n)
	}
	data := s.data[:n]

	buf.ReadFloat64(data, 0)
	for i := range data {
		data[i] *= g
	}
	buf.WriteFloat64(data, 0)
}
