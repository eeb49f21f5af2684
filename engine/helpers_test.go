// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync/atomic"
	"testing"

	"github.com/ik5/gsaudio/config"
	"github.com/ik5/gsaudio/devout"
	"github.com/ik5/gsaudio/stream"
)

const testBufferSize = 64

func testPresets(channels int) stream.Presets {
	return stream.Presets{Channels: channels, Samplerate: 44100, BufferSize: testBufferSize, Format: stream.FormatDouble}
}

func newTestAudio(t *testing.T, outputPads, inputPads, channels int) *Audio {
	t.Helper()

	a, err := NewAudio("test", testPresets(channels), outputPads, inputPads,
		AudioOutputHasRecycling|AudioInputHasRecycling)
	if err != nil {
		t.Fatalf("NewAudio() error = %v", err)
	}

	return a
}

func newTestEngine(t *testing.T, channels int) (*Engine, *devout.Headless) {
	t.Helper()

	cfg := config.Default()
	cfg.Soundcard.BufferSize = testBufferSize
	cfg.Soundcard.PCMChannels = channels
	cfg.Soundcard.Format = "double"

	card, err := devout.NewHeadless(testPresets(channels))
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}

	return New(cfg, card), card
}

// testClock is an audio-run counting its stages.
type testClock struct {
	RecallAudioRun

	inits, pres int
}

func newTestClock() *testClock {
	c := &testClock{}
	c.Init(c, "test-clock", "test-clock-audio-run")

	return c
}

func (c *testClock) Duplicate() Recall { return newTestClock() }
func (c *testClock) RunInitPre()       { c.inits++ }
func (c *testClock) RunPre()           { c.pres++ }

// testFollower is a channel run depending on name.
type testFollower struct {
	RecallChannelRun

	dep          string
	ran, skipped int
}

func newTestFollower(dep string) *testFollower {
	f := &testFollower{dep: dep}
	f.Init(f, "test-follower", "test-follower-channel-run")
	f.AddDependency(dep)

	return f
}

func (f *testFollower) Duplicate() Recall { return newTestFollower(f.dep) }

func (f *testFollower) RunPre() {
	if f.Dependency(f.dep) == nil {
		f.skipped++
		return
	}
	f.ran++
}

// testSpawn starts one sub-run from the template of its channel.
type testSpawn struct {
	RecallChannelRun

	spawned *AudioSignal
}

func newTestSpawn() *testSpawn {
	s := &testSpawn{}
	s.Init(s, "test-spawn", "test-spawn-channel-run")

	return s
}

func (s *testSpawn) Duplicate() Recall { return newTestSpawn() }

func (s *testSpawn) RunPre() {
	if s.spawned != nil {
		return
	}

	id := s.RecallID()
	sub := NewRecallID(id.Scope(), NewRecyclingContext(id.Context(), nil))
	s.spawned = s.Channel().Recycling().CreateAudioSignal(sub)
}

// testCopy mixes every sub-run signal into the master of output line 0.
type testCopy struct {
	RecallChannelRun

	disposed *atomic.Int32
}

func newTestCopy(disposed *atomic.Int32) *testCopy {
	c := &testCopy{disposed: disposed}
	c.Init(c, "test-copy", "test-copy-channel-run")

	return c
}

func (c *testCopy) Duplicate() Recall { return newTestCopy(c.disposed) }

func (c *testCopy) NewAudioSignalRecall(src *AudioSignal) Recall {
	s := &testCopySignal{disposed: c.disposed}
	s.Init(s, "test-copy", "test-copy-audio-signal")

	return s
}

type testCopySignal struct {
	RecallAudioSignal

	disposed *atomic.Int32
}

func (s *testCopySignal) RunPost() {
	buf := s.Source().StreamCurrent()
	if buf == nil {
		return
	}

	out := s.Audio().Channel(Output, 0).OwnRecycling()
	root := s.RecallID().Context().Root()
	for _, sig := range out.AudioSignals() {
		if sig.HasFlags(SignalMaster) && sig.RecallID().Context() == root {
			stream.Mix(sig.StreamCurrent(), 0, buf, 0, buf.Len())
		}
	}
}

func (s *testCopySignal) Dispose() {
	if s.disposed != nil {
		s.disposed.Add(1)
	}
}

// fill sets every sample of every buffer of sig to v.
func fill(sig *AudioSignal, v float64) {
	st := sig.Stream()
	for i := range st.Len() {
		b := st.At(i)
		for j := range b.Len() {
			b.SetSample(j, v)
		}
	}
}
