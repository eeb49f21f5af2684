// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"math"
	"testing"

	"github.com/ik5/gsaudio/config"
	"github.com/ik5/gsaudio/devin"
	"github.com/ik5/gsaudio/devout"
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/stream"
)

const (
	testBufferSize = 64
	testFlags      = engine.AudioOutputHasRecycling | engine.AudioInputHasRecycling
	recallFlags    = FactoryAdd | FactoryRecall | FactoryInput
)

func testPresets(channels, bufferSize int) stream.Presets {
	return stream.Presets{Channels: channels, Samplerate: 44100, BufferSize: bufferSize, Format: stream.FormatDouble}
}

type testRig struct {
	engine  *engine.Engine
	card    *devout.Headless
	factory *Factory
	audio   *engine.Audio
}

// newRig creates an engine with a mono headless card and one audio.
func newRig(t *testing.T, outputPads, inputPads int, flags engine.AudioFlags, seqs ...devin.Sequencer) *testRig {
	t.Helper()

	cfg := config.Default()
	cfg.Soundcard.BufferSize = testBufferSize
	cfg.Soundcard.PCMChannels = 1
	cfg.Soundcard.Format = "double"

	card, err := devout.NewHeadless(testPresets(1, testBufferSize))
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}

	a, err := engine.NewAudio("test", testPresets(1, testBufferSize), outputPads, inputPads, testFlags|flags)
	if err != nil {
		t.Fatalf("NewAudio() error = %v", err)
	}

	e := engine.New(cfg, card, seqs...)

	return &testRig{engine: e, card: card, factory: NewFactory(e), audio: a}
}

// add creates chain name on every input channel, or on the audio.
func (r *testRig) add(t *testing.T, name string) []engine.Recall {
	t.Helper()

	out, err := r.factory.Create(r.audio, nil, nil, name, "", "",
		0, r.audio.AudioChannels(), 0, r.audio.Pads(engine.Input), -1, recallFlags)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", name, err)
	}

	return out
}

// setTemplate gives input pad 0 a sample of length buffers at level v.
func (r *testRig) setTemplate(length int, v float64) {
	sig := engine.NewAudioSignal(r.audio.Presets(), nil, length)
	fill(sig, v)
	r.audio.Channel(engine.Input, 0).OwnRecycling().SetTemplate(sig)
}

func (r *testRig) runBlocks(t *testing.T, n int) {
	t.Helper()

	for range n {
		if err := r.engine.RunBlock(); err != nil {
			t.Fatalf("RunBlock() error = %v", err)
		}
	}
}

func fill(sig *engine.AudioSignal, v float64) {
	st := sig.Stream()
	for i := range st.Len() {
		b := st.At(i)
		for j := range b.Len() {
			b.SetSample(j, v)
		}
	}
}

func samples(b *stream.Buffer) []float64 {
	out := make([]float64, b.Len())
	b.ReadFloat64(out, 0)

	return out
}

// find returns the first recall of type T in list bound to id. A nil id
// matches templates.
func find[T engine.Recall](list []engine.Recall, id *engine.RecallID) T {
	var zero T
	for _, r := range list {
		if x, ok := r.(T); ok && r.Base().RecallID() == id {
			return x
		}
	}

	return zero
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
