// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"testing"

	"github.com/ik5/gsaudio/stream"
)

func TestAudioSignal_Next(t *testing.T) {
	t.Parallel()

	sig := NewAudioSignal(testPresets(1), nil, 3)
	for i := range 3 {
		if sig.Position() != i || sig.StreamCurrent() == nil {
			t.Fatalf("step %d: position %d", i, sig.Position())
		}
		sig.Next()
	}

	if !sig.Exhausted() || sig.StreamCurrent() != nil {
		t.Errorf("signal not exhausted after 3 buffers")
	}

	sig.Next()
	if sig.Position() != -1 {
		t.Errorf("Next() on exhausted signal moved to %d", sig.Position())
	}

	sig.Rewind()
	if sig.Position() != 0 {
		t.Errorf("Rewind() position = %d", sig.Position())
	}
}

func TestAudioSignal_Loop(t *testing.T) {
	t.Parallel()

	sig := NewAudioSignal(testPresets(1), nil, 4)
	sig.SetLoop(testBufferSize, 3*testBufferSize)

	want := []int{1, 2, 1, 2, 1}
	for i, w := range want {
		sig.Next()
		if sig.Position() != w {
			t.Fatalf("step %d: position = %d, want %d", i, sig.Position(), w)
		}
	}
}

func TestAudioSignal_MasterNeverMoves(t *testing.T) {
	t.Parallel()

	sig := NewAudioSignal(testPresets(1), nil, 1)
	sig.SetFlags(SignalMaster)
	sig.Next()
	sig.Next()

	if sig.Position() != 0 {
		t.Errorf("master position = %d, want 0", sig.Position())
	}
}

func TestAudioSignal_Duplicate(t *testing.T) {
	t.Parallel()

	tmpl := NewAudioSignal(testPresets(1), nil, 2)
	tmpl.SetFlags(SignalTemplate)
	fill(tmpl, 0.5)

	id := NewRecallID(ScopeSequencer, nil)
	dup := tmpl.Duplicate(id)

	if dup.HasFlags(SignalTemplate) || !dup.HasFlags(SignalStream) {
		t.Errorf("Duplicate() flags = %b", dup.Flags())
	}

	if dup.RecallID() != id || dup.Length() != 2 {
		t.Errorf("Duplicate() = id %p length %d", dup.RecallID(), dup.Length())
	}

	dup.StreamCurrent().SetSample(0, 0)
	if tmpl.StreamCurrent().Sample(0) != 0.5 {
		t.Error("Duplicate() shares buffers with the template")
	}
}

func TestAudioSignal_SetPresetsKeepsPosition(t *testing.T) {
	t.Parallel()

	sig := NewAudioSignal(testPresets(1), nil, 4)
	sig.Next()
	sig.Next()

	p := testPresets(1)
	p.BufferSize = testBufferSize * 2
	if err := sig.SetPresets(p); err != nil {
		t.Fatalf("SetPresets() error = %v", err)
	}

	if sig.Length() != 2 || sig.Position() != 1 {
		t.Errorf("after SetPresets length = %d position = %d, want 2 and 1", sig.Length(), sig.Position())
	}
}

func TestRecycling_SetPresetsReallocatesEverySignal(t *testing.T) {
	t.Parallel()

	rec := NewRecycling(nil, testPresets(1))

	tmpl := NewAudioSignal(testPresets(1), nil, 3)
	fill(tmpl, 0.25)
	rec.SetTemplate(tmpl)
	rec.CreateAudioSignal(NewRecallID(ScopeSequencer, nil))
	rec.Add(NewAudioSignal(testPresets(1), nil, 1))

	p := stream.Presets{Channels: 1, Samplerate: 48000, BufferSize: 100, Format: stream.FormatSigned16}
	if err := rec.SetPresets(p); err != nil {
		t.Fatalf("SetPresets() error = %v", err)
	}

	for i, sig := range rec.AudioSignals() {
		st := sig.Stream()
		if st.Format() != stream.FormatSigned16 || st.BufferSize() != 100 {
			t.Errorf("signal %d: stream %v/%d", i, st.Format(), st.BufferSize())
		}

		for j := range st.Len() {
			if b := st.At(j); b.Len() != 100 || b.Format() != stream.FormatSigned16 {
				t.Errorf("signal %d buffer %d: %v/%d", i, j, b.Format(), b.Len())
			}
		}
	}

	if got := rec.Template().StreamCurrent().Sample(99); got < 0.249 || got > 0.251 {
		t.Errorf("template sample after realloc = %v, want 0.25", got)
	}

	// signals added later take the new presets
	late := NewAudioSignal(testPresets(1), nil, 1)
	rec.Add(late)
	if late.StreamCurrent().Len() != 100 {
		t.Errorf("added signal buffer = %d samples, want 100", late.StreamCurrent().Len())
	}
}

func TestRecycling_CreateAudioSignalWithoutTemplate(t *testing.T) {
	t.Parallel()

	rec := NewRecycling(nil, testPresets(1))
	if sig := rec.CreateAudioSignal(NewRecallID(ScopeSequencer, nil)); sig != nil {
		t.Errorf("CreateAudioSignal() = %v, want nil", sig)
	}

	if len(rec.AudioSignals()) != 0 {
		t.Error("CreateAudioSignal() attached a signal")
	}
}

func TestPattern(t *testing.T) {
	t.Parallel()

	p := NewPattern(1, 2, 16)
	if !p.Toggle(0, 1, 3) || !p.IsOn(0, 1, 3) || p.IsOn(0, 0, 3) {
		t.Fatal("Toggle() did not set the step")
	}

	p.Toggle(0, 1, 15)
	p.SetDim(1, 2, 8)

	if got := p.Steps(0, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("Steps() after shrink = %v, want [3]", got)
	}

	if p.IsOn(5, 0, 0) || p.Toggle(0, 0, 8) {
		t.Error("out of range step reported on")
	}

	if p.Toggle(0, 1, 3) {
		t.Error("second Toggle() left the step on")
	}
}
