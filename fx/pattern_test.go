// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"testing"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/timeline"
)

func newPatternRig(t *testing.T, chains ...string) *testRig {
	t.Helper()

	r := newRig(t, 1, 1, engine.AudioPatternMode)
	r.setTemplate(1, 0.5)

	pat := engine.NewPattern(1, 1, 16)
	pat.Toggle(0, 0, 0)
	pat.Toggle(0, 0, 4)
	r.audio.Channel(engine.Input, 0).AddPattern(pat)

	for _, name := range chains {
		r.add(t, name)
	}

	return r
}

func TestPattern_PlaysSteps(t *testing.T) {
	t.Parallel()

	r := newPatternRig(t, DelayName, CountBeatsName, PatternName, BufferName)
	if _, err := r.engine.Start(r.audio, engine.ScopeSequencer); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	in := r.audio.Channel(engine.Input, 0).OwnRecycling()
	r.runBlocks(t, 1)

	var sub *engine.AudioSignal
	for _, sig := range in.AudioSignals() {
		if !sig.HasFlags(engine.SignalTemplate) {
			sub = sig
		}
	}
	if sub == nil {
		t.Fatal("step 0 did not start a sub-run")
	}

	note := sub.Note()
	if note == nil || !note.HasFlags(timeline.NoteRuntime) || note.X0() != 0 || note.X1() != 1 {
		t.Errorf("sub-run note = %+v", note)
	}

	// step 1 is off
	r.engine.Transport().Seek(1)
	r.runBlocks(t, 1)

	// step 4 is on
	r.engine.Transport().Seek(4)
	r.runBlocks(t, 1)

	blocks := r.card.Blocks()
	want := []float64{0.5, 0, 0.5}
	for i, w := range want {
		for j, got := range samples(blocks[i]) {
			if !almostEqual(got, w) {
				t.Fatalf("block %d sample %d = %v, want %v", i, j, got, w)
			}
		}
	}
}

func TestPattern_IgnoredInNotationScope(t *testing.T) {
	t.Parallel()

	r := newPatternRig(t, DelayName, CountBeatsName, PatternName, BufferName)
	if _, err := r.engine.Start(r.audio, engine.ScopeNotation); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	r.runBlocks(t, 1)

	if got := len(r.audio.Channel(engine.Input, 0).OwnRecycling().AudioSignals()); got != 1 {
		t.Errorf("notation run started %d sub-runs from a pattern", got-1)
	}
}

func TestPattern_MissingDependencyIsInert(t *testing.T) {
	t.Parallel()

	r := newPatternRig(t, DelayName, PatternName, BufferName)
	id, err := r.engine.Start(r.audio, engine.ScopeSequencer)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	run := find[*PatternChannelRun](r.audio.Channel(engine.Input, 0).Recalls(false), id)
	if run == nil {
		t.Fatal("no pattern run instance")
	}

	for range 2 {
		run.ResolveDependencies()
		if run.Dependency(CountBeatsName) != nil {
			t.Fatal("ags-count-beats resolved without an instance")
		}
		if run.Dependency(DelayName) == nil {
			t.Fatal("ags-delay not resolved")
		}
	}

	r.runBlocks(t, 2)

	if got := len(r.audio.Channel(engine.Input, 0).OwnRecycling().AudioSignals()); got != 1 {
		t.Errorf("inert pattern started %d sub-runs", got-1)
	}

	if run.IsDone() {
		t.Error("inert pattern run is done")
	}
}

func TestCountBeats_Loop(t *testing.T) {
	t.Parallel()

	r := newRig(t, 1, 1, 0)
	r.add(t, DelayName)
	r.add(t, CountBeatsName)

	static := find[*CountBeatsAudio](r.audio.Recalls(false), nil)
	static.Port(loopEndPort).SafeWriteFloat(4)

	id, err := r.engine.Start(r.audio, engine.ScopeSequencer)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	run := find[*CountBeatsAudioRun](r.audio.Recalls(false), id)

	tests := []struct {
		offset    uint64
		loop      bool
		sequencer uint64
	}{
		{0, true, 0},
		{3, true, 3},
		{5, true, 1},
		{9, true, 1},
		{9, false, 9},
	}

	for _, tt := range tests {
		static.Port(loopPort).SafeWriteBool(tt.loop)
		r.engine.Transport().Seek(tt.offset)
		r.runBlocks(t, 1)

		if got := run.SequencerCounter(); got != tt.sequencer {
			t.Errorf("offset %d loop %v: SequencerCounter() = %d, want %d", tt.offset, tt.loop, got, tt.sequencer)
		}

		if got := run.NotationCounter(); got != tt.offset {
			t.Errorf("offset %d: NotationCounter() = %d", tt.offset, got)
		}
	}
}
