// SPDX-License-Identifier: EPL-2.0

package simplefile

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ik5/gsaudio/config"
	"github.com/ik5/gsaudio/devout"
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/fx"
	"github.com/ik5/gsaudio/stream"
	"github.com/ik5/gsaudio/timeline"
)

func testPresets() stream.Presets {
	return stream.Presets{Channels: 2, Samplerate: 44100, BufferSize: 128, Format: stream.FormatFloat}
}

func newEngine(t *testing.T) (*engine.Engine, *fx.Factory) {
	t.Helper()

	card, err := devout.NewHeadless(testPresets())
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}

	cfg := config.Default()
	cfg.Soundcard.BufferSize = 128
	cfg.Soundcard.Format = "float"

	e := engine.New(cfg, card)

	return e, fx.NewFactory(e)
}

// newProject builds a drum audio with a pattern, a notation and an
// automation and the delay, notation and volume chains.
func newProject(t *testing.T, factory *fx.Factory) *engine.Audio {
	t.Helper()

	a, err := engine.NewAudio("drums", testPresets(), 1, 4,
		engine.AudioOutputHasRecycling|engine.AudioInputHasRecycling|engine.AudioPatternMode)
	if err != nil {
		t.Fatalf("NewAudio() error = %v", err)
	}
	a.SetMIDIStartMapping(36)

	for _, name := range []string{fx.DelayName, fx.NotationName, fx.VolumeName} {
		if _, err := factory.Create(a, nil, nil, name, "", "", 0, 2, 0, 4, -1,
			fx.FactoryAdd|fx.FactoryRecall|fx.FactoryInput); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	vol := volumeStatic(a, 2).Base()
	vol.Port("./volume[0]").SafeWriteFloat(0.5)
	vol.Port("./muted[0]").SafeWriteBool(true)

	pat := engine.NewPattern(1, 1, 16)
	pat.Toggle(0, 0, 0)
	pat.Toggle(0, 0, 4)
	pat.Toggle(0, 0, 15)
	a.Channel(engine.Input, 1).AddPattern(pat)

	n := timeline.NewNotation(0, timeline.OffsetTimestamp(0, 1024))
	note := timeline.NewNote(2, 6, 3)
	note.SetVelocity(90)
	note.SetFlags(timeline.NoteEnvelope)
	note.SetEnvelope(timeline.Envelope{
		Attack:  complex(0.1, 1),
		Decay:   complex(0.2, 0.5),
		Sustain: complex(0.5, 0.5),
		Release: complex(0.2, 0),
		Ratio:   complex(0, 0.8),
	})
	n.AddNote(note, true)
	a.AddNotation(n)

	au := timeline.NewAutomation(0, timeline.OffsetTimestamp(0, 1024), "./volume[0]", 0, 2)
	au.AddAcceleration(0, 1)
	au.AddAcceleration(16, 0.25)
	a.AddAutomation(au)

	return a
}

// volumeStatic returns the volume template on input line.
func volumeStatic(a *engine.Audio, line int) engine.Recall {
	for _, r := range a.Channel(engine.Input, line).Recalls(false) {
		if r.Base().XMLType() == "ags-fx-volume-channel" {
			return r
		}
	}

	return nil
}

func recallTypes(rs []engine.Recall) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Base().XMLType()
	}

	return out
}

func TestWrite_Elements(t *testing.T) {
	t.Parallel()

	_, factory := newEngine(t)
	a := newProject(t, factory)

	var buf bytes.Buffer
	if err := Write(&buf, a); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	doc := buf.String()
	for _, want := range []string{
		`<ags-simple-file version="1.0">`,
		`<ags-sf-audio name="drums" audio-channels="2"`,
		`flags="output-has-recycling,input-has-recycling,pattern-mode"`,
		`<ags-sf-recall name="ags-delay" xml-type="ags-delay-audio" flags="recall">`,
		`<ags-sf-recall name="ags-fx-volume" xml-type="ags-fx-volume-channel" flags="recall,input" pad="1" audio-channel="0">`,
		`<ags-sf-port specifier="./volume[0]" control-port="1/2" value="0.5"></ags-sf-port>`,
		`<ags-sf-pattern-data index-0="0" index-1="0">0 4 15</ags-sf-pattern-data>`,
		`<ags-sf-note x0="2" x1="6" y="3" velocity="90" flags="envelope"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document lacks %s\n%s", want, doc)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	e, factory := newEngine(t)
	a := newProject(t, factory)

	var buf bytes.Buffer
	if err := Write(&buf, a); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	audios, err := f.Load(e, factory)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(audios) != 1 {
		t.Fatalf("Load() = %d audios, want 1", len(audios))
	}
	got := audios[0]

	if got.Name() != "drums" || got.Presets() != a.Presets() || got.Flags() != a.Flags() {
		t.Errorf("audio = %s %v %b, want %s %v %b",
			got.Name(), got.Presets(), got.Flags(), a.Name(), a.Presets(), a.Flags())
	}
	if got.Pads(engine.Input) != 4 || got.Pads(engine.Output) != 1 || got.MIDIStartMapping() != 36 {
		t.Errorf("pads = %d/%d mapping %d", got.Pads(engine.Input), got.Pads(engine.Output), got.MIDIStartMapping())
	}

	if want, have := recallTypes(a.Recalls(false)), recallTypes(got.Recalls(false)); !slices.Equal(want, have) {
		t.Errorf("audio recalls = %v, want %v", have, want)
	}
	for line := range a.Pads(engine.Input) * a.AudioChannels() {
		want := recallTypes(a.Channel(engine.Input, line).Recalls(false))
		have := recallTypes(got.Channel(engine.Input, line).Recalls(false))
		if !slices.Equal(want, have) {
			t.Errorf("line %d recalls = %v, want %v", line, have, want)
		}
	}
	if n := len(got.RecallContainers()); n != 3 {
		t.Errorf("containers = %d, want 3", n)
	}

	vol := volumeStatic(got, 2)
	if v := vol.Base().Port("./volume[0]").SafeReadFloat(); v != 0.5 {
		t.Errorf("volume = %v, want 0.5", v)
	}
	if !vol.Base().Port("./muted[0]").SafeReadBool() {
		t.Error("muted = false, want true")
	}
	if v := volumeStatic(got, 0).Base().Port("./volume[0]").SafeReadFloat(); v != 1 {
		t.Errorf("untouched volume = %v, want 1", v)
	}

	pats := got.Channel(engine.Input, 1).Patterns()
	if len(pats) != 1 {
		t.Fatalf("patterns = %d, want 1", len(pats))
	}
	if steps := pats[0].Steps(0, 0); !slices.Equal(steps, []int{0, 4, 15}) {
		t.Errorf("steps = %v, want [0 4 15]", steps)
	}

	notes := got.NotesStartingAt(0, 2, 1024)
	if len(notes) != 1 {
		t.Fatalf("notes at 2 = %d, want 1", len(notes))
	}
	note := notes[0]
	if x0, x1 := note.Range(); x0 != 2 || x1 != 6 || note.Y() != 3 || note.Velocity() != 90 {
		t.Errorf("note = [%d, %d) y %d v %d", x0, x1, note.Y(), note.Velocity())
	}
	if !note.HasFlags(timeline.NoteEnvelope) || note.HasFlags(timeline.NoteFeed) {
		t.Errorf("note flags = %b", note.Flags())
	}
	if env := note.Envelope(); env.Decay != complex(0.2, 0.5) || env.Ratio != complex(0, 0.8) {
		t.Errorf("envelope = %v", env)
	}

	aus := got.FindAutomations(0, timeline.OffsetTimestamp(0, 1024))
	if len(aus) != 1 {
		t.Fatalf("automations = %d, want 1", len(aus))
	}
	if v, ok := aus[0].ValueAt(8); !ok || v != 0.625 {
		t.Errorf("ValueAt(8) = %v, %v, want 0.625", v, ok)
	}
}

func TestLoad_StartsAndRuns(t *testing.T) {
	t.Parallel()

	e, factory := newEngine(t)

	var buf bytes.Buffer
	if err := Write(&buf, newProject(t, factory)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	audios, err := f.Load(e, factory)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	id, err := e.Start(audios[0], engine.ScopeNotation)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for range 4 {
		if err := e.RunBlock(); err != nil {
			t.Fatalf("RunBlock() error = %v", err)
		}
	}
	if err := e.Stop(id); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestWriteFile_ReadFile(t *testing.T) {
	t.Parallel()

	_, factory := newEngine(t)
	path := filepath.Join(t.TempDir(), "song.xml")

	if err := WriteFile(path, newProject(t, factory)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if f.Version != Version || len(f.Audios) != 1 || len(f.Audios[0].Recalls) == 0 {
		t.Errorf("ReadFile() = version %q, %d audios", f.Version, len(f.Audios))
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("ReadFile(missing) error = nil")
	}
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"newer version", `<ags-simple-file version="2.0"></ags-simple-file>`, ErrUnsupportedVersion},
		{"no version", `<ags-simple-file></ags-simple-file>`, ErrUnsupportedVersion},
		{"wrong root", `<project version="1.0"></project>`, nil},
		{"not xml", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Read(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("Read() error = nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	pad := 9
	tests := []struct {
		name  string
		audio Audio
		want  error
	}{
		{
			name:  "audio flag",
			audio: Audio{Name: "a", OutputPads: 1, InputPads: 1, Flags: "loud"},
			want:  ErrInvalidFlag,
		},
		{
			name: "unknown effect",
			audio: Audio{Name: "a", OutputPads: 1, InputPads: 1, Recalls: []Recall{
				{Name: "ags-fx-nothing", XMLType: "ags-fx-nothing-channel", Flags: "recall,input"},
			}},
			want: fx.ErrUnknownEffect,
		},
		{
			name: "recall without context",
			audio: Audio{Name: "a", OutputPads: 1, InputPads: 1, Recalls: []Recall{
				{Name: fx.VolumeName, XMLType: "ags-fx-volume-channel", Flags: "input"},
			}},
			want: ErrInvalidFlag,
		},
		{
			name: "pad out of range",
			audio: Audio{Name: "a", OutputPads: 1, InputPads: 1, Recalls: []Recall{
				{Name: fx.VolumeName, XMLType: "ags-fx-volume-channel", Flags: "recall,input", Pad: &pad},
			}},
			want: fx.ErrInvalidRange,
		},
		{
			name: "pattern channel",
			audio: Audio{Name: "a", OutputPads: 1, InputPads: 1, Patterns: []Pattern{
				{Direction: "input", Line: 5, Bank0: 1, Bank1: 1, Length: 16},
			}},
			want: ErrInvalidChannel,
		},
		{
			name: "note flag",
			audio: Audio{Name: "a", OutputPads: 1, InputPads: 1, Notations: []Notation{
				{Notes: []Note{{X1: 1, Flags: "sticky"}}},
			}},
			want: ErrInvalidFlag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, factory := newEngine(t)
			f := &File{Version: Version, Audios: []Audio{tt.audio}}

			if _, err := f.Load(e, factory); !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_DefaultsFromConfig(t *testing.T) {
	t.Parallel()

	e, factory := newEngine(t)
	f := &File{Version: Version, Audios: []Audio{{Name: "bare", OutputPads: 1, InputPads: 1}}}

	audios, err := f.Load(e, factory)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := e.Config()
	want := stream.Presets{
		Channels:   1,
		Samplerate: cfg.Soundcard.Samplerate,
		BufferSize: cfg.Soundcard.BufferSize,
		Format:     cfg.SampleFormat(),
	}
	if p := audios[0].Presets(); p != want {
		t.Errorf("Presets() = %v, want %v", p, want)
	}
}

func TestFlags(t *testing.T) {
	t.Parallel()

	all := engine.AudioSync | engine.AudioReverseMapping | engine.AudioPatternMode
	got, err := parseAudioFlags(formatAudioFlags(all))
	if err != nil || got != all {
		t.Errorf("audio flags = %b, %v, want %b", got, err, all)
	}

	nf, err := parseNoteFlags(" feed , runtime ")
	if err != nil || nf != timeline.NoteFeed|timeline.NoteRuntime {
		t.Errorf("parseNoteFlags() = %b, %v", nf, err)
	}

	if f, err := parseAudioFlags(""); err != nil || f != 0 {
		t.Errorf("parseAudioFlags(\"\") = %b, %v", f, err)
	}
}
