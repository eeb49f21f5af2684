// SPDX-License-Identifier: EPL-2.0

package gsaudio

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/gsaudio/audio"
	"github.com/ik5/gsaudio/config"
	"github.com/ik5/gsaudio/devout"
	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/formats"
	"github.com/ik5/gsaudio/formats/wav"
	"github.com/ik5/gsaudio/internal/audiotest"
	"github.com/ik5/gsaudio/stream"
)

type sourceDecoder struct{ src audio.Source }

func (d sourceDecoder) Decode(io.Reader) (audio.Source, error) { return d.src, nil }

func samplerPresets() stream.Presets {
	return stream.Presets{Channels: 2, Samplerate: 8000, BufferSize: 4, Format: stream.FormatDouble}
}

func newSampler(t *testing.T, flags engine.AudioFlags) *engine.Audio {
	t.Helper()

	a, err := engine.NewAudio("sampler", samplerPresets(), 1, 2, flags)
	if err != nil {
		t.Fatalf("NewAudio() error = %v", err)
	}

	return a
}

func templateSamples(t *testing.T, a *engine.Audio, pad, c int) []float64 {
	t.Helper()

	sig := a.ChannelAt(engine.Input, pad, c).Recycling().Template()
	if sig == nil {
		t.Fatalf("pad %d channel %d has no template", pad, c)
	}

	s := sig.Stream()
	out := make([]float64, s.Frames())
	for i := range s.Len() {
		s.At(i).ReadFloat64(out[i*s.BufferSize():], 0)
	}

	return out
}

func TestLoadSample(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		src        func() audio.Source
		wantFrames int
		check      func(t *testing.T, left, right []float64)
	}{
		{
			name:       "stereo",
			src:        func() audio.Source { return audiotest.Ramp(8000, 2, 10) },
			wantFrames: 12,
			check: func(t *testing.T, left, right []float64) {
				if left[9] != 1 || right[9] != 0.5 {
					t.Errorf("last frame = %v, %v, want 1, 0.5", left[9], right[9])
				}
				if left[10] != 0 || left[11] != 0 {
					t.Errorf("padding = %v, want silence", left[10:])
				}
			},
		},
		{
			name:       "mono feeds every channel",
			src:        func() audio.Source { return audiotest.Constant(8000, 1, 8, 0.25) },
			wantFrames: 8,
			check: func(t *testing.T, left, right []float64) {
				for i := range left {
					if left[i] != 0.25 || right[i] != 0.25 {
						t.Fatalf("frame %d = %v, %v, want 0.25", i, left[i], right[i])
					}
				}
			},
		},
		{
			name:       "resampled",
			src:        func() audio.Source { return audiotest.Constant(4000, 2, 6, -0.5) },
			wantFrames: 12,
			check: func(t *testing.T, left, _ []float64) {
				if math.Abs(left[4]+0.5) > 1e-9 {
					t.Errorf("frame 4 = %v, want -0.5", left[4])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newSampler(t, engine.AudioInputHasRecycling|engine.AudioOutputHasRecycling)
			if err := LoadSample(a, 1, sourceDecoder{tt.src()}, nil); err != nil {
				t.Fatalf("LoadSample() error = %v", err)
			}

			left, right := templateSamples(t, a, 1, 0), templateSamples(t, a, 1, 1)
			if len(left) != tt.wantFrames || len(right) != tt.wantFrames {
				t.Fatalf("template frames = %d, %d, want %d", len(left), len(right), tt.wantFrames)
			}
			tt.check(t, left, right)

			if a.ChannelAt(engine.Input, 0, 0).Recycling().Template() != nil {
				t.Error("pad 0 got a template")
			}
		})
	}
}

func TestLoadSample_Errors(t *testing.T) {
	t.Parallel()

	src := func() audio.Decoder { return sourceDecoder{audiotest.Silence(8000, 2, 4)} }

	if err := LoadSample(newSampler(t, engine.AudioInputHasRecycling), 2, src(), nil); !errors.Is(err, ErrInvalidPad) {
		t.Errorf("LoadSample(pad 2) error = %v, want %v", err, ErrInvalidPad)
	}
	if err := LoadSample(newSampler(t, engine.AudioOutputHasRecycling), 0, src(), nil); !errors.Is(err, ErrNoRecycling) {
		t.Errorf("LoadSample() without recycling error = %v, want %v", err, ErrNoRecycling)
	}
}

func TestLoadSampleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "hat.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := wav.Encode(f, audiotest.Constant(8000, 2, 16, 0.5), 16); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	f.Close()

	reg := formats.NewRegistry()
	a := newSampler(t, engine.AudioInputHasRecycling)

	if err := LoadSampleFile(a, 0, reg, path); err != nil {
		t.Fatalf("LoadSampleFile() error = %v", err)
	}
	if got := templateSamples(t, a, 0, 1); len(got) != 16 || math.Abs(got[7]-0.5) > 1e-4 {
		t.Errorf("template = %v", got)
	}

	if err := LoadSampleFile(a, 0, reg, filepath.Join(dir, "hat.flac")); !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("LoadSampleFile(flac) error = %v, want %v", err, audio.ErrUnknownFormat)
	}
	if err := LoadSampleFile(a, 0, reg, filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadSampleFile(missing) error = %v, want %v", err, os.ErrNotExist)
	}
}

type otherCard struct{ *devout.Headless }

func TestRender(t *testing.T) {
	t.Parallel()

	card, err := devout.NewHeadless(samplerPresets())
	if err != nil {
		t.Fatal(err)
	}
	e := engine.New(config.Default(), card)
	t.Cleanup(func() { e.Close() })

	a := newSampler(t, engine.AudioInputHasRecycling|engine.AudioOutputHasRecycling)

	path := filepath.Join(t.TempDir(), "render.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := Render(context.Background(), e, a, engine.ScopePlayback, 5, f); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(a.RecallIDs()) != 0 {
		t.Errorf("RecallIDs() = %d after render, want 0", len(a.RecallIDs()))
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	src, err := wav.Decoder{}.Decode(in)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	data, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(data) != 2 || len(data[0]) != 20 {
		t.Errorf("rendered %d channels of %d frames, want 2 of 20", len(data), len(data[0]))
	}

	other := engine.New(config.Default(), otherCard{card})
	if err := Render(context.Background(), other, a, engine.ScopePlayback, 1, f); !errors.Is(err, ErrNotHeadless) {
		t.Errorf("Render() error = %v, want %v", err, ErrNotHeadless)
	}
}
