// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/gsaudio/stream"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	if cfg.SampleFormat() != stream.FormatSigned16 {
		t.Errorf("SampleFormat() = %v, want s16", cfg.SampleFormat())
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	doc := `
soundcard:
  samplerate: 48000
  buffer-size: 256
  format: float
sequencer:
  bpm: 90
  loop: true
  loop-start: 16
  loop-end: 32
log: "gsaudio=DEBUG"
`

	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Soundcard.Samplerate != 48000 || cfg.Soundcard.BufferSize != 256 {
		t.Errorf("soundcard = %+v", cfg.Soundcard)
	}

	if cfg.Soundcard.PCMChannels != 2 || cfg.Soundcard.Backend != BackendHeadless {
		t.Errorf("defaults lost: %+v", cfg.Soundcard)
	}

	if cfg.SampleFormat() != stream.FormatFloat {
		t.Errorf("SampleFormat() = %v, want float", cfg.SampleFormat())
	}

	if cfg.Sequencer.BPM != 90 || !cfg.Sequencer.Loop || cfg.Sequencer.LoopStart != 16 {
		t.Errorf("sequencer = %+v", cfg.Sequencer)
	}

	if cfg.Recall.NotationOffset != 1024 {
		t.Errorf("notation offset = %d, want 1024", cfg.Recall.NotationOffset)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"backend", "soundcard: {backend: alsa}", ErrInvalidBackend},
		{"samplerate", "soundcard: {samplerate: 100}", ErrInvalidSamplerate},
		{"buffer size", "soundcard: {buffer-size: 0}", ErrInvalidBufferSize},
		{"channels", "soundcard: {pcm-channels: 0}", ErrInvalidChannels},
		{"format", "soundcard: {format: s12}", stream.ErrUnknownFormat},
		{"bpm", "sequencer: {bpm: 0}", ErrInvalidBPM},
		{"delay factor", "sequencer: {delay-factor: -1}", ErrInvalidDelayFactor},
		{"tick shorter than buffer", "soundcard: {buffer-size: 4096}\nsequencer: {bpm: 120}", ErrTickShorterThanBlock},
		{"delay factor shortens tick", "sequencer: {delay-factor: 4}", ErrTickShorterThanBlock},
		{"loop", "sequencer: {loop: true, loop-start: 8, loop-end: 8}", ErrInvalidLoop},
		{"offset", "recall: {wave-offset: 0}", ErrInvalidOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.doc, err, tt.want)
			}
		})
	}
}

func TestConfig_TickDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		bufferSize int
		bpm        float64
		want       float64
	}{
		{"defaults", 512, 120, 44100.0 * 60 / 512 / 120 / 16},
		{"four buffers", 441, 93.75, 4},
		{"one buffer", 441, 375, 1},
		{"large buffer", 4096, 120, 44100.0 * 60 / 4096 / 120 / 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			cfg.Soundcard.BufferSize = tt.bufferSize
			cfg.Sequencer.BPM = tt.bpm

			if got := cfg.TickDelay(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TickDelay() = %v, want %v", got, tt.want)
			}

			err := cfg.Validate()
			if tt.want < 1 && !errors.Is(err, ErrTickShorterThanBlock) {
				t.Errorf("Validate() error = %v, want %v", err, ErrTickShorterThanBlock)
			}
			if tt.want >= 1 && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestConfig_MaxBPM(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Soundcard.BufferSize = 441
	cfg.Sequencer.BPM = cfg.MaxBPM()

	if cfg.Sequencer.BPM != 375 {
		t.Fatalf("MaxBPM() = %v, want 375", cfg.Sequencer.BPM)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() at MaxBPM error = %v", err)
	}
}

func TestParse_UnknownKey(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("soundcard: {sample-rate: 44100}")); err == nil {
		t.Error("Parse() with unknown key succeeded")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Sequencer.BPM = 140
	cfg.Recall.MIDIRecordDivision = 480

	data, err := cfg.Format()
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Format()) error = %v", err)
	}

	if got != cfg {
		t.Errorf("Parse(Format()) = %+v, want %+v", got, cfg)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("sequencer: {bpm: 100}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Sequencer.BPM != 100 {
		t.Errorf("bpm = %v, want 100", cfg.Sequencer.BPM)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) succeeded")
	}
}
