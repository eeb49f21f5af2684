// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/gsaudio/config"
)

func TestTransport_Delay(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Soundcard.Samplerate = 44100
	cfg.Soundcard.BufferSize = 512
	cfg.Sequencer.BPM = 120

	tr := NewTransport(cfg)
	want := (60.0 * 44100 / 512) / 120 / 16
	if got := tr.Delay(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Delay() = %v, want %v", got, want)
	}

	cfg.Sequencer.DelayFactor = 2
	if got := NewTransport(cfg).Delay(); math.Abs(got-want/2) > 1e-12 {
		t.Errorf("Delay() with factor 2 = %v, want %v", got, want/2)
	}
}

func TestTransport_Tick(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	// four blocks per tick
	cfg.Soundcard.Samplerate = 44100
	cfg.Soundcard.BufferSize = 441
	cfg.Sequencer.BPM = 93.75
	cfg.Sequencer.Loop = true
	cfg.Sequencer.LoopStart = 2
	cfg.Sequencer.LoopEnd = 4

	tr := NewTransport(cfg)
	if tr.Delay() != 4 {
		t.Fatalf("Delay() = %v, want 4", tr.Delay())
	}

	if tr.NoteOffset() != 2 || !tr.IsTickStart() {
		t.Fatalf("start offset %d tick start %v", tr.NoteOffset(), tr.IsTickStart())
	}

	var offsets []uint64
	var starts int
	for range 12 {
		tr.Tick()
		offsets = append(offsets, tr.NoteOffset())
		if tr.IsTickStart() {
			starts++
		}
	}

	want := []uint64{2, 2, 2, 3, 3, 3, 3, 2, 2, 2, 2, 3}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets = %v, want %v", offsets, want)
		}
	}

	if starts != 3 || tr.NoteOffsetAbsolute() != 3 {
		t.Errorf("tick starts %d absolute %d, want 3 and 3", starts, tr.NoteOffsetAbsolute())
	}

	tr.Seek(10)
	if tr.NoteOffset() != 10 || tr.DelayCounter() != 0 {
		t.Errorf("Seek() = %d/%v", tr.NoteOffset(), tr.DelayCounter())
	}
}

func TestTransport_SetBPM(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Soundcard.BufferSize = 441
	cfg.Sequencer.BPM = 93.75

	tests := []struct {
		name    string
		bpm     float64
		want    error
		wantBPM float64
	}{
		{"slower", 46.875, nil, 46.875},
		{"one tick per buffer", 375, nil, 375},
		{"tick shorter than buffer", 400, config.ErrTickShorterThanBlock, 93.75},
		{"zero", 0, config.ErrInvalidBPM, 93.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := NewTransport(cfg)
			if err := tr.SetBPM(tt.bpm); !errors.Is(err, tt.want) {
				t.Fatalf("SetBPM(%v) error = %v, want %v", tt.bpm, err, tt.want)
			}

			if tr.BPM() != tt.wantBPM {
				t.Errorf("BPM() = %v, want %v", tr.BPM(), tt.wantBPM)
			}
		})
	}
}

func TestTransport_TickAdvancesOneStepPerBlockAtMost(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Soundcard.BufferSize = 441
	cfg.Sequencer.BPM = 375

	tr := NewTransport(cfg)
	for i := range 8 {
		tr.Tick()
		if got := tr.NoteOffset(); got != uint64(i+1) {
			t.Fatalf("NoteOffset() after %d blocks = %d, want %d", i+1, got, i+1)
		}
	}
}
