// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"testing"

	"github.com/ik5/gsaudio/engine"
)

func TestVolume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		volume float64
		muted  bool
		master bool
		inter  float64
		post   float64
	}{
		{"unity", 1, false, false, 0.5, 0.5},
		{"half", 0.5, false, false, 0.25, 0.25},
		{"muted", 1, true, false, 0, 0},
		{"master waits for post", 0.5, false, true, 0.5, 0.25},
		{"above range applies upper", 3.5, false, false, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			static := NewVolumeChannel()
			static.Port(volumePort).SafeWriteFloat(tt.volume)
			static.Port(mutedPort).SafeWriteBool(tt.muted)
			if got := static.Port(volumePort).SafeReadFloat(); got != tt.volume {
				t.Fatalf("volume port = %v, want %v as written", got, tt.volume)
			}

			sig := engine.NewAudioSignal(testPresets(1, testBufferSize), nil, 1)
			if tt.master {
				sig.SetFlags(engine.SignalMaster)
			}
			fill(sig, 0.5)

			s := newVolumeChannelRun(static).NewAudioSignalRecall(sig).(*VolumeAudioSignal)
			s.SetSource(sig)

			s.RunInter()
			if got := sig.StreamCurrent().Sample(0); !almostEqual(got, tt.inter) {
				t.Errorf("after inter = %v, want %v", got, tt.inter)
			}

			s.RunPost()
			if got := sig.StreamCurrent().Sample(testBufferSize - 1); !almostEqual(got, tt.post) {
				t.Errorf("after post = %v, want %v", got, tt.post)
			}
		})
	}
}

func TestVolume_DisplaysDecibels(t *testing.T) {
	t.Parallel()

	p := NewVolumeChannel().Port(volumePort)
	p.SafeWriteConverted(-6.0206)

	if got := p.SafeReadFloat(); got < 0.49 || got > 0.51 {
		t.Errorf("-6 dB stored as %v, want about 0.5", got)
	}
}
