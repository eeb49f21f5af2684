// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"testing"

	"github.com/ik5/gsaudio/internal/audiotest"
)

func TestMonoMixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		want     float64
	}{
		{"mono passes through", 1, 0.9},
		{"stereo", 2, 0.6},
		{"quad", 4, 0.45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// channel c plays 0.9, 0.3, 0.6, 0
			levels := []float64{0.9, 0.3, 0.6, 0}
			src := audiotest.NewSource(8000, tt.channels, 300, func(_, c int) float64 { return levels[c] })
			m := NewMonoMixer(src)

			if m.Channels() != 1 || m.SampleRate() != 8000 {
				t.Errorf("MonoMixer = %d Hz %d channels", m.SampleRate(), m.Channels())
			}

			got := drain(t, m)
			if len(got) != 300 {
				t.Fatalf("frames = %d, want 300", len(got))
			}
			for i, v := range got {
				if math.Abs(v-tt.want) > 1e-12 {
					t.Fatalf("frame %d = %v, want %v", i, v, tt.want)
				}
			}

			if err := m.Close(); err != nil || !src.Closed {
				t.Errorf("Close() = %v, source closed %v", err, src.Closed)
			}
		})
	}
}

func TestMonoMixer_EmptyDst(t *testing.T) {
	t.Parallel()

	m := NewMonoMixer(audiotest.Silence(8000, 2, 10))
	if n, err := m.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}
}
