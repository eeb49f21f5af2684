// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float64
		x              float64
		want           float64
		tolerance      float64
	}{
		{name: "start returns y1", y0: 0, y1: 1, y2: 2, y3: 3, x: 0, want: 1, tolerance: 1e-12},
		{name: "end returns y2", y0: 0, y1: 1, y2: 2, y3: 3, x: 1, want: 2, tolerance: 1e-12},
		{name: "linear data stays linear", y0: 1, y1: 2, y2: 3, y3: 4, x: 0.25, want: 2.25, tolerance: 1e-12},
		{name: "negative values", y0: -1, y1: -0.5, y2: 0.5, y3: 1, x: 0.5, want: 0, tolerance: 1e-12},
		{name: "waveform peak", y0: 0.5, y1: 0.9, y2: 0.7, y3: 0.3, x: 0.3, want: 0.85, tolerance: 0.1},
		{name: "silence", x: 0.5, want: 0, tolerance: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (tolerance %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestSampleAt(t *testing.T) {
	t.Parallel()

	buf := []float64{0, 1, 2, 3, 4}

	tests := []struct {
		name string
		pos  float64
		want float64
	}{
		{"before start", -3, 0},
		{"on sample", 2, 2},
		{"between linear samples", 1.5, 1.5},
		{"after end", 9, 4},
	}

	for _, tt := range tests {
		if got := SampleAt(buf, tt.pos); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: SampleAt(%v) = %v, want %v", tt.name, tt.pos, got, tt.want)
		}
	}

	if SampleAt(nil, 1) != 0 {
		t.Error("SampleAt(nil) should be silent")
	}
}

func TestCubicInterpolate_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	buf := []float64{0.5, 1.0, 0.8, 0.3}
	allocs := testing.AllocsPerRun(1000, func() {
		_ = SampleAt(buf, 1.5)
	})

	if allocs > 0 {
		t.Errorf("SampleAt allocated %v times, want 0", allocs)
	}
}

func BenchmarkSampleAt(b *testing.B) {
	buf := make([]float64, 8000)
	for i := range buf {
		buf[i] = math.Sin(float64(i) / 10)
	}

	b.ReportAllocs()

	var sink float64
	for i := range b.N {
		sink = SampleAt(buf, float64(i%7999)+0.37)
	}
	_ = sink
}
