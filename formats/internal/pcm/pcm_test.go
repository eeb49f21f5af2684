// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type fakeReader struct {
	format *goaudio.Format
	data   []int
	err    error
}

func (f *fakeReader) Format() *goaudio.Format { return f.format }

func (f *fakeReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}

	n := copy(buf.Data, f.data)
	f.data = f.data[n:]

	return n, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		bias     int
		data     []int
		want     []float64
	}{
		{"16 bit", 16, 0, []int{32767, -32767, 0, 16384}, []float64{1, -1, 0, 16384.0 / 32767}},
		{"24 bit", 24, 0, []int{8388607, -4194304}, []float64{1, -4194304.0 / 8388607}},
		{"8 bit unsigned", 8, 128, []int{255, 1, 128}, []float64{1, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeReader{format: &goaudio.Format{NumChannels: 2, SampleRate: 22050}, data: tt.data}
			s := NewSource(r, tt.bitDepth, tt.bias)
			if s.SampleRate() != 22050 || s.Channels() != 2 || s.BitDepth() != tt.bitDepth {
				t.Errorf("Source = %d Hz %d channels %d bit", s.SampleRate(), s.Channels(), s.BitDepth())
			}

			dst := make([]float64, 8)
			n, err := s.ReadSamples(dst)
			if n != len(tt.want) || !errors.Is(err, io.EOF) {
				t.Fatalf("ReadSamples() = %d, %v, want %d, EOF", n, err, len(tt.want))
			}
			for i, w := range tt.want {
				if dst[i] != w {
					t.Errorf("sample %d = %v, want %v", i, dst[i], w)
				}
			}
		})
	}
}

func TestSource_FullBufferThenEOF(t *testing.T) {
	t.Parallel()

	r := &fakeReader{format: &goaudio.Format{NumChannels: 1, SampleRate: 8000}, data: []int{1, 2, 3, 4}}
	s := NewSource(r, 16, 0)

	if n, err := s.ReadSamples(make([]float64, 4)); n != 4 || err != nil {
		t.Errorf("first ReadSamples() = %d, %v, want 4, nil", n, err)
	}
	if n, err := s.ReadSamples(make([]float64, 4)); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("second ReadSamples() = %d, %v, want 0, EOF", n, err)
	}
	if n, err := s.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}
}

func TestSource_Error(t *testing.T) {
	t.Parallel()

	r := &fakeReader{format: &goaudio.Format{NumChannels: 1, SampleRate: 8000}, err: io.ErrUnexpectedEOF}
	if _, err := NewSource(r, 16, 0).ReadSamples(make([]float64, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}
