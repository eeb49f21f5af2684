// SPDX-License-Identifier: EPL-2.0

package stream

import (
	goaudio "github.com/go-audio/audio"
	"github.com/juju/loggo"

	"github.com/ik5/gsaudio/utils"
)

var logger = loggo.GetLogger("gsaudio.stream")

// Buffer holds a fixed number of mono samples in one Format.
type Buffer struct {
	format Format
	ints   *goaudio.IntBuffer
	f32    *goaudio.Float32Buffer
	f64    *goaudio.FloatBuffer
}

// NewBuffer allocates a zeroed buffer. An invalid format is logged and
// replaced by DefaultFormat; a negative size is treated as zero.
func NewBuffer(format Format, size int) *Buffer {
	if !format.Valid() {
		logger.Warningf("new buffer: %v, using %v", format, DefaultFormat)
		format = DefaultFormat
	}

	if size < 0 {
		size = 0
	}

	b := &Buffer{format: format}
	pcm := &goaudio.Format{NumChannels: 1}

	switch {
	case format.IsInteger():
		b.ints = &goaudio.IntBuffer{Format: pcm, Data: make([]int, size), SourceBitDepth: format.BitDepth()}
	case format == FormatFloat:
		b.f32 = &goaudio.Float32Buffer{Format: pcm, Data: make([]float32, size), SourceBitDepth: 32}
	default:
		b.f64 = &goaudio.FloatBuffer{Format: pcm, Data: make([]float64, size)}
	}

	return b
}

func (b *Buffer) Format() Format { return b.format }

// Len returns the number of samples.
func (b *Buffer) Len() int {
	switch {
	case b.ints != nil:
		return len(b.ints.Data)
	case b.f32 != nil:
		return len(b.f32.Data)
	default:
		return len(b.f64.Data)
	}
}

// Clear zeroes every sample.
func (b *Buffer) Clear() {
	switch {
	case b.ints != nil:
		clear(b.ints.Data)
	case b.f32 != nil:
		clear(b.f32.Data)
	default:
		clear(b.f64.Data)
	}
}

// Sample returns sample i normalized to [-1, 1].
func (b *Buffer) Sample(i int) float64 {
	switch {
	case b.ints != nil:
		return utils.IntToFloat(b.ints.Data[i], b.format.BitDepth())
	case b.f32 != nil:
		return float64(b.f32.Data[i])
	default:
		return b.f64.Data[i]
	}
}

// SetSample stores a normalized sample. Integer formats clamp to full scale.
func (b *Buffer) SetSample(i int, v float64) {
	switch {
	case b.ints != nil:
		b.ints.Data[i] = utils.FloatToInt(v, b.format.BitDepth())
	case b.f32 != nil:
		b.f32.Data[i] = float32(v)
	default:
		b.f64.Data[i] = v
	}
}

// ReadFloat64 copies samples starting at offset into dst and returns the
// number copied.
func (b *Buffer) ReadFloat64(dst []float64, offset int) int {
	n := min(len(dst), b.Len()-offset)
	if n <= 0 {
		return 0
	}

	switch {
	case b.ints != nil:
		depth := b.format.BitDepth()
		for i := range n {
			dst[i] = utils.IntToFloat(b.ints.Data[offset+i], depth)
		}
	case b.f32 != nil:
		for i := range n {
			dst[i] = float64(b.f32.Data[offset+i])
		}
	default:
		copy(dst, b.f64.Data[offset:offset+n])
	}

	return n
}

// WriteFloat64 stores src starting at offset and returns the number stored.
func (b *Buffer) WriteFloat64(src []float64, offset int) int {
	n := min(len(src), b.Len()-offset)
	if n <= 0 {
		return 0
	}

	switch {
	case b.ints != nil:
		depth := b.format.BitDepth()
		for i := range n {
			b.ints.Data[offset+i] = utils.FloatToInt(src[i], depth)
		}
	case b.f32 != nil:
		for i := range n {
			b.f32.Data[offset+i] = float32(src[i])
		}
	default:
		copy(b.f64.Data[offset:], src[:n])
	}

	return n
}

// IntBuffer exposes the go-audio view of an integer buffer, or nil for
// float and double buffers.
func (b *Buffer) IntBuffer() *goaudio.IntBuffer { return b.ints }

// AsIntBuffer returns the samples as a go-audio IntBuffer of the given bit
// depth, converting when needed. Integer buffers of the same depth are
// returned without copying.
func (b *Buffer) AsIntBuffer(bitDepth int, samplerate int) *goaudio.IntBuffer {
	if b.ints != nil && b.format.BitDepth() == bitDepth {
		b.ints.Format.SampleRate = samplerate
		return b.ints
	}

	out := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: samplerate},
		Data:           make([]int, b.Len()),
		SourceBitDepth: bitDepth,
	}
	for i := range out.Data {
		out.Data[i] = utils.FloatToInt(b.Sample(i), bitDepth)
	}

	return out
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.format, b.Len())
	Copy(c, 0, b, 0, b.Len())
	return c
}

// Realloc returns a buffer of the new format and size holding as many of
// the old samples as fit, converted.
func (b *Buffer) Realloc(format Format, size int) *Buffer {
	c := NewBuffer(format, size)
	Copy(c, 0, b, 0, min(size, b.Len()))
	return c
}

// Copy overwrites n samples of dst at dstOffset with samples of src at
// srcOffset, converting formats. It returns the number of samples copied.
func Copy(dst *Buffer, dstOffset int, src *Buffer, srcOffset int, n int) int {
	n = min(n, dst.Len()-dstOffset, src.Len()-srcOffset)
	if n <= 0 {
		return 0
	}

	if dst.format == src.format {
		switch {
		case dst.ints != nil:
			copy(dst.ints.Data[dstOffset:dstOffset+n], src.ints.Data[srcOffset:srcOffset+n])
		case dst.f32 != nil:
			copy(dst.f32.Data[dstOffset:dstOffset+n], src.f32.Data[srcOffset:srcOffset+n])
		default:
			copy(dst.f64.Data[dstOffset:dstOffset+n], src.f64.Data[srcOffset:srcOffset+n])
		}
		return n
	}

	for i := range n {
		dst.SetSample(dstOffset+i, src.Sample(srcOffset+i))
	}

	return n
}

// Mix adds n samples of src at srcOffset onto dst at dstOffset, converting
// formats. Integer destinations saturate at full scale.
func Mix(dst *Buffer, dstOffset int, src *Buffer, srcOffset int, n int) int {
	n = min(n, dst.Len()-dstOffset, src.Len()-srcOffset)
	if n <= 0 {
		return 0
	}

	for i := range n {
		dst.SetSample(dstOffset+i, dst.Sample(dstOffset+i)+src.Sample(srcOffset+i))
	}

	return n
}
