// SPDX-License-Identifier: EPL-2.0

// Package stream provides the sample buffers the engine moves around.
//
// A Buffer is a fixed-size array of samples in one of six formats: signed
// 8, 16, 24 and 32 bit integers, 32-bit float and 64-bit double. Integer
// formats are stored in a go-audio IntBuffer, float in a Float32Buffer and
// double in a FloatBuffer, so buffers can be handed to go-audio encoders
// without copying.
//
// Every accessor works in normalized float64 in the range [-1.0, 1.0]:
//
//	buf := stream.NewBuffer(stream.FormatSigned16, 512)
//	buf.SetSample(0, 0.5)
//	v := buf.Sample(0) // ~0.5
//
// Copy and Mix transfer samples between buffers of any two formats:
//
//	stream.Copy(dst, 0, src, 0, src.Len())
//	stream.Mix(master, 0, voice, 0, voice.Len())
//
// A Stream is an ordered list of buffers sharing one format and size. The
// format and size only ever change through Realloc, which reallocates every
// buffer so no reader observes a stale-sized buffer.
package stream
