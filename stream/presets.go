// SPDX-License-Identifier: EPL-2.0

package stream

import "fmt"

// Presets describe the shape of audio data exchanged between devices,
// resources and signals.
type Presets struct {
	Channels   int
	Samplerate int
	BufferSize int
	Format     Format
}

// Valid reports whether every field is usable.
func (p Presets) Valid() bool {
	return p.Channels > 0 && p.Samplerate > 0 && p.BufferSize > 0 && p.Format.Valid()
}

func (p Presets) String() string {
	return fmt.Sprintf("%d ch, %d Hz, %d frames, %v", p.Channels, p.Samplerate, p.BufferSize, p.Format)
}
