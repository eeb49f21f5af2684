// SPDX-License-Identifier: EPL-2.0

// Package formats registers the bundled decoders.
package formats

import (
	"github.com/ik5/gsaudio/audio"
	"github.com/ik5/gsaudio/formats/aiff"
	"github.com/ik5/gsaudio/formats/mp3"
	"github.com/ik5/gsaudio/formats/vorbis"
	"github.com/ik5/gsaudio/formats/wav"
)

// Register adds every bundled decoder to r under its file extensions.
func Register(r *audio.Registry) {
	r.Register("wav", wav.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
}

// NewRegistry returns a registry holding every bundled decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)

	return r
}
