// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes integer PCM WAV files with
// github.com/go-audio/wav.
//
//	f, _ := os.Open("kick.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Encode writes any audio.Source back out, for example a rendered mix.
package wav
