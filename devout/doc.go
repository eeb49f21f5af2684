// SPDX-License-Identifier: EPL-2.0

// Package devout defines PCM output devices.
//
// A soundcard owns one interleaved buffer of BufferSize frames. The engine
// mixes into it under the buffer lock and then calls Play. Backends are
// selected with Open: "headless" keeps the blocks in memory and "oto"
// streams them to the system audio device. Building with the headless tag
// replaces the oto backend by a silent one.
package devout
