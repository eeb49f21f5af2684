// SPDX-License-Identifier: EPL-2.0

// Package devin defines MIDI input devices feeding the engine.
//
// A sequencer delivers one block of raw MIDI bytes per processing block.
// The buffer has its own lock, distinct from any engine object lock;
// readers hold it only while copying the bytes out.
package devin
