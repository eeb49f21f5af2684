// SPDX-License-Identifier: EPL-2.0

// Package midi parses raw MIDI wire bytes as delivered by a sequencer
// device, maps keys to pads and captures blocks into a Standard MIDI File
// track.
//
// A block of raw bytes is split into messages with Messages:
//
//	for _, msg := range midi.Messages(buf) {
//	    switch midi.Kind(msg[0]) {
//	    case midi.KeyOn:
//	        ...
//	    }
//	}
//
// The length of a message is taken from its status byte. System exclusive
// messages run up to and including their 0xF7 terminator and meta events
// carry a variable-length size field. Running status is not supported: a
// data byte without a status byte is skipped.
package midi
