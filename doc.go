// SPDX-License-Identifier: EPL-2.0

// Package gsaudio is an audio sequencer engine built around a graph of
// audios and a recall processing model.
//
// An engine.Audio is a grid of input and output channels. Effects from
// the fx package are attached to it as recall chains: static templates
// that are instantiated into one run per playback scope. The engine runs
// every block in three stages and mixes the output channels into the
// soundcard buffer.
//
// The subpackages are:
//   - engine: audios, channels, recyclings, signals, recalls and the run loop
//   - fx: EQ10, WahWah, RecordMidi and the supporting recalls
//   - timeline: notations, notes, automations and waves
//   - port: typed recall parameters
//   - simplefile: the XML project format
//   - audio, formats: decoding samples and writing renders
//   - devout, devin, midi: soundcards and MIDI input
//   - config: YAML configuration and logging
//
// This package ties them together: LoadSample fills the template of an
// input pad from an encoded file and Render plays an audio offline into
// a WAV file.
package gsaudio
