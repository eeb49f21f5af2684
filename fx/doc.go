// SPDX-License-Identifier: EPL-2.0

// Package fx provides the effect chains built by the Factory.
//
// Each chain is a set of recalls sharing one name. A static recall at
// audio or channel level owns the ports. A run template is duplicated for
// every run the engine starts, and channel runs that process signals
// create one audio-signal recall per signal of their run.
//
// Supporting chains:
//   - ags-delay exposes the transport clock
//   - ags-count-beats counts sequencer steps inside the loop
//   - ags-fx-pattern and ags-fx-notation start one sub-run per triggered pad
//   - ags-fx-buffer mixes sub-runs into the output masters
//
// Channel-strip effects process the current buffer of their signal in
// place: ags-fx-envelope, ags-fx-volume, ags-fx-eq10 and ags-fx-wah_wah.
// ags-record-midi turns sequencer input into notation and optionally an
// SMF file.
//
// Chains that need the clock depend on ags-delay. Until a run instance of
// it exists they do nothing.
package fx
