// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"slices"
	"sync"

	"github.com/ik5/gsaudio/stream"
)

// Recycling owns the AudioSignals alive for one channel.
type Recycling struct {
	mu sync.Mutex

	channel *Channel
	presets stream.Presets
	signals []*AudioSignal
}

func NewRecycling(ch *Channel, presets stream.Presets) *Recycling {
	presets.Channels = 1

	return &Recycling{channel: ch, presets: presets}
}

func (r *Recycling) Channel() *Channel { return r.channel }

func (r *Recycling) Presets() stream.Presets {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.presets
}

// AudioSignals returns a snapshot of the signals.
func (r *Recycling) AudioSignals() []*AudioSignal {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.signals)
}

// Add attaches sig, converting it to the recycling's presets first.
func (r *Recycling) Add(sig *AudioSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.signals, sig) {
		return
	}

	if sig.Presets() != r.presets {
		if err := sig.SetPresets(r.presets); err != nil {
			logger.Warningf("add audio signal: %v", err)
		}
	}

	sig.setRecycling(r)
	r.signals = append(r.signals, sig)
}

// Remove detaches sig and reports whether it was attached.
func (r *Recycling) Remove(sig *AudioSignal) bool {
	r.mu.Lock()
	i := slices.Index(r.signals, sig)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	r.signals = slices.Delete(r.signals, i, i+1)
	r.mu.Unlock()

	sig.setRecycling(nil)

	return true
}

// Template returns the template signal, or nil.
func (r *Recycling) Template() *AudioSignal {
	for _, sig := range r.AudioSignals() {
		if sig.HasFlags(SignalTemplate) {
			return sig
		}
	}

	return nil
}

// SetTemplate replaces the template signal.
func (r *Recycling) SetTemplate(sig *AudioSignal) {
	if old := r.Template(); old != nil {
		r.Remove(old)
	}

	sig.SetFlags(SignalTemplate)
	r.Add(sig)
}

// Find returns the signals bound to id.
func (r *Recycling) Find(id *RecallID) []*AudioSignal {
	var out []*AudioSignal
	for _, sig := range r.AudioSignals() {
		if sig.RecallID() == id {
			out = append(out, sig)
		}
	}

	return out
}

// Master returns the master signal of run id, or nil.
func (r *Recycling) Master(id *RecallID) *AudioSignal {
	for _, sig := range r.Find(id) {
		if sig.HasFlags(SignalMaster) {
			return sig
		}
	}

	return nil
}

// CreateAudioSignal duplicates the template for sub-run id and attaches
// the copy. It returns nil when there is no template.
func (r *Recycling) CreateAudioSignal(id *RecallID) *AudioSignal {
	template := r.Template()
	if template == nil || template.Length() == 0 {
		logger.Tracef("create audio signal: no template")
		return nil
	}

	sig := template.Duplicate(id)
	r.Add(sig)

	return sig
}

// SetPresets reallocates every attached signal under the recycling lock,
// so no signal is visible with the old buffer size afterwards.
func (r *Recycling) SetPresets(p stream.Presets) error {
	p.Channels = 1

	r.mu.Lock()
	defer r.mu.Unlock()

	r.presets = p
	for _, sig := range r.signals {
		if err := sig.SetPresets(p); err != nil {
			return err
		}
	}

	return nil
}
