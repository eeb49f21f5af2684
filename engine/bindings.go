// SPDX-License-Identifier: EPL-2.0

package engine

import "slices"

// RecallAudio holds the ports of an audio-level effect. It never runs.
type RecallAudio struct {
	RecallBase
}

// Init must be called by the constructor of the embedding recall.
func (r *RecallAudio) Init(self Recall, name, xmlType string) {
	r.init(self, name, xmlType, LevelAudio)
}

// RecallAudioRun is the per-run instance of an audio-level effect.
type RecallAudioRun struct {
	RecallBase
}

func (r *RecallAudioRun) Init(self Recall, name, xmlType string) {
	r.init(self, name, xmlType, LevelAudioRun)
}

// RecallChannel holds the ports of a channel-level effect. It never runs.
type RecallChannel struct {
	RecallBase
}

func (r *RecallChannel) Init(self Recall, name, xmlType string) {
	r.init(self, name, xmlType, LevelChannel)
}

// RecallChannelRun is the per-run instance of a channel-level effect.
// When the embedding recall is an AudioSignalSpawner, it keeps one child
// per signal of its run in the channel's recycling.
type RecallChannelRun struct {
	RecallBase
}

func (r *RecallChannelRun) Init(self Recall, name, xmlType string) {
	r.init(self, name, xmlType, LevelChannelRun)
}

// SyncAudioSignals creates children for new signals of the run and ends
// the children whose signal left the recycling.
func (r *RecallChannelRun) SyncAudioSignals() {
	spawner, ok := r.Self().(AudioSignalSpawner)
	if !ok {
		return
	}

	ch, id := r.Channel(), r.RecallID()
	if ch == nil || id == nil {
		return
	}

	rec := ch.Recycling()
	if rec == nil {
		return
	}

	signals := rec.AudioSignals()
	bound := make(map[*AudioSignal]bool)

	for _, c := range r.Children() {
		src := c.Base().Source()
		if !slices.Contains(signals, src) {
			c.Base().Done()
			continue
		}
		bound[src] = true
	}

	for _, sig := range signals {
		if bound[sig] || sig.HasFlags(SignalTemplate) {
			continue
		}

		sid := sig.RecallID()
		if sid == nil || sid.IsDone() || !sid.Context().IsDescendantOf(id.Context()) {
			continue
		}

		child := spawner.NewAudioSignalRecall(sig)
		if child == nil {
			continue
		}

		child.Base().bindChild(&r.RecallBase, sig)
		r.AddChild(child)
	}
}

// RecallAudioSignal processes one signal of a run.
type RecallAudioSignal struct {
	RecallBase
}

func (r *RecallAudioSignal) Init(self Recall, name, xmlType string) {
	r.init(self, name, xmlType, LevelAudioSignal)
}
