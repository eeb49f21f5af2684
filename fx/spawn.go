// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"github.com/juju/loggo"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/timeline"
)

var logger = loggo.GetLogger("gsaudio.fx")

// spawnSubRun starts a sub-run of b's run on the recycling of b's channel
// and attaches a copy of the channel's template signal playing note. It
// returns nil when the channel has no template.
func spawnSubRun(b *engine.RecallBase, note *timeline.Note) *engine.AudioSignal {
	ch, id := b.Channel(), b.RecallID()
	if ch == nil || id == nil {
		return nil
	}

	rec := ch.Recycling()
	if rec == nil {
		return nil
	}

	sub := engine.NewRecallID(id.Scope(), engine.NewRecyclingContext(id.Context(), []*engine.Recycling{rec}))
	sig := rec.CreateAudioSignal(sub)
	if sig == nil {
		sub.Done()
		logger.Tracef("%v: line %d has no sample", b, ch.Line())
		return nil
	}

	sig.SetNote(note)

	return sig
}

// playsPattern reports whether run id of a is driven by patterns.
func playsPattern(a *engine.Audio, id *engine.RecallID) bool {
	switch id.Scope() {
	case engine.ScopeSequencer:
		return true
	case engine.ScopeDefault, engine.ScopePlayback:
		return a.HasFlags(engine.AudioPatternMode)
	default:
		return false
	}
}

// playsNotation reports whether run id of a is driven by notation.
func playsNotation(a *engine.Audio, id *engine.RecallID) bool {
	switch id.Scope() {
	case engine.ScopeNotation:
		return true
	case engine.ScopeDefault, engine.ScopePlayback:
		return !a.HasFlags(engine.AudioPatternMode)
	default:
		return false
	}
}

// scopeOf returns the sound scope of b's run, ScopeDefault when unbound.
func scopeOf(b *engine.RecallBase) engine.SoundScope {
	if id := b.RecallID(); id != nil {
		return id.Scope()
	}

	return engine.ScopeDefault
}
