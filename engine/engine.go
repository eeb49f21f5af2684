// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/ik5/gsaudio/config"
	"github.com/ik5/gsaudio/devin"
	"github.com/ik5/gsaudio/devout"
	"github.com/ik5/gsaudio/stream"
	"github.com/ik5/gsaudio/timeline"
)

var logger = loggo.GetLogger("gsaudio.engine")

type run struct {
	audio *Audio
	id    *RecallID
}

// Engine drives the runs of its audios block by block. It replaces every
// process-wide registry: the transport, the devices and the poll table
// live here and are passed to whoever needs them.
type Engine struct {
	mu sync.Mutex

	cfg        config.Config
	card       devout.Soundcard
	sequencers []devin.Sequencer
	transport  *Transport

	runs      []run
	polls     map[Recall][]func()
	disposals []Recall
	closed    bool
}

// New creates an engine playing to card and reading seqs.
func New(cfg config.Config, card devout.Soundcard, seqs ...devin.Sequencer) *Engine {
	return &Engine{
		cfg:        cfg,
		card:       card,
		sequencers: seqs,
		transport:  NewTransport(cfg),
		polls:      make(map[Recall][]func()),
	}
}

func (e *Engine) Config() config.Config       { return e.cfg }
func (e *Engine) Transport() *Transport       { return e.transport }
func (e *Engine) Soundcard() devout.Soundcard { return e.card }

// Runs returns the RecallIDs of the running runs of a.
func (e *Engine) Runs(a *Audio) []*RecallID {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []*RecallID
	for _, r := range e.runs {
		if r.audio == a {
			out = append(out, r.id)
		}
	}

	return out
}

// Start begins a run of a in scope. The run-level templates of the play
// list (playback scope) or of the recall list (other scopes) are
// duplicated, resolved and initialized, and a master signal is attached
// to every output recycling.
func (e *Engine) Start(a *Audio, scope SoundScope) (*RecallID, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("start %s: invalid %v", a.Name(), scope)
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrEngineClosed
	}

	outputs := a.Channels(Output)
	inputs := a.Channels(Input)
	if len(outputs) == 0 && len(inputs) == 0 {
		return nil, fmt.Errorf("start %s: %w", a.Name(), ErrNoChannels)
	}

	id := NewRecallID(scope, NewRecyclingContext(nil, a.Recyclings()))
	play := scope == ScopePlayback

	var instances []Recall
	for _, t := range a.Recalls(play) {
		if t.Base().IsTemplate() && t.Base().Level() == LevelAudioRun {
			if inst := Instantiate(t, id); inst != nil {
				a.AddRecall(inst, play)
				instances = append(instances, inst)
			}
		}
	}

	for _, ch := range append(inputs, outputs...) {
		for _, t := range ch.Recalls(play) {
			if t.Base().IsTemplate() && t.Base().Level() == LevelChannelRun {
				if inst := Instantiate(t, id); inst != nil {
					ch.AddRecall(inst, play)
					instances = append(instances, inst)
				}
			}
		}
	}

	for _, ch := range outputs {
		if rec := ch.OwnRecycling(); rec != nil {
			master := NewAudioSignal(rec.Presets(), id, 1)
			master.SetFlags(SignalMaster)
			rec.Add(master)
		}
	}

	// every instance exists before the first lookup
	for _, inst := range instances {
		inst.Base().ResolveDependencies()
	}

	for _, inst := range instances {
		InitPre(inst)
	}

	a.addRecallID(id)

	e.mu.Lock()
	e.runs = append(e.runs, run{audio: a, id: id})
	e.mu.Unlock()

	logger.Debugf("started %s in %v with %d recalls", a.Name(), scope, len(instances))

	return id, nil
}

// Stop ends run id: its recalls are done and freed, its signals removed.
func (e *Engine) Stop(id *RecallID) error {
	e.mu.Lock()
	i := slices.IndexFunc(e.runs, func(r run) bool { return r.id == id })
	if i < 0 {
		e.mu.Unlock()
		return ErrRunNotFound
	}
	r := e.runs[i]
	e.runs = slices.Delete(e.runs, i, i+1)
	e.mu.Unlock()

	play := id.Scope() == ScopePlayback
	for _, rc := range r.recalls(play) {
		rc.Base().Done()
	}

	e.sweep(r)

	for _, rec := range r.audio.Recyclings() {
		for _, sig := range rec.AudioSignals() {
			if sid := sig.RecallID(); sid != nil && sid.Context().IsDescendantOf(id.Context()) {
				rec.Remove(sig)
				sid.Done()
			}
		}
	}

	id.Done()
	r.audio.removeRecallID(id)
	e.Poll()

	logger.Debugf("stopped %s in %v", r.audio.Name(), id.Scope())

	return nil
}

// recalls returns the instances of the run in processing order.
func (r run) recalls(play bool) []Recall {
	var out []Recall

	add := func(list []Recall) {
		for _, rc := range list {
			if rc.Base().RecallID() == r.id {
				out = append(out, rc)
			}
		}
	}

	add(r.audio.Recalls(play))
	for _, ch := range r.audio.Channels(Input) {
		add(ch.Recalls(play))
	}
	for _, ch := range r.audio.Channels(Output) {
		add(ch.Recalls(play))
	}

	return out
}

// RunBlock processes one block of every run and plays it.
func (e *Engine) RunBlock() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	runs := slices.Clone(e.runs)
	seqs := slices.Clone(e.sequencers)
	e.mu.Unlock()

	for _, seq := range seqs {
		seq.Tic()
	}

	for _, r := range runs {
		r.clearMasters()
		e.applyAutomation(r)
	}

	for _, stage := range []Stage{StagePre, StageInter, StagePost} {
		for _, r := range runs {
			for _, rc := range r.recalls(r.id.Scope() == ScopePlayback) {
				Run(rc, stage)
			}
		}
	}

	e.mix(runs)

	for _, r := range runs {
		r.removeFinishedSignals()
		e.sweep(r)
		r.advance()
	}

	e.transport.Tick()

	if err := e.card.Play(); err != nil {
		return errors.Annotate(err, "playing block")
	}

	return nil
}

// RunBlocks runs n blocks, or until ctx is done when n <= 0.
func (e *Engine) RunBlocks(ctx context.Context, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.RunBlock(); err != nil {
			return err
		}
	}

	return nil
}

func (r run) masters() []*AudioSignal {
	var out []*AudioSignal
	for _, ch := range r.audio.Channels(Output) {
		if rec := ch.OwnRecycling(); rec != nil {
			if m := rec.Master(r.id); m != nil {
				out = append(out, m)
			}
		}
	}

	return out
}

func (r run) clearMasters() {
	for _, m := range r.masters() {
		if buf := m.StreamCurrent(); buf != nil {
			buf.Clear()
		}
	}
}

func (e *Engine) applyAutomation(r run) {
	offset := e.transport.NoteOffset()
	ts := timeline.OffsetTimestamp(offset, e.cfg.Recall.AutomationOffset)
	play := r.id.Scope() == ScopePlayback

	for _, ch := range r.audio.Channels(Input) {
		automations := r.audio.FindAutomations(ch.Line(), ts)
		if len(automations) == 0 {
			continue
		}

		recalls := ch.Recalls(play)
		for _, au := range automations {
			v, ok := au.ValueAt(float64(offset))
			if !ok {
				continue
			}

			for _, rc := range recalls {
				if p := rc.Base().Port(au.ControlName()); p != nil {
					p.SafeWriteClamped(v)
				}
			}
		}
	}
}

// mix adds the master signals into the soundcard buffer. No object lock
// is held while the buffer lock is.
func (e *Engine) mix(runs []run) {
	type source struct {
		ac  int
		buf *stream.Buffer
	}

	var sources []source
	for _, r := range runs {
		for _, ch := range r.audio.Channels(Output) {
			rec := ch.OwnRecycling()
			if rec == nil {
				continue
			}

			if m := rec.Master(r.id); m != nil {
				if buf := m.StreamCurrent(); buf != nil {
					sources = append(sources, source{ac: ch.AudioChannel(), buf: buf})
				}
			}
		}
	}

	channels := e.card.Presets().Channels

	e.card.LockBuffer()
	defer e.card.UnlockBuffer()

	for _, s := range sources {
		devout.Interleave(e.card.Buffer(), channels, s.ac%channels, s.buf)
	}
}

// removeFinishedSignals detaches the sub-run signals that are exhausted
// or whose run is done, and ends their runs.
func (r run) removeFinishedSignals() {
	for _, rec := range r.audio.Recyclings() {
		for _, sig := range rec.AudioSignals() {
			sid := sig.RecallID()
			if sid == nil || sid == r.id || !sid.Context().IsDescendantOf(r.id.Context()) {
				continue
			}

			if sig.Exhausted() || sid.IsDone() {
				rec.Remove(sig)
				sid.Done()
			}
		}
	}
}

// advance moves every sub-run signal to its next buffer.
func (r run) advance() {
	for _, rec := range r.audio.Recyclings() {
		for _, sig := range rec.AudioSignals() {
			if sid := sig.RecallID(); sid != nil && sid != r.id && sid.Context().IsDescendantOf(r.id.Context()) {
				sig.Next()
			}
		}
	}
}

// sweep removes the done instances of run r and their done children from
// the graph and queues them for disposal.
func (e *Engine) sweep(r run) {
	play := r.id.Scope() == ScopePlayback

	var freed []Recall
	for _, rc := range r.recalls(play) {
		b := rc.Base()
		if b.IsDone() {
			if ch := b.Channel(); ch != nil && b.Level() == LevelChannelRun {
				ch.RemoveRecall(rc, play)
			} else {
				r.audio.RemoveRecall(rc, play)
			}
			freed = append(freed, rc)
			continue
		}

		for _, c := range b.Children() {
			if c.Base().IsDone() {
				b.RemoveChild(c)
				freed = append(freed, c)
			}
		}
	}

	if len(freed) == 0 {
		return
	}

	e.mu.Lock()
	e.disposals = append(e.disposals, freed...)
	e.mu.Unlock()
}

// RegisterPoll adds a callback run by Poll while r is alive.
func (e *Engine) RegisterPoll(r Recall, fn func()) {
	e.mu.Lock()
	e.polls[r] = append(e.polls[r], fn)
	e.mu.Unlock()
}

// Polled reports whether r has poll callbacks.
func (e *Engine) Polled(r Recall) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.polls[r]) > 0
}

// Poll frees the recalls swept since the last call, purging their poll
// callbacks, and then runs the remaining callbacks. It belongs to the
// control side and may block.
func (e *Engine) Poll() {
	e.mu.Lock()
	disposals := e.disposals
	e.disposals = nil
	for _, r := range disposals {
		e.purge(r)
	}

	var fns []func()
	for _, list := range e.polls {
		fns = append(fns, list...)
	}
	e.mu.Unlock()

	for _, r := range disposals {
		r.Base().Free()
	}

	for _, fn := range fns {
		fn()
	}
}

// purge drops the poll callbacks of r and its children. Called with e.mu held.
func (e *Engine) purge(r Recall) {
	delete(e.polls, r)
	for _, c := range r.Base().Children() {
		e.purge(c)
	}
}

// Close stops every run and closes the soundcard.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	runs := slices.Clone(e.runs)
	e.mu.Unlock()

	for _, r := range runs {
		if err := e.Stop(r.id); err != nil {
			logger.Warningf("close: %v", err)
		}
	}

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	return errors.Annotate(e.card.Close(), "closing soundcard")
}
