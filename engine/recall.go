// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ik5/gsaudio/port"
)

// RecallState is the lifecycle state of a recall.
type RecallState int

const (
	StateTemplate RecallState = iota
	StatePending
	StateResolved
	StateRunning
	StateDone
	StateFreed
)

func (s RecallState) String() string {
	switch s {
	case StateTemplate:
		return "template"
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFreed:
		return "freed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Level is the object a recall is bound to.
type Level int

const (
	LevelAudio Level = iota
	LevelAudioRun
	LevelChannel
	LevelChannelRun
	LevelAudioSignal
)

func (l Level) String() string {
	switch l {
	case LevelAudio:
		return "audio"
	case LevelAudioRun:
		return "audio-run"
	case LevelChannel:
		return "channel"
	case LevelChannelRun:
		return "channel-run"
	case LevelAudioSignal:
		return "audio-signal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Recall is an effect unit. Concrete recalls embed one of RecallAudio,
// RecallAudioRun, RecallChannel, RecallChannelRun or RecallAudioSignal and
// implement the optional interfaces below for the stages they take part in.
type Recall interface {
	Base() *RecallBase
}

type InitPreRunner interface {
	RunInitPre()
}

type PreRunner interface {
	RunPre()
}

type InterRunner interface {
	RunInter()
}

type PostRunner interface {
	RunPost()
}

// Duplicator creates an unbound instance of a run-level template. The
// engine binds it to the run afterwards.
type Duplicator interface {
	Duplicate() Recall
}

// Disposer releases resources when a recall is freed.
type Disposer interface {
	Dispose()
}

// BufferSizeListener is notified after its channel changed buffer size.
type BufferSizeListener interface {
	BufferSizeChanged(size int)
}

// AudioSignalSpawner is implemented by channel runs processing every
// signal of their run. It returns the audio-signal recall for source, or
// nil to skip it.
type AudioSignalSpawner interface {
	NewAudioSignalRecall(source *AudioSignal) Recall
}

type audioSignalSyncer interface {
	SyncAudioSignals()
}

// RecallBase holds the state shared by every recall.
type RecallBase struct {
	mu sync.Mutex

	self    Recall
	level   Level
	name    string
	xmlType string
	state   RecallState

	recallID    *RecallID
	container   *RecallContainer
	template    Recall
	audio       *Audio
	channel     *Channel
	source      *AudioSignal
	destination *AudioSignal
	parent      Recall
	children    []Recall

	ports    []*port.Port
	deps     []string
	resolved map[string]Recall

	initDone     bool
	doneHandlers []func(Recall)
}

func (b *RecallBase) Base() *RecallBase { return b }

func (b *RecallBase) init(self Recall, name, xmlType string, level Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.self = self
	b.name = name
	b.xmlType = xmlType
	b.level = level
	b.state = StateTemplate
}

// Self returns the concrete recall embedding b.
func (b *RecallBase) Self() Recall { return b.self }

func (b *RecallBase) Level() Level     { return b.level }
func (b *RecallBase) Name() string     { return b.name }
func (b *RecallBase) XMLType() string  { return b.xmlType }
func (b *RecallBase) String() string   { return b.name + "/" + b.level.String() }
func (b *RecallBase) IsTemplate() bool { return b.State() == StateTemplate }
func (b *RecallBase) IsDone() bool     { return b.State() >= StateDone }
func (b *RecallBase) RecallID() *RecallID {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.recallID
}

// Template returns the template an instance was duplicated from.
func (b *RecallBase) Template() Recall {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.template
}

func (b *RecallBase) Parent() Recall {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.parent
}

func (b *RecallBase) State() RecallState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

func (b *RecallBase) Container() *RecallContainer {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.container
}

func (b *RecallBase) setContainer(c *RecallContainer) {
	b.mu.Lock()
	b.container = c
	b.mu.Unlock()
}

func (b *RecallBase) Audio() *Audio {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.audio
}

func (b *RecallBase) SetAudio(a *Audio) {
	b.mu.Lock()
	b.audio = a
	b.mu.Unlock()
}

func (b *RecallBase) Channel() *Channel {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.channel
}

// SetChannel binds the recall to ch and to its audio.
func (b *RecallBase) SetChannel(ch *Channel) {
	b.mu.Lock()
	b.channel = ch
	if ch != nil {
		b.audio = ch.Audio()
	}
	b.mu.Unlock()
}

func (b *RecallBase) Source() *AudioSignal {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.source
}

func (b *RecallBase) Destination() *AudioSignal {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.destination
}

// SetSource binds the signal read by the recall. The destination defaults
// to the source.
func (b *RecallBase) SetSource(sig *AudioSignal) {
	b.mu.Lock()
	b.source = sig
	if b.destination == nil {
		b.destination = sig
	}
	b.mu.Unlock()
}

func (b *RecallBase) SetDestination(sig *AudioSignal) {
	b.mu.Lock()
	b.destination = sig
	b.mu.Unlock()
}

func (b *RecallBase) Children() []Recall {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.children)
}

func (b *RecallBase) AddChild(c Recall) {
	c.Base().mu.Lock()
	c.Base().parent = b.self
	c.Base().mu.Unlock()

	b.mu.Lock()
	b.children = append(b.children, c)
	b.mu.Unlock()
}

// RemoveChild detaches c and reports whether it was a child.
func (b *RecallBase) RemoveChild(c Recall) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.Index(b.children, c)
	if i < 0 {
		return false
	}
	b.children = slices.Delete(b.children, i, i+1)

	return true
}

func (b *RecallBase) AddPort(p *port.Port) {
	b.mu.Lock()
	b.ports = append(b.ports, p)
	b.mu.Unlock()
}

func (b *RecallBase) Ports() []*port.Port {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.ports)
}

// Port returns the port with the given specifier, or nil.
func (b *RecallBase) Port(specifier string) *port.Port {
	return port.Find(b.Ports(), specifier)
}

// AddDependency declares that the recall needs the run instance of the
// audio-run recall called name.
func (b *RecallBase) AddDependency(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !slices.Contains(b.deps, name) {
		b.deps = append(b.deps, name)
	}
}

func (b *RecallBase) Dependencies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.deps)
}

// Dependency returns the resolved instance of name, or nil while it is
// unresolved.
func (b *RecallBase) Dependency(name string) Recall {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.resolved[name]
}

func (b *RecallBase) unresolved() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []string
	for _, name := range b.deps {
		if b.resolved[name] == nil {
			out = append(out, name)
		}
	}

	return out
}

// ResolveDependencies looks up every unresolved dependency among the run
// instances of the recall's audio whose run encloses the recall's run.
// Found instances are kept; missing ones stay nil and are looked up again
// on the next call. A pending recall becomes resolved.
func (b *RecallBase) ResolveDependencies() {
	missing := b.unresolved()
	id, audio := b.RecallID(), b.Audio()

	found := make(map[string]Recall)
	if id != nil && audio != nil {
		for _, name := range missing {
			if dep := audio.findRun(name, id); dep != nil {
				found[name] = dep
			} else {
				logger.Tracef("%v: dependency %s not found", b, name)
			}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.resolved == nil && len(found) > 0 {
		b.resolved = make(map[string]Recall)
	}

	for name, dep := range found {
		if b.resolved[name] == nil {
			b.resolved[name] = dep
		}
	}

	if b.state == StatePending {
		b.state = StateResolved
	}
}

// OnDone registers fn to run once the recall is done.
func (b *RecallBase) OnDone(fn func(Recall)) {
	b.mu.Lock()
	if b.state < StateDone {
		b.doneHandlers = append(b.doneHandlers, fn)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	fn(b.self)
}

// Done ends an instance and its children. Calling it again, or on a
// template, has no effect.
func (b *RecallBase) Done() {
	b.mu.Lock()
	if b.state == StateTemplate || b.state >= StateDone {
		b.mu.Unlock()
		return
	}
	b.state = StateDone
	children := slices.Clone(b.children)
	handlers := b.doneHandlers
	b.doneHandlers = nil
	b.mu.Unlock()

	for _, c := range children {
		c.Base().Done()
	}

	for _, fn := range handlers {
		fn(b.self)
	}
}

// Free releases the recall and its children. It disposes the recall once.
func (b *RecallBase) Free() {
	b.mu.Lock()
	if b.state == StateFreed {
		b.mu.Unlock()
		return
	}
	b.state = StateFreed
	children := b.children
	b.children = nil
	b.resolved = nil
	b.doneHandlers = nil
	b.mu.Unlock()

	for _, c := range children {
		c.Base().Free()
	}

	if d, ok := b.self.(Disposer); ok {
		d.Dispose()
	}
}

// inherit binds a fresh duplicate of template t to run id.
func (b *RecallBase) inherit(t *RecallBase, id *RecallID) {
	t.mu.Lock()
	audio, channel, container := t.audio, t.channel, t.container
	deps := slices.Clone(t.deps)
	template := t.self
	t.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.audio = audio
	b.channel = channel
	b.container = container
	b.deps = deps
	b.template = template
	b.recallID = id
	b.state = StatePending
}

// bindChild binds an audio-signal recall created by channel run parent.
func (b *RecallBase) bindChild(parent *RecallBase, sig *AudioSignal) {
	parent.mu.Lock()
	audio, channel, container := parent.audio, parent.channel, parent.container
	parent.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.audio = audio
	b.channel = channel
	b.container = container
	b.recallID = sig.RecallID()
	b.source = sig
	b.destination = sig
	b.state = StatePending
}

// Instantiate duplicates template t for run id. It returns nil when t
// cannot be duplicated.
func Instantiate(t Recall, id *RecallID) Recall {
	d, ok := t.(Duplicator)
	if !ok {
		logger.Warningf("%v: not a run template", t.Base())
		return nil
	}

	inst := d.Duplicate()
	if inst == nil {
		return nil
	}

	inst.Base().inherit(t.Base(), id)

	return inst
}

// Run drives r and then its children through one stage. Templates and
// done recalls are skipped. A pending recall resolves its dependencies and
// every instance runs its init stage once before its first stage.
func Run(r Recall, stage Stage) {
	b := r.Base()

	switch b.State() {
	case StateTemplate, StateDone, StateFreed:
		return
	}

	if len(b.unresolved()) > 0 || b.State() == StatePending {
		b.ResolveDependencies()
	}

	InitPre(r)

	if s, ok := r.(audioSignalSyncer); ok {
		s.SyncAudioSignals()
	}

	switch stage {
	case StagePre:
		if x, ok := r.(PreRunner); ok {
			x.RunPre()
		}
	case StageInter:
		if x, ok := r.(InterRunner); ok {
			x.RunInter()
		}
	case StagePost:
		if x, ok := r.(PostRunner); ok {
			x.RunPost()
		}
	}

	for _, c := range b.Children() {
		Run(c, stage)
	}
}

// InitPre runs the init stage of r if it has not run yet and marks r
// running.
func InitPre(r Recall) {
	b := r.Base()

	b.mu.Lock()
	if b.initDone || (b.state != StatePending && b.state != StateResolved) {
		b.mu.Unlock()
		return
	}
	b.initDone = true
	b.state = StateRunning
	b.mu.Unlock()

	if x, ok := r.(InitPreRunner); ok {
		x.RunInitPre()
	}
}
