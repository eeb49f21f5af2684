// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ik5/gsaudio/devin"
	"github.com/ik5/gsaudio/midi"
	"github.com/ik5/gsaudio/stream"
	"github.com/ik5/gsaudio/timeline"
)

// AudioFlags select the topology and playback mode of an Audio.
type AudioFlags uint32

const (
	AudioOutputHasRecycling AudioFlags = 1 << iota
	AudioInputHasRecycling
	// AudioSync routes every input line to the output line of the same
	// pad. Without it inputs are mixed into the first output pad.
	AudioSync
	AudioAsync
	// AudioReverseMapping mirrors the key to pad mapping.
	AudioReverseMapping
	// AudioPatternMode plays patterns; without it notation is played.
	AudioPatternMode
)

// Audio is an instrument or track: a grid of channels plus its notation,
// automation and wave data and its effect chains.
type Audio struct {
	mu sync.Mutex

	name    string
	flags   AudioFlags
	presets stream.Presets

	outputPads, inputPads int
	outputs, inputs       []*Channel

	notations   []*timeline.Notation
	automations []*timeline.Automation
	waves       []*timeline.Wave

	play       []Recall
	recall     []Recall
	containers []*RecallContainer
	recallIDs  []*RecallID

	midiStartMapping int
	sequencer        devin.Sequencer
}

// NewAudio creates an audio of presets.Channels audio channels with the
// given pad counts.
func NewAudio(name string, presets stream.Presets, outputPads, inputPads int, flags AudioFlags) (*Audio, error) {
	if !presets.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPresets, presets)
	}

	a := &Audio{name: name, flags: flags, presets: presets}

	a.mu.Lock()
	a.outputPads, a.inputPads = max(outputPads, 0), max(inputPads, 0)
	a.outputs = a.rebuild(Output, nil, a.outputPads, 0, presets.Channels)
	a.inputs = a.rebuild(Input, nil, a.inputPads, 0, presets.Channels)
	a.mu.Unlock()

	return a, nil
}

func (a *Audio) Name() string { return a.name }

func (a *Audio) Flags() AudioFlags {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.flags
}

func (a *Audio) HasFlags(f AudioFlags) bool { return a.Flags()&f == f }

func (a *Audio) SetFlags(f AudioFlags) {
	a.mu.Lock()
	a.flags |= f
	a.mu.Unlock()
}

func (a *Audio) UnsetFlags(f AudioFlags) {
	a.mu.Lock()
	a.flags &^= f
	a.mu.Unlock()
}

func (a *Audio) Presets() stream.Presets {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.presets
}

func (a *Audio) AudioChannels() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.presets.Channels
}

// Pads returns the pad count in direction dir.
func (a *Audio) Pads(dir Direction) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if dir == Input {
		return a.inputPads
	}

	return a.outputPads
}

// Channels returns the channels of dir ordered by line.
func (a *Audio) Channels(dir Direction) []*Channel {
	a.mu.Lock()
	defer a.mu.Unlock()

	if dir == Input {
		return slices.Clone(a.inputs)
	}

	return slices.Clone(a.outputs)
}

// Channel returns the channel at line, or nil.
func (a *Audio) Channel(dir Direction, line int) *Channel {
	chs := a.Channels(dir)
	if line < 0 || line >= len(chs) {
		return nil
	}

	return chs[line]
}

// ChannelAt returns the channel at pad and audio channel, or nil.
func (a *Audio) ChannelAt(dir Direction, pad, audioChannel int) *Channel {
	n := a.AudioChannels()
	if audioChannel < 0 || audioChannel >= n {
		return nil
	}

	return a.Channel(dir, pad*n+audioChannel)
}

// SetPads resizes the grid of dir. Existing channels keep their recalls
// and recyclings, removed channels are freed and every channel is relinked.
func (a *Audio) SetPads(dir Direction, pads int) {
	pads = max(pads, 0)

	a.mu.Lock()
	n := a.presets.Channels
	grid, count := &a.outputs, &a.outputPads
	if dir == Input {
		grid, count = &a.inputs, &a.inputPads
	}

	var removed []*Channel
	for _, ch := range *grid {
		if ch.Pad() >= pads {
			removed = append(removed, ch)
		}
	}

	*grid = a.rebuild(dir, *grid, pads, n, n)
	*count = pads
	a.mu.Unlock()

	for _, ch := range removed {
		ch.free()
	}
}

// SetAudioChannels changes the number of audio channels of both grids.
func (a *Audio) SetAudioChannels(n int) {
	n = max(n, 0)

	a.mu.Lock()
	old := a.presets.Channels
	var removed []*Channel
	for _, ch := range append(slices.Clone(a.outputs), a.inputs...) {
		if ch.AudioChannel() >= n {
			removed = append(removed, ch)
		}
	}
	a.outputs = a.rebuild(Output, a.outputs, a.outputPads, old, n)
	a.inputs = a.rebuild(Input, a.inputs, a.inputPads, old, n)
	a.presets.Channels = n
	a.mu.Unlock()

	for _, ch := range removed {
		ch.free()
	}
}

// rebuild returns the grid of pads x n channels reusing the channels of
// old, laid out with oldN audio channels, and relinks it. It is called
// with a.mu held.
func (a *Audio) rebuild(dir Direction, old []*Channel, pads, oldN, n int) []*Channel {
	withRecycling := a.flags&AudioOutputHasRecycling != 0
	if dir == Input {
		withRecycling = a.flags&AudioInputHasRecycling != 0
	}

	grid := make([]*Channel, pads*n)
	for pad := range pads {
		for ac := range n {
			var ch *Channel
			if ac < oldN && pad*oldN+ac < len(old) {
				ch = old[pad*oldN+ac]
			}
			if ch == nil {
				ch = newChannel(a, dir, a.presets, withRecycling)
			}

			ch.mu.Lock()
			ch.pad, ch.audioChannel, ch.line = pad, ac, pad*n+ac
			ch.mu.Unlock()

			grid[pad*n+ac] = ch
		}
	}

	at := func(pad, ac int) *Channel {
		if pad < 0 || pad >= pads || ac < 0 || ac >= n {
			return nil
		}
		return grid[pad*n+ac]
	}

	for _, ch := range grid {
		ch.mu.Lock()
		ch.prev, ch.next = at(ch.pad, ch.audioChannel-1), at(ch.pad, ch.audioChannel+1)
		ch.prevPad, ch.nextPad = at(ch.pad-1, ch.audioChannel), at(ch.pad+1, ch.audioChannel)
		ch.mu.Unlock()
	}

	return grid
}

// Notations returns the notation buckets ordered by timestamp and line.
func (a *Audio) Notations() []*timeline.Notation {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.notations)
}

func (a *Audio) AddNotation(n *timeline.Notation) {
	a.mu.Lock()
	a.notations = timeline.Insert(a.notations, n)
	a.mu.Unlock()
}

// FindNotation returns the bucket of line nearest before ts.
func (a *Audio) FindNotation(line int, ts timeline.Timestamp) *timeline.Notation {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, _ := timeline.FindNear(a.notations, line, ts)

	return n
}

// NotationBucket returns the bucket of line starting exactly at ts,
// creating it when missing.
func (a *Audio) NotationBucket(line int, ts timeline.Timestamp) *timeline.Notation {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n, ok := timeline.FindNear(a.notations, line, ts); ok && n.Timestamp().Compare(ts) == 0 {
		return n
	}

	n := timeline.NewNotation(line, ts)
	a.notations = timeline.Insert(a.notations, n)

	return n
}

// NotesStartingAt returns the notes of line starting at tick offset.
func (a *Audio) NotesStartingAt(line int, offset, window uint64) []*timeline.Note {
	n := a.FindNotation(line, timeline.OffsetTimestamp(offset, window))
	if n == nil {
		return nil
	}

	return n.StartingAt(offset)
}

func (a *Audio) Automations() []*timeline.Automation {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.automations)
}

func (a *Audio) AddAutomation(au *timeline.Automation) {
	a.mu.Lock()
	a.automations = timeline.Insert(a.automations, au)
	a.mu.Unlock()
}

// FindAutomations returns, for every control of line, the bucket nearest
// before ts.
func (a *Audio) FindAutomations(line int, ts timeline.Timestamp) []*timeline.Automation {
	a.mu.Lock()
	defer a.mu.Unlock()

	byControl := make(map[string][]*timeline.Automation)
	for _, au := range a.automations {
		byControl[au.ControlName()] = append(byControl[au.ControlName()], au)
	}

	var out []*timeline.Automation
	for _, items := range byControl {
		if au, ok := timeline.FindNear(items, line, ts); ok {
			out = append(out, au)
		}
	}

	slices.SortFunc(out, func(x, y *timeline.Automation) int {
		switch {
		case x.ControlName() < y.ControlName():
			return -1
		case x.ControlName() > y.ControlName():
			return 1
		default:
			return 0
		}
	})

	return out
}

func (a *Audio) Waves() []*timeline.Wave {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.waves)
}

func (a *Audio) AddWave(w *timeline.Wave) {
	a.mu.Lock()
	a.waves = timeline.Insert(a.waves, w)
	a.mu.Unlock()
}

func (a *Audio) FindWave(line int, ts timeline.Timestamp) *timeline.Wave {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, _ := timeline.FindNear(a.waves, line, ts)

	return w
}

func (a *Audio) list(play bool) *[]Recall {
	if play {
		return &a.play
	}

	return &a.recall
}

// Recalls returns a snapshot of the audio-level play or recall list.
func (a *Audio) Recalls(play bool) []Recall {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(*a.list(play))
}

func (a *Audio) AddRecall(r Recall, play bool) {
	a.InsertRecall(r, play, -1)
}

// InsertRecall inserts r at position, or appends it when position is out
// of range, and binds it to a.
func (a *Audio) InsertRecall(r Recall, play bool, position int) {
	if r.Base().Audio() != a {
		r.Base().SetAudio(a)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	l := a.list(play)
	if slices.Contains(*l, r) {
		return
	}

	if position < 0 || position > len(*l) {
		position = len(*l)
	}
	*l = slices.Insert(*l, position, r)
}

func (a *Audio) RemoveRecall(r Recall, play bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	l := a.list(play)
	i := slices.Index(*l, r)
	if i < 0 {
		return false
	}
	*l = slices.Delete(*l, i, i+1)

	return true
}

func (a *Audio) AddRecallContainer(c *RecallContainer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !slices.Contains(a.containers, c) {
		a.containers = append(a.containers, c)
	}
}

func (a *Audio) RemoveRecallContainer(c *RecallContainer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := slices.Index(a.containers, c)
	if i < 0 {
		return false
	}
	a.containers = slices.Delete(a.containers, i, i+1)

	return true
}

func (a *Audio) RecallContainers() []*RecallContainer {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.containers)
}

// FindRecallContainer returns the container of effect name in the play or
// recall context, or nil.
func (a *Audio) FindRecallContainer(name string, play bool) *RecallContainer {
	for _, c := range a.RecallContainers() {
		if c.Name() == name && c.IsPlay() == play {
			return c
		}
	}

	return nil
}

func (a *Audio) RecallIDs() []*RecallID {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.recallIDs)
}

func (a *Audio) addRecallID(id *RecallID) {
	a.mu.Lock()
	a.recallIDs = append(a.recallIDs, id)
	a.mu.Unlock()
}

func (a *Audio) removeRecallID(id *RecallID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i := slices.Index(a.recallIDs, id); i >= 0 {
		a.recallIDs = slices.Delete(a.recallIDs, i, i+1)
	}
}

// Recyclings returns the recyclings owned by the channels of a.
func (a *Audio) Recyclings() []*Recycling {
	var out []*Recycling
	for _, ch := range append(a.Channels(Output), a.Channels(Input)...) {
		if r := ch.OwnRecycling(); r != nil {
			out = append(out, r)
		}
	}

	return out
}

// SetPresets changes samplerate, format and buffer size of every channel.
// The audio channel count is changed with SetAudioChannels.
func (a *Audio) SetPresets(p stream.Presets) error {
	a.mu.Lock()
	p.Channels = a.presets.Channels
	if !p.Valid() {
		a.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidPresets, p)
	}
	a.presets = p
	chs := append(slices.Clone(a.outputs), a.inputs...)
	a.mu.Unlock()

	for _, ch := range chs {
		if err := ch.SetPresets(p); err != nil {
			return err
		}
	}

	return nil
}

// SetBufferSize changes the buffer size of every channel.
func (a *Audio) SetBufferSize(size int) error {
	p := a.Presets()
	p.BufferSize = size

	return a.SetPresets(p)
}

func (a *Audio) MIDIStartMapping() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.midiStartMapping
}

func (a *Audio) SetMIDIStartMapping(key int) {
	a.mu.Lock()
	a.midiStartMapping = key
	a.mu.Unlock()
}

// Mapping returns the key to input pad mapping.
func (a *Audio) Mapping() midi.Mapping {
	a.mu.Lock()
	defer a.mu.Unlock()

	return midi.Mapping{
		StartKey: a.midiStartMapping,
		Pads:     a.inputPads,
		Reverse:  a.flags&AudioReverseMapping != 0,
	}
}

// Sequencer returns the MIDI input device, or nil.
func (a *Audio) Sequencer() devin.Sequencer {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.sequencer
}

func (a *Audio) SetSequencer(seq devin.Sequencer) {
	a.mu.Lock()
	a.sequencer = seq
	a.mu.Unlock()
}

// findRun returns the live run instance called name whose run encloses
// run id.
func (a *Audio) findRun(name string, id *RecallID) Recall {
	for _, r := range a.Recalls(id.Scope() == ScopePlayback) {
		b := r.Base()
		if b.Name() != name || b.Level() != LevelAudioRun {
			continue
		}

		switch b.State() {
		case StateTemplate, StateDone, StateFreed:
			continue
		}

		if rid := b.RecallID(); rid != nil && id.Context().IsDescendantOf(rid.Context()) {
			return r
		}
	}

	return nil
}
