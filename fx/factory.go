// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"fmt"
	"slices"

	"github.com/ik5/gsaudio/config"
	"github.com/ik5/gsaudio/engine"
)

// CreateFlags select what Create builds and where.
type CreateFlags uint32

const (
	// FactoryAdd builds the chain on every channel of the range.
	FactoryAdd CreateFlags = 1 << iota
	// FactoryRemap builds the chain only on the channels of the range the
	// container does not cover yet.
	FactoryRemap
	FactoryInput
	FactoryOutput
	// FactoryLive also instantiates the new run templates in the runs
	// already started on the audio.
	FactoryLive
	// FactoryPlay builds into the play context.
	FactoryPlay
	// FactoryRecall builds into the recall context.
	FactoryRecall
)

// chain describes how one effect is built.
type chain struct {
	audioLevel bool
	inputOnly  bool
	// newStatic creates the static recall. ch is nil for audio level
	// chains.
	newStatic func(f *Factory, ch *engine.Channel) engine.Recall
	newRun    func(static engine.Recall) engine.Recall
}

var chains = map[string]chain{
	DelayName: {
		audioLevel: true,
		newStatic:  func(f *Factory, _ *engine.Channel) engine.Recall { return NewDelayAudio(f.transport) },
		newRun:     func(s engine.Recall) engine.Recall { return newDelayAudioRun(s.(*DelayAudio)) },
	},
	CountBeatsName: {
		audioLevel: true,
		newStatic:  func(*Factory, *engine.Channel) engine.Recall { return NewCountBeatsAudio() },
		newRun:     func(s engine.Recall) engine.Recall { return newCountBeatsAudioRun(s.(*CountBeatsAudio)) },
	},
	RecordMidiName: {
		audioLevel: true,
		newStatic: func(f *Factory, _ *engine.Channel) engine.Recall {
			return NewRecordMidiAudio(f.cfg.Recall.NotationOffset, f.cfg.Recall.MIDIRecordDivision)
		},
		newRun: func(s engine.Recall) engine.Recall { return newRecordMidiAudioRun(s.(*RecordMidiAudio)) },
	},
	PatternName: {
		inputOnly: true,
		newStatic: func(*Factory, *engine.Channel) engine.Recall { return NewPatternChannel() },
		newRun:    func(s engine.Recall) engine.Recall { return newPatternChannelRun(s.(*PatternChannel)) },
	},
	NotationName: {
		inputOnly: true,
		newStatic: func(f *Factory, _ *engine.Channel) engine.Recall {
			return NewNotationChannel(f.cfg.Recall.NotationOffset)
		},
		newRun: func(s engine.Recall) engine.Recall { return newNotationChannelRun(s.(*NotationChannel)) },
	},
	BufferName: {
		inputOnly: true,
		newStatic: func(*Factory, *engine.Channel) engine.Recall { return NewBufferChannel() },
		newRun:    func(engine.Recall) engine.Recall { return newBufferChannelRun() },
	},
	EnvelopeName: {
		newStatic: func(*Factory, *engine.Channel) engine.Recall { return NewEnvelopeChannel() },
		newRun:    func(s engine.Recall) engine.Recall { return newEnvelopeChannelRun(s.(*EnvelopeChannel)) },
	},
	VolumeName: {
		newStatic: func(*Factory, *engine.Channel) engine.Recall { return NewVolumeChannel() },
		newRun:    func(s engine.Recall) engine.Recall { return newVolumeChannelRun(s.(*VolumeChannel)) },
	},
	EQ10Name: {
		newStatic: func(_ *Factory, ch *engine.Channel) engine.Recall {
			return NewEQ10Channel(ch.Presets().BufferSize)
		},
		newRun: func(s engine.Recall) engine.Recall { return newEQ10ChannelRun(s.(*EQ10Channel)) },
	},
	WahWahName: {
		newStatic: func(*Factory, *engine.Channel) engine.Recall { return NewWahWahChannel() },
		newRun:    func(s engine.Recall) engine.Recall { return newWahWahChannelRun(s.(*WahWahChannel)) },
	},
}

// Names returns the names of the chains Create knows, sorted.
func Names() []string {
	out := make([]string, 0, len(chains))
	for name := range chains {
		out = append(out, name)
	}
	slices.Sort(out)

	return out
}

// Factory builds effect chains on the audios of one engine.
type Factory struct {
	cfg       config.Config
	transport *engine.Transport
}

func NewFactory(e *engine.Engine) *Factory {
	return &Factory{cfg: e.Config(), transport: e.Transport()}
}

// Create builds the chain called name on audio and returns the recalls it
// added, templates first. Channel chains cover pads [startPad, stopPad)
// and audio channels [startAudioChannel, stopAudioChannel) of the inputs,
// the outputs or both. A nil container is looked up on audio by name, or
// created.
func (f *Factory) Create(audio *engine.Audio, play, recall *engine.RecallContainer,
	name, filename, effect string,
	startAudioChannel, stopAudioChannel, startPad, stopPad, position int,
	flags CreateFlags,
) ([]engine.Recall, error) {
	if audio == nil {
		return nil, ErrNoAudio
	}

	c, ok := chains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}

	var channels []*engine.Channel
	if !c.audioLevel {
		var err error
		channels, err = selectChannels(audio, c, startAudioChannel, stopAudioChannel, startPad, stopPad, flags)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	contexts := []struct {
		play      bool
		flag      CreateFlags
		container *engine.RecallContainer
	}{
		{true, FactoryPlay, play},
		{false, FactoryRecall, recall},
	}

	var out []engine.Recall
	for _, cx := range contexts {
		if flags&cx.flag == 0 {
			continue
		}

		container := cx.container
		if container == nil {
			container = audio.FindRecallContainer(name, cx.play)
		}
		if container == nil {
			container = engine.NewRecallContainer(name, cx.play)
		}
		if container.IsPlay() != cx.play {
			return out, fmt.Errorf("%s: %w for play=%v", name, ErrNoContainer, cx.play)
		}

		audio.AddRecallContainer(container)
		if filename != "" || effect != "" {
			container.SetPlugin(filename, effect)
		}

		b := builder{f: f, c: c, audio: audio, container: container, play: cx.play, position: position, flags: flags}
		if c.audioLevel {
			out = append(out, b.audioChain()...)
		} else {
			out = append(out, b.channelChains(channels)...)
		}
	}

	logger.Debugf("created %s on %s: %d recalls", name, audio.Name(), len(out))

	return out, nil
}

func selectChannels(audio *engine.Audio, c chain, startAC, stopAC, startPad, stopPad int, flags CreateFlags) ([]*engine.Channel, error) {
	var dirs []engine.Direction
	if flags&FactoryInput != 0 || c.inputOnly || flags&(FactoryInput|FactoryOutput) == 0 {
		dirs = append(dirs, engine.Input)
	}
	if flags&FactoryOutput != 0 && !c.inputOnly {
		dirs = append(dirs, engine.Output)
	}

	var out []*engine.Channel
	for _, dir := range dirs {
		if startAC < 0 || startAC > stopAC || stopAC > audio.AudioChannels() ||
			startPad < 0 || startPad > stopPad || stopPad > audio.Pads(dir) {
			return nil, fmt.Errorf("%w: %v pads [%d, %d) audio channels [%d, %d)",
				ErrInvalidRange, dir, startPad, stopPad, startAC, stopAC)
		}

		for pad := startPad; pad < stopPad; pad++ {
			for ac := startAC; ac < stopAC; ac++ {
				if ch := audio.ChannelAt(dir, pad, ac); ch != nil {
					out = append(out, ch)
				}
			}
		}
	}

	return out, nil
}

// builder adds one chain to one context.
type builder struct {
	f         *Factory
	c         chain
	audio     *engine.Audio
	container *engine.RecallContainer
	play      bool
	position  int
	flags     CreateFlags
}

// positions returns where the static recall and its run template go.
func (b builder) positions() (static, run int) {
	if b.position < 0 {
		return -1, -1
	}

	return b.position, b.position + 1
}

func (b builder) audioChain() []engine.Recall {
	if b.flags&FactoryRemap != 0 && len(b.container.Level(engine.LevelAudio)) > 0 {
		return nil
	}

	static := b.c.newStatic(b.f, nil)
	run := b.c.newRun(static)

	sp, rp := b.positions()
	b.audio.InsertRecall(static, b.play, sp)
	b.audio.InsertRecall(run, b.play, rp)
	b.container.Add(static)
	b.container.Add(run)

	out := []engine.Recall{static, run}
	for _, id := range b.liveRuns() {
		if inst := engine.Instantiate(run, id); inst != nil {
			b.audio.AddRecall(inst, b.play)
			out = append(out, inst)
		}
	}

	return out
}

func (b builder) channelChains(channels []*engine.Channel) []engine.Recall {
	var out []engine.Recall
	for _, ch := range channels {
		if b.flags&FactoryRemap != 0 && b.container.CoversChannel(ch) {
			continue
		}

		static := b.c.newStatic(b.f, ch)
		run := b.c.newRun(static)

		sp, rp := b.positions()
		ch.InsertRecall(static, b.play, sp)
		ch.InsertRecall(run, b.play, rp)
		b.container.Add(static)
		b.container.Add(run)
		out = append(out, static, run)

		for _, id := range b.liveRuns() {
			if inst := engine.Instantiate(run, id); inst != nil {
				ch.AddRecall(inst, b.play)
				out = append(out, inst)
			}
		}
	}

	return out
}

// liveRuns returns the started runs of the context when FactoryLive is set.
func (b builder) liveRuns() []*engine.RecallID {
	if b.flags&FactoryLive == 0 {
		return nil
	}

	var out []*engine.RecallID
	for _, id := range b.audio.RecallIDs() {
		if !id.IsSubRun() && !id.IsDone() && (id.Scope() == engine.ScopePlayback) == b.play {
			out = append(out, id)
		}
	}

	return out
}
