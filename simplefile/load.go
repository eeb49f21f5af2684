// SPDX-License-Identifier: EPL-2.0

package simplefile

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/fx"
	"github.com/ik5/gsaudio/stream"
	"github.com/ik5/gsaudio/timeline"
	"github.com/juju/errors"
)

// Read parses a file from r.
func Read(r io.Reader) (*File, error) {
	var f File
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Annotate(err, "decoding simple file")
	}

	if err := checkVersion(f.Version); err != nil {
		return nil, errors.Trace(err)
	}

	return &f, nil
}

// ReadFile parses the file at path.
func ReadFile(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening %q", path)
	}
	defer in.Close()

	f, err := Read(in)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %q", path)
	}

	return f, nil
}

// Load rebuilds the audios of the file. Effect chains are created with
// factory and their port values restored. Presets missing from the file
// are taken from the engine configuration.
func (f *File) Load(e *engine.Engine, factory *fx.Factory) ([]*engine.Audio, error) {
	out := make([]*engine.Audio, 0, len(f.Audios))
	for i := range f.Audios {
		a, err := f.Audios[i].load(e, factory)
		if err != nil {
			return out, errors.Annotatef(err, "audio %q", f.Audios[i].Name)
		}
		out = append(out, a)
	}

	return out, nil
}

func (sa *Audio) presets(e *engine.Engine) (stream.Presets, error) {
	cfg := e.Config()
	p := stream.Presets{
		Channels:   sa.AudioChannels,
		Samplerate: sa.Samplerate,
		BufferSize: sa.BufferSize,
		Format:     cfg.SampleFormat(),
	}

	if p.Channels == 0 {
		p.Channels = 1
	}
	if p.Samplerate == 0 {
		p.Samplerate = cfg.Soundcard.Samplerate
	}
	if p.BufferSize == 0 {
		p.BufferSize = cfg.Soundcard.BufferSize
	}
	if sa.Format != "" {
		format, err := stream.ParseFormat(sa.Format)
		if err != nil {
			return stream.Presets{}, err
		}
		p.Format = format
	}

	return p, nil
}

func (sa *Audio) load(e *engine.Engine, factory *fx.Factory) (*engine.Audio, error) {
	presets, err := sa.presets(e)
	if err != nil {
		return nil, errors.Trace(err)
	}

	flags, err := parseAudioFlags(sa.Flags)
	if err != nil {
		return nil, errors.Trace(err)
	}

	a, err := engine.NewAudio(sa.Name, presets, sa.OutputPads, sa.InputPads, flags)
	if err != nil {
		return nil, errors.Trace(err)
	}
	a.SetMIDIStartMapping(sa.MIDIStartMapping)

	if err := sa.loadRecalls(a, factory); err != nil {
		return nil, err
	}

	for _, sp := range sa.Patterns {
		if err := sp.load(a); err != nil {
			return nil, errors.Annotatef(err, "pattern %s %d", sp.Direction, sp.Line)
		}
	}

	for _, sn := range sa.Notations {
		n, err := sn.load()
		if err != nil {
			return nil, errors.Annotatef(err, "notation %d", sn.Line)
		}
		a.AddNotation(n)
	}

	for _, sau := range sa.Automations {
		ts, err := parseTimestamp(sau.Offset, sau.Unix)
		if err != nil {
			return nil, errors.Annotatef(err, "automation %s", sau.ControlName)
		}

		au := timeline.NewAutomation(sau.Line, ts, sau.ControlName, sau.Lower, sau.Upper)
		for _, acc := range sau.Accelerations {
			au.AddAcceleration(acc.X, acc.Y)
		}
		a.AddAutomation(au)
	}

	logger.Debugf("loaded %s: %d recalls, %d notations", sa.Name, len(sa.Recalls), len(sa.Notations))

	return a, nil
}

// chainKey identifies one Create call: a chain in one context on one
// channel, or on the audio.
type chainKey struct {
	name  string
	play  bool
	input bool
	pad   int
	ac    int
}

// loadRecalls recreates the chains one channel at a time, so that the
// saved recall order is kept, and restores the ports of every recall.
func (sa *Audio) loadRecalls(a *engine.Audio, factory *fx.Factory) error {
	containers := make(map[chainKey]*engine.RecallContainer)
	created := make(map[chainKey][]engine.Recall)

	for _, sr := range sa.Recalls {
		key, flags, err := sr.key()
		if err != nil {
			return errors.Annotatef(err, "recall %s", sr.XMLType)
		}

		recalls, ok := created[key]
		if !ok {
			ck := chainKey{name: key.name, play: key.play}
			if containers[ck] == nil {
				containers[ck] = engine.NewRecallContainer(key.name, key.play)
			}

			var play, recall *engine.RecallContainer
			if key.play {
				play = containers[ck]
			} else {
				recall = containers[ck]
			}

			recalls, err = factory.Create(a, play, recall, sr.Name, sr.Filename, sr.Effect,
				key.ac, key.ac+1, key.pad, key.pad+1, -1, flags)
			if err != nil {
				return errors.Annotatef(err, "recall %s", sr.XMLType)
			}
			created[key] = recalls
		}

		if err := sr.restorePorts(recalls); err != nil {
			return errors.Annotatef(err, "recall %s", sr.XMLType)
		}
	}

	return nil
}

func (sr *Recall) key() (chainKey, fx.CreateFlags, error) {
	key := chainKey{name: sr.Name}
	flags := fx.FactoryRemap

	for _, name := range splitFlags(sr.Flags) {
		switch name {
		case flagPlay:
			key.play = true
			flags |= fx.FactoryPlay
		case flagRecall:
			flags |= fx.FactoryRecall
		case flagInput:
			key.input = true
			flags |= fx.FactoryInput
		case flagOutput:
			flags |= fx.FactoryOutput
		default:
			return chainKey{}, 0, fmt.Errorf("%w: recall flag %q", ErrInvalidFlag, name)
		}
	}

	if flags&(fx.FactoryPlay|fx.FactoryRecall) == 0 {
		return chainKey{}, 0, fmt.Errorf("%w: %q has no context", ErrInvalidFlag, sr.Flags)
	}

	if sr.Pad != nil {
		key.pad = *sr.Pad
	}
	if sr.AudioChannel != nil {
		key.ac = *sr.AudioChannel
	}

	return key, flags, nil
}

// restorePorts writes the saved values into the template among recalls
// whose XML type matches.
func (sr *Recall) restorePorts(recalls []engine.Recall) error {
	for _, r := range recalls {
		b := r.Base()
		if !b.IsTemplate() || b.XMLType() != sr.XMLType {
			continue
		}

		for _, sp := range sr.Ports {
			p := b.Port(sp.Specifier)
			if p == nil {
				logger.Warningf("%v: no port %s", r, sp.Specifier)
				continue
			}
			if err := p.Parse(sp.Value); err != nil {
				return errors.Trace(err)
			}
			if sp.ControlPort != "" && sp.ControlPort != p.ControlPort() {
				logger.Debugf("%v: %s moved from %s to %s", r, sp.Specifier, sp.ControlPort, p.ControlPort())
			}
		}

		return nil
	}

	return nil
}

func (sp *Pattern) load(a *engine.Audio) error {
	dir := engine.Output
	if sp.Direction == flagInput {
		dir = engine.Input
	}

	ch := a.Channel(dir, sp.Line)
	if ch == nil {
		return fmt.Errorf("%w: %s line %d", ErrInvalidChannel, sp.Direction, sp.Line)
	}

	pat := engine.NewPattern(sp.Bank0, sp.Bank1, sp.Length)
	for _, steps := range sp.Steps {
		bits, err := parseSteps(steps.Bits)
		if err != nil {
			return err
		}
		for _, bit := range bits {
			if !pat.IsOn(steps.Index0, steps.Index1, bit) {
				pat.Toggle(steps.Index0, steps.Index1, bit)
			}
		}
	}
	ch.AddPattern(pat)

	return nil
}

func (sn *Notation) load() (*timeline.Notation, error) {
	ts, err := parseTimestamp(sn.Offset, sn.Unix)
	if err != nil {
		return nil, err
	}

	n := timeline.NewNotation(sn.Line, ts)
	for _, s := range sn.Notes {
		note, err := s.load()
		if err != nil {
			return nil, err
		}
		n.AddNote(note, true)
	}

	return n, nil
}

func (s *Note) load() (*timeline.Note, error) {
	flags, err := parseNoteFlags(s.Flags)
	if err != nil {
		return nil, err
	}

	var env timeline.Envelope
	for _, pt := range []struct {
		dst *complex128
		src string
	}{
		{&env.Attack, s.Attack},
		{&env.Decay, s.Decay},
		{&env.Sustain, s.Sustain},
		{&env.Release, s.Release},
		{&env.Ratio, s.Ratio},
	} {
		v, err := strconv.ParseComplex(pt.src, 128)
		if err != nil {
			return nil, err
		}
		*pt.dst = v
	}

	note := timeline.NewNote(s.X0, s.X1, s.Y)
	note.SetVelocity(s.Velocity)
	note.SetFlags(flags)
	note.SetEnvelope(env)

	return note, nil
}
