// SPDX-License-Identifier: EPL-2.0

package simplefile

import (
	"bufio"
	"encoding/xml"
	"io"
	"os"
	"strconv"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/timeline"
	"github.com/juju/errors"
)

// New takes a snapshot of audios.
func New(audios ...*engine.Audio) *File {
	f := &File{Version: Version}
	for _, a := range audios {
		f.Audios = append(f.Audios, snapshotAudio(a))
	}

	return f
}

// Write saves audios to w.
func Write(w io.Writer, audios ...*engine.Audio) error {
	return New(audios...).Encode(w)
}

// WriteFile saves audios to the file at path.
func WriteFile(path string, audios ...*engine.Audio) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return errors.Annotatef(err, "creating %q", path)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errors.Annotatef(cerr, "closing %q", path)
		}
	}()

	if err := Write(out, audios...); err != nil {
		return errors.Annotatef(err, "writing %q", path)
	}

	return nil
}

// Encode writes f as an indented XML document.
func (f *File) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xml.Header); err != nil {
		return errors.Trace(err)
	}

	enc := xml.NewEncoder(bw)
	enc.Indent("", "  ")
	if err := enc.Encode(f); err != nil {
		return errors.Annotate(err, "encoding simple file")
	}
	if err := enc.Close(); err != nil {
		return errors.Trace(err)
	}
	if err := bw.WriteByte('\n'); err != nil {
		return errors.Trace(err)
	}

	return errors.Trace(bw.Flush())
}

func snapshotAudio(a *engine.Audio) Audio {
	p := a.Presets()
	out := Audio{
		Name:             a.Name(),
		AudioChannels:    p.Channels,
		Samplerate:       p.Samplerate,
		BufferSize:       p.BufferSize,
		Format:           p.Format.String(),
		OutputPads:       a.Pads(engine.Output),
		InputPads:        a.Pads(engine.Input),
		Flags:            formatAudioFlags(a.Flags()),
		MIDIStartMapping: a.MIDIStartMapping(),
	}

	for _, c := range a.RecallContainers() {
		out.Recalls = append(out.Recalls, snapshotContainer(c)...)
	}

	for _, dir := range []engine.Direction{engine.Output, engine.Input} {
		for _, ch := range a.Channels(dir) {
			for _, pat := range ch.Patterns() {
				out.Patterns = append(out.Patterns, snapshotPattern(ch, pat))
			}
		}
	}

	for _, n := range a.Notations() {
		out.Notations = append(out.Notations, snapshotNotation(n))
	}

	for _, au := range a.Automations() {
		offset, unix := formatTimestamp(au.Timestamp())
		lower, upper := au.Range()
		sa := Automation{
			Line:        au.Line(),
			Offset:      offset,
			Unix:        unix,
			ControlName: au.ControlName(),
			Lower:       lower,
			Upper:       upper,
		}
		for _, acc := range au.Accelerations() {
			sa.Accelerations = append(sa.Accelerations, Acceleration{X: acc.X, Y: acc.Y})
		}
		out.Automations = append(out.Automations, sa)
	}

	return out
}

// snapshotContainer saves the templates of c. Instances created for a
// running context are not saved.
func snapshotContainer(c *engine.RecallContainer) []Recall {
	filename, effect := c.Plugin()

	ctx := flagRecall
	if c.IsPlay() {
		ctx = flagPlay
	}

	var out []Recall
	for _, r := range c.Recalls() {
		b := r.Base()
		if !b.IsTemplate() {
			continue
		}

		sr := Recall{
			Name:     c.Name(),
			XMLType:  b.XMLType(),
			Filename: filename,
			Effect:   effect,
			Flags:    ctx,
		}

		if ch := b.Channel(); ch != nil {
			pad, ac := ch.Pad(), ch.AudioChannel()
			sr.Pad, sr.AudioChannel = &pad, &ac
			sr.Flags += "," + ch.Direction().String()
		}

		for _, p := range b.Ports() {
			if p.IsOutput() {
				continue
			}
			sr.Ports = append(sr.Ports, Port{
				Specifier:   p.Specifier(),
				ControlPort: p.ControlPort(),
				Value:       p.String(),
			})
		}

		out = append(out, sr)
	}

	return out
}

func snapshotPattern(ch *engine.Channel, pat *engine.Pattern) Pattern {
	bank0, bank1, length := pat.Dim()
	out := Pattern{
		Direction: ch.Direction().String(),
		Line:      ch.Line(),
		Bank0:     bank0,
		Bank1:     bank1,
		Length:    length,
	}

	for i := range bank0 {
		for j := range bank1 {
			if steps := pat.Steps(i, j); len(steps) > 0 {
				out.Steps = append(out.Steps, PatternSteps{Index0: i, Index1: j, Bits: formatSteps(steps)})
			}
		}
	}

	return out
}

func snapshotNotation(n *timeline.Notation) Notation {
	offset, unix := formatTimestamp(n.Timestamp())
	out := Notation{Line: n.Line(), Offset: offset, Unix: unix}

	for _, note := range n.Notes() {
		x0, x1 := note.Range()
		env := note.Envelope()
		out.Notes = append(out.Notes, Note{
			X0:       x0,
			X1:       x1,
			Y:        note.Y(),
			Velocity: note.Velocity(),
			Flags:    formatNoteFlags(note.Flags()),
			Attack:   formatComplex(env.Attack),
			Decay:    formatComplex(env.Decay),
			Sustain:  formatComplex(env.Sustain),
			Release:  formatComplex(env.Release),
			Ratio:    formatComplex(env.Ratio),
		})
	}

	return out
}

func formatComplex(c complex128) string {
	return strconv.FormatComplex(c, 'g', -1, 128)
}
