// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"os"
	"slices"
	"sync"

	"github.com/juju/errors"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/midi"
	"github.com/ik5/gsaudio/timeline"
)

const (
	RecordMidiName = "ags-record-midi"

	recordMidiAudioXML    = "ags-record-midi-audio"
	recordMidiAudioRunXML = "ags-record-midi-audio-run"

	recordPort      = "./record[0]"
	filenamePort    = "./filename[0]"
	midiChannelPort = "./midi-channel[0]"
)

// RecordMidiAudio owns the recording ports.
type RecordMidiAudio struct {
	engine.RecallAudio

	window   uint64
	division uint16
}

// NewRecordMidiAudio creates the static recall. window is the notation
// bucket size, division the resolution of the written file.
func NewRecordMidiAudio(window uint64, division uint16) *RecordMidiAudio {
	r := &RecordMidiAudio{window: window, division: division}
	r.Init(r, RecordMidiName, recordMidiAudioXML)
	addPorts(&r.RecallBase, []portSpec{
		boolPort(recordPort, false),
		pointerPort(filenamePort),
		intPort(midiChannelPort, 0, 15, 0),
	})

	return r
}

// RecordMidiAudioRun turns the sequencer input of its audio into notes.
// Notes are matched to key-off and key-pressure by pad. When a pad has
// several open notes the most recent one is matched.
type RecordMidiAudioRun struct {
	engine.RecallAudioRun

	static *RecordMidiAudio

	mu       sync.Mutex
	live     map[int][]*timeline.Note
	recorder *midi.Recorder
	file     *os.File
}

func newRecordMidiAudioRun(static *RecordMidiAudio) *RecordMidiAudioRun {
	r := &RecordMidiAudioRun{static: static, live: make(map[int][]*timeline.Note)}
	r.Init(r, RecordMidiName, recordMidiAudioRunXML)
	r.AddDependency(DelayName)

	return r
}

func (r *RecordMidiAudioRun) Duplicate() engine.Recall { return newRecordMidiAudioRun(r.static) }

// RunInitPre opens the file recorded to when the record port is set.
func (r *RecordMidiAudioRun) RunInitPre() {
	st := &r.static.RecallBase
	if !readBool(st, recordPort) {
		return
	}

	name := readString(st, filenamePort)
	if name == "" {
		return
	}

	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		logger.Errorf("%v: %v", r, errors.Annotatef(err, "opening %s", name))
		return
	}

	bpm := 0.0
	if d := delayOf(&r.RecallBase); d != nil {
		bpm = d.BPM()
	}

	r.mu.Lock()
	r.file = f
	r.recorder = midi.NewRecorder(r.static.division, bpm)
	r.mu.Unlock()
}

func (r *RecordMidiAudioRun) RunPre() {
	audio := r.Audio()
	if audio == nil {
		return
	}

	seq := audio.Sequencer()
	delay := delayOf(&r.RecallBase)
	if seq == nil || delay == nil {
		return
	}

	seq.LockBuffer()
	raw := slices.Clone(seq.Buffer())
	seq.UnlockBuffer()

	if len(raw) == 0 {
		return
	}

	tick := delay.NoteOffset()
	channel := int(readFloat(&r.static.RecallBase, midiChannelPort, 0))
	mapping := audio.Mapping()

	for _, msg := range midi.Messages(raw) {
		status := msg[0]
		kind := midi.Kind(status)
		if kind >= midi.System || midi.Channel(status) != channel || len(msg) < 3 {
			continue
		}

		pad, ok := mapping.Pad(int(msg[1]))
		if !ok {
			logger.Tracef("%v: key %d outside the pads", r, msg[1])
			continue
		}

		switch {
		case kind == midi.KeyOn && msg[2] > 0:
			r.open(audio, pad, tick, msg[2])
		case kind == midi.KeyOn, kind == midi.KeyOff:
			r.close(pad, tick)
		case kind == midi.KeyPressure:
			r.extend(pad, tick)
		}
	}

	r.mu.Lock()
	rec := r.recorder
	r.mu.Unlock()

	if rec != nil && readBool(&r.static.RecallBase, recordPort) {
		rec.Add(delay.NoteOffsetAbsolute(), raw)
	}
}

// open starts a one tick note at pad in the notation of every audio
// channel.
func (r *RecordMidiAudioRun) open(audio *engine.Audio, pad int, tick uint64, velocity byte) {
	note := timeline.NewNote(tick, tick+1, uint32(pad))
	note.SetVelocity(velocity)
	note.SetFlags(timeline.NoteFeed)

	ts := timeline.OffsetTimestamp(tick, r.static.window)
	for line := range audio.AudioChannels() {
		audio.NotationBucket(line, ts).AddNote(note, false)
	}

	r.mu.Lock()
	r.live[pad] = append(r.live[pad], note)
	r.mu.Unlock()
}

// top returns the most recent open note of pad, popping it when pop is set.
func (r *RecordMidiAudioRun) top(pad int, pop bool) *timeline.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes := r.live[pad]
	if len(notes) == 0 {
		return nil
	}

	note := notes[len(notes)-1]
	if pop {
		if len(notes) == 1 {
			delete(r.live, pad)
		} else {
			r.live[pad] = notes[:len(notes)-1]
		}
	}

	return note
}

func (r *RecordMidiAudioRun) close(pad int, tick uint64) {
	if note := r.top(pad, true); note != nil {
		note.SetX1(tick)
		note.UnsetFlags(timeline.NoteFeed)
	}
}

func (r *RecordMidiAudioRun) extend(pad int, tick uint64) {
	if note := r.top(pad, false); note != nil {
		note.SetX1(max(note.X1(), tick))
	}
}

// LiveNotes returns the open notes ordered by pad.
func (r *RecordMidiAudioRun) LiveNotes() []*timeline.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	pads := make([]int, 0, len(r.live))
	for pad := range r.live {
		pads = append(pads, pad)
	}
	slices.Sort(pads)

	var out []*timeline.Note
	for _, pad := range pads {
		out = append(out, r.live[pad]...)
	}

	return out
}

// Dispose writes the recording and closes the file.
func (r *RecordMidiAudioRun) Dispose() {
	r.mu.Lock()
	f, rec := r.file, r.recorder
	r.file, r.recorder = nil, nil
	r.mu.Unlock()

	if f == nil {
		return
	}

	if _, err := rec.WriteTo(f); err != nil && errors.Cause(err) != midi.ErrNothingRecorded {
		logger.Errorf("%v: %v", r, errors.Annotatef(err, "writing %s", f.Name()))
	}

	if err := f.Close(); err != nil {
		logger.Errorf("%v: %v", r, errors.Annotatef(err, "closing %s", f.Name()))
	}
}
