// SPDX-License-Identifier: EPL-2.0

package midi

import (
	"io"
	"sync"

	"github.com/juju/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultDivision is the SMF resolution in ticks per quarter note.
const DefaultDivision = 96

// Recorder collects raw messages into one SMF track with delta times.
// Ticks are sequencer ticks, sixteenth notes, and are scaled to the file
// division on Add.
type Recorder struct {
	mu sync.Mutex

	division uint16
	bpm      float64
	track    smf.Track
	lastTick uint64
	started  bool
	events   int
}

// NewRecorder creates a recorder writing a tempo event for bpm first.
func NewRecorder(division uint16, bpm float64) *Recorder {
	if division == 0 {
		division = DefaultDivision
	}

	r := &Recorder{division: division, bpm: bpm}
	if bpm > 0 {
		r.track.Add(0, smf.MetaTempo(bpm))
	}

	return r
}

// Add appends every complete message of raw at sequencer tick. Meta events
// and stray data bytes are not recorded.
func (r *Recorder) Add(tick uint64, raw []byte) {
	msgs := Messages(raw)
	if len(msgs) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		r.lastTick = tick
		r.started = true
	}

	// one sequencer tick is a sixteenth, a quarter of the division
	var delta uint32
	if tick > r.lastTick {
		delta = uint32((tick - r.lastTick) * uint64(r.division) / 4)
	}
	r.lastTick = max(r.lastTick, tick)

	for _, msg := range msgs {
		if msg[0] == MetaEvent {
			continue
		}

		r.track.Add(delta, append([]byte(nil), msg...))
		delta = 0
		r.events++
	}
}

// Events returns the number of recorded messages.
func (r *Recorder) Events() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.events
}

// WriteTo encodes the recording as a single-track SMF.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	track := append(smf.Track(nil), r.track...)
	events := r.events
	r.mu.Unlock()

	if events == 0 {
		return 0, ErrNothingRecorded
	}

	track.Close(0)

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(r.division)
	if err := file.Add(track); err != nil {
		return 0, errors.Annotate(err, "adding recorded track")
	}

	n, err := file.WriteTo(w)
	if err != nil {
		return n, errors.Annotate(err, "writing midi file")
	}

	return n, nil
}
