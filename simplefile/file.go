// SPDX-License-Identifier: EPL-2.0

package simplefile

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/timeline"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("gsaudio.simplefile")

// Version is written into every file. Files of a higher major version are
// rejected.
const Version = "1.0"

// File is the document root.
type File struct {
	XMLName xml.Name `xml:"ags-simple-file"`
	Version string   `xml:"version,attr"`
	Audios  []Audio  `xml:"ags-sf-audio-list>ags-sf-audio"`
}

// Audio is one saved engine.Audio. Zero presets fall back to the engine
// configuration on load.
type Audio struct {
	Name             string       `xml:"name,attr"`
	AudioChannels    int          `xml:"audio-channels,attr"`
	Samplerate       int          `xml:"samplerate,attr,omitempty"`
	BufferSize       int          `xml:"buffer-size,attr,omitempty"`
	Format           string       `xml:"format,attr,omitempty"`
	OutputPads       int          `xml:"output-pads,attr"`
	InputPads        int          `xml:"input-pads,attr"`
	Flags            string       `xml:"flags,attr,omitempty"`
	MIDIStartMapping int          `xml:"midi-start-mapping,attr,omitempty"`
	Recalls          []Recall     `xml:"ags-sf-recall-list>ags-sf-recall"`
	Patterns         []Pattern    `xml:"ags-sf-pattern-list>ags-sf-pattern"`
	Notations        []Notation   `xml:"ags-sf-notation-list>ags-sf-notation"`
	Automations      []Automation `xml:"ags-sf-automation-list>ags-sf-automation"`
}

// Recall is one template recall of an effect chain. Name is the chain,
// XMLType the element name of the recall itself. Channel level recalls
// carry the pad and audio channel they are bound to.
type Recall struct {
	Name         string `xml:"name,attr"`
	XMLType      string `xml:"xml-type,attr"`
	Filename     string `xml:"filename,attr,omitempty"`
	Effect       string `xml:"effect,attr,omitempty"`
	Flags        string `xml:"flags,attr"`
	Pad          *int   `xml:"pad,attr,omitempty"`
	AudioChannel *int   `xml:"audio-channel,attr,omitempty"`
	Ports        []Port `xml:"ags-sf-port"`
}

type Port struct {
	Specifier   string `xml:"specifier,attr"`
	ControlPort string `xml:"control-port,attr,omitempty"`
	Value       string `xml:"value,attr"`
}

// Pattern is the grid of one channel.
type Pattern struct {
	Direction string         `xml:"direction,attr"`
	Line      int            `xml:"line,attr"`
	Bank0     int            `xml:"bank-0,attr"`
	Bank1     int            `xml:"bank-1,attr"`
	Length    int            `xml:"length,attr"`
	Steps     []PatternSteps `xml:"ags-sf-pattern-data"`
}

// PatternSteps lists the set steps of one bank, space separated.
type PatternSteps struct {
	Index0 int    `xml:"index-0,attr"`
	Index1 int    `xml:"index-1,attr"`
	Bits   string `xml:",chardata"`
}

type Notation struct {
	Line   int    `xml:"line,attr"`
	Offset uint64 `xml:"offset,attr"`
	Unix   string `xml:"unix,attr,omitempty"`
	Notes  []Note `xml:"ags-sf-note"`
}

// Note stores the envelope points with strconv.FormatComplex.
type Note struct {
	X0       uint64 `xml:"x0,attr"`
	X1       uint64 `xml:"x1,attr"`
	Y        uint32 `xml:"y,attr"`
	Velocity uint8  `xml:"velocity,attr"`
	Flags    string `xml:"flags,attr,omitempty"`
	Attack   string `xml:"attack,attr"`
	Decay    string `xml:"decay,attr"`
	Sustain  string `xml:"sustain,attr"`
	Release  string `xml:"release,attr"`
	Ratio    string `xml:"ratio,attr"`
}

type Automation struct {
	Line          int            `xml:"line,attr"`
	Offset        uint64         `xml:"offset,attr"`
	Unix          string         `xml:"unix,attr,omitempty"`
	ControlName   string         `xml:"control-name,attr"`
	Lower         float64        `xml:"lower,attr"`
	Upper         float64        `xml:"upper,attr"`
	Accelerations []Acceleration `xml:"ags-sf-acceleration"`
}

type Acceleration struct {
	X uint64  `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

const (
	flagPlay   = "play"
	flagRecall = "recall"
	flagInput  = "input"
	flagOutput = "output"
)

var audioFlagNames = []struct {
	flag engine.AudioFlags
	name string
}{
	{engine.AudioOutputHasRecycling, "output-has-recycling"},
	{engine.AudioInputHasRecycling, "input-has-recycling"},
	{engine.AudioSync, "sync"},
	{engine.AudioAsync, "async"},
	{engine.AudioReverseMapping, "reverse-mapping"},
	{engine.AudioPatternMode, "pattern-mode"},
}

var noteFlagNames = []struct {
	flag timeline.NoteFlags
	name string
}{
	{timeline.NoteEnvelope, "envelope"},
	{timeline.NoteFeed, "feed"},
	{timeline.NoteRuntime, "runtime"},
}

func formatAudioFlags(f engine.AudioFlags) string {
	var names []string
	for _, n := range audioFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}

	return strings.Join(names, ",")
}

func parseAudioFlags(s string) (engine.AudioFlags, error) {
	var f engine.AudioFlags
outer:
	for _, name := range splitFlags(s) {
		for _, n := range audioFlagNames {
			if n.name == name {
				f |= n.flag
				continue outer
			}
		}

		return 0, fmt.Errorf("%w: audio flag %q", ErrInvalidFlag, name)
	}

	return f, nil
}

func formatNoteFlags(f timeline.NoteFlags) string {
	var names []string
	for _, n := range noteFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}

	return strings.Join(names, ",")
}

func parseNoteFlags(s string) (timeline.NoteFlags, error) {
	var f timeline.NoteFlags
outer:
	for _, name := range splitFlags(s) {
		for _, n := range noteFlagNames {
			if n.name == name {
				f |= n.flag
				continue outer
			}
		}

		return 0, fmt.Errorf("%w: note flag %q", ErrInvalidFlag, name)
	}

	return f, nil
}

func splitFlags(s string) []string {
	var out []string
	for name := range strings.SplitSeq(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}

	return out
}

func formatTimestamp(ts timeline.Timestamp) (offset uint64, unix string) {
	if ts.Flags&timeline.TimestampUnix != 0 {
		return 0, ts.Unix.UTC().Format(time.RFC3339Nano)
	}

	return ts.Offset, ""
}

func parseTimestamp(offset uint64, unix string) (timeline.Timestamp, error) {
	if unix == "" {
		return timeline.Timestamp{Flags: timeline.TimestampOffset, Offset: offset}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, unix)
	if err != nil {
		return timeline.Timestamp{}, err
	}

	return timeline.UnixTimestamp(t), nil
}

func formatSteps(steps []int) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = strconv.Itoa(s)
	}

	return strings.Join(parts, " ")
}

func parseSteps(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

func checkVersion(v string) error {
	major, _, _ := strings.Cut(v, ".")
	if n, err := strconv.Atoi(major); err != nil || n > 1 {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}

	return nil
}
