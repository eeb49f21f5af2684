// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v2"

	"github.com/ik5/gsaudio/stream"
	"github.com/ik5/gsaudio/timeline"
)

var logger = loggo.GetLogger("gsaudio.config")

// Soundcard backends.
const (
	BackendHeadless = "headless"
	BackendOto      = "oto"
)

// Soundcard presets of the output device and of every channel.
type Soundcard struct {
	Backend     string `yaml:"backend"`
	Samplerate  int    `yaml:"samplerate"`
	BufferSize  int    `yaml:"buffer-size"`
	PCMChannels int    `yaml:"pcm-channels"`
	Format      string `yaml:"format"`
}

// Sequencer configures the transport clock.
type Sequencer struct {
	BPM         float64 `yaml:"bpm"`
	DelayFactor float64 `yaml:"delay-factor"`
	Loop        bool    `yaml:"loop"`
	LoopStart   uint64  `yaml:"loop-start"`
	LoopEnd     uint64  `yaml:"loop-end"`
}

// Recall holds defaults used by recalls and time buckets.
type Recall struct {
	NotationOffset     uint64 `yaml:"notation-offset"`
	AutomationOffset   uint64 `yaml:"automation-offset"`
	WaveOffset         uint64 `yaml:"wave-offset"`
	MIDIRecordDivision uint16 `yaml:"midi-record-division"`
}

type Config struct {
	Soundcard Soundcard `yaml:"soundcard"`
	Sequencer Sequencer `yaml:"sequencer"`
	Recall    Recall    `yaml:"recall"`
	// Log is a loggo specification such as "<root>=WARNING;gsaudio.fx=DEBUG".
	Log string `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Soundcard: Soundcard{
			Backend:     BackendHeadless,
			Samplerate:  44100,
			BufferSize:  512,
			PCMChannels: 2,
			Format:      stream.DefaultFormat.String(),
		},
		Sequencer: Sequencer{
			BPM:         120,
			DelayFactor: 1,
			LoopEnd:     64,
		},
		Recall: Recall{
			NotationOffset:     timeline.DefaultNotationOffset,
			AutomationOffset:   timeline.DefaultAutomationOffset,
			WaveOffset:         timeline.DefaultWaveOffset,
			MIDIRecordDivision: 96,
		},
		Log: "<root>=WARNING",
	}
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, errors.Annotate(err, "parsing config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Annotatef(err, "reading config %q", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Annotatef(err, "config %q", path)
	}

	logger.Debugf("loaded %s", path)

	return cfg, nil
}

// Validate checks every value.
func (c Config) Validate() error {
	switch c.Soundcard.Backend {
	case BackendHeadless, BackendOto:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Soundcard.Backend)
	}

	if c.Soundcard.Samplerate < 8000 || c.Soundcard.Samplerate > 192000 {
		return fmt.Errorf("%w: %d", ErrInvalidSamplerate, c.Soundcard.Samplerate)
	}

	if c.Soundcard.BufferSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, c.Soundcard.BufferSize)
	}

	if c.Soundcard.PCMChannels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, c.Soundcard.PCMChannels)
	}

	if _, err := stream.ParseFormat(c.Soundcard.Format); err != nil {
		return fmt.Errorf("soundcard: %w", err)
	}

	if c.Sequencer.BPM <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBPM, c.Sequencer.BPM)
	}

	if c.Sequencer.DelayFactor <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDelayFactor, c.Sequencer.DelayFactor)
	}

	if d := c.TickDelay(); d < 1 {
		return fmt.Errorf("%w: %.3f buffers per tick at %v bpm", ErrTickShorterThanBlock, d, c.Sequencer.BPM)
	}

	if c.Sequencer.Loop && c.Sequencer.LoopEnd <= c.Sequencer.LoopStart {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidLoop, c.Sequencer.LoopStart, c.Sequencer.LoopEnd)
	}

	if c.Recall.NotationOffset == 0 || c.Recall.AutomationOffset == 0 || c.Recall.WaveOffset == 0 {
		return ErrInvalidOffset
	}

	return nil
}

// TickDelay returns the number of buffers per sixteenth note tick.
func TickDelay(samplerate, bufferSize int, bpm, delayFactor float64) float64 {
	return (60 * float64(samplerate) / float64(bufferSize)) / bpm * (1.0 / 16.0) * (1 / delayFactor)
}

// TickDelay returns the configured number of buffers per tick. The
// sequencer plays at most one tick per buffer, so it must be at least 1.
func (c Config) TickDelay() float64 {
	return TickDelay(c.Soundcard.Samplerate, c.Soundcard.BufferSize, c.Sequencer.BPM, c.Sequencer.DelayFactor)
}

// MaxBPM returns the fastest tempo at which a tick still lasts one buffer.
func (c Config) MaxBPM() float64 {
	return TickDelay(c.Soundcard.Samplerate, c.Soundcard.BufferSize, 1, c.Sequencer.DelayFactor)
}

// SampleFormat returns the parsed soundcard format.
func (c Config) SampleFormat() stream.Format {
	f, err := stream.ParseFormat(c.Soundcard.Format)
	if err != nil {
		logger.Warningf("soundcard format %q, using %v", c.Soundcard.Format, stream.DefaultFormat)
		return stream.DefaultFormat
	}

	return f
}

// Format encodes the configuration as YAML.
func (c Config) Format() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Annotate(err, "formatting config")
	}

	return data, nil
}

// ConfigureLogging applies the Log specification to the loggo registry.
func (c Config) ConfigureLogging() error {
	if c.Log == "" {
		return nil
	}

	return errors.Annotate(loggo.ConfigureLoggers(c.Log), "configuring loggers")
}
