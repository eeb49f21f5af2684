// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"fmt"
	"math"
	"sync"

	"github.com/ik5/gsaudio/engine"
)

const (
	EQ10Name = "ags-fx-eq10"

	eq10ChannelXML     = "ags-fx-eq10-channel"
	eq10ChannelRunXML  = "ags-fx-eq10-channel-processor"
	eq10AudioSignalXML = "ags-fx-eq10-audio-signal"

	pressurePort = "./pressure[0]"
)

// EQ10Bands are the center frequencies of the peaks, one octave apart.
var EQ10Bands = [10]float64{28, 56, 112, 224, 448, 896, 1792, 3584, 7168, 14336}

// PeakPort returns the specifier of the peak centered at hz.
func PeakPort(hz float64) string {
	return fmt.Sprintf("./peak-%.0fhz[0]", hz)
}

type eq10Scratch struct {
	in, out []float64
}

// EQ10Channel owns the peak and pressure ports and one scratch buffer
// pair per sound scope.
type EQ10Channel struct {
	engine.RecallChannel

	scratchMu sync.Mutex
	scratch   [engine.ScopeLast]eq10Scratch
}

func NewEQ10Channel(bufferSize int) *EQ10Channel {
	e := &EQ10Channel{}
	e.Init(e, EQ10Name, eq10ChannelXML)

	specs := make([]portSpec, 0, len(EQ10Bands)+1)
	for _, hz := range EQ10Bands {
		specs = append(specs, floatPort(PeakPort(hz), 0, 2, 1))
	}
	specs = append(specs, floatPort(pressurePort, 0, 2, 1))
	addPorts(&e.RecallBase, specs)

	e.BufferSizeChanged(bufferSize)

	return e
}

// BufferSizeChanged reallocates the scratch buffers of every scope.
func (e *EQ10Channel) BufferSizeChanged(size int) {
	e.scratchMu.Lock()
	defer e.scratchMu.Unlock()

	for i := range e.scratch {
		e.scratch[i] = eq10Scratch{in: make([]float64, size), out: make([]float64, size)}
	}
}

// ScratchSize returns the length of the scratch buffers of scope.
func (e *EQ10Channel) ScratchSize(scope engine.SoundScope) int {
	if !scope.Valid() {
		return 0
	}

	e.scratchMu.Lock()
	defer e.scratchMu.Unlock()

	return len(e.scratch[scope].in)
}

// gains copies the peak and pressure values.
func (e *EQ10Channel) gains() (peaks [10]float64, pressure float64) {
	for i, hz := range EQ10Bands {
		peaks[i] = readFloat(&e.RecallBase, PeakPort(hz), 1)
	}

	return peaks, readFloat(&e.RecallBase, pressurePort, 1)
}

type EQ10ChannelRun struct {
	engine.RecallChannelRun

	static *EQ10Channel
}

func newEQ10ChannelRun(static *EQ10Channel) *EQ10ChannelRun {
	r := &EQ10ChannelRun{static: static}
	r.Init(r, EQ10Name, eq10ChannelRunXML)

	return r
}

func (r *EQ10ChannelRun) Duplicate() engine.Recall { return newEQ10ChannelRun(r.static) }

func (r *EQ10ChannelRun) NewAudioSignalRecall(src *engine.AudioSignal) engine.Recall {
	if src.HasFlags(engine.SignalMaster) {
		return nil
	}

	return newEQ10AudioSignal(r.static)
}

// biquad is one peaking filter in direct form I.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// setPeak computes the coefficients of a one octave wide peak of linear
// gain g at hz.
func (f *biquad) setPeak(hz, samplerate, g float64) {
	w0 := 2 * math.Pi * hz / samplerate
	sin, cos := math.Sincos(w0)
	alpha := sin * math.Sinh(math.Ln2/2*w0/sin)
	a := math.Sqrt(g)

	a0 := 1 + alpha/a
	f.b0 = (1 + alpha*a) / a0
	f.b1 = -2 * cos / a0
	f.b2 = (1 - alpha*a) / a0
	f.a1 = -2 * cos / a0
	f.a2 = (1 - alpha/a) / a0
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y

	return y
}

// EQ10AudioSignal filters one signal. Each instance keeps its own filter
// state.
type EQ10AudioSignal struct {
	engine.RecallAudioSignal

	static *EQ10Channel

	bands      [10]biquad
	peaks      [10]float64
	samplerate float64
}

func newEQ10AudioSignal(static *EQ10Channel) *EQ10AudioSignal {
	s := &EQ10AudioSignal{static: static}
	s.Init(s, EQ10Name, eq10AudioSignalXML)

	return s
}

// minPeak is the deepest cut a band applies, about -80 dB.
const minPeak = 1e-4

// active reports whether band i changes the signal.
func (s *EQ10AudioSignal) active(i int) bool {
	return math.Abs(s.peaks[i]-1) > 1e-9 && EQ10Bands[i] < s.samplerate/2
}

func (s *EQ10AudioSignal) update(peaks [10]float64, samplerate float64) {
	if peaks == s.peaks && samplerate == s.samplerate {
		return
	}

	var was [10]bool
	for i := range was {
		was[i] = s.active(i)
	}

	s.peaks, s.samplerate = peaks, samplerate
	for i := range s.bands {
		if !s.active(i) {
			continue
		}

		if !was[i] {
			s.bands[i] = biquad{}
		}
		s.bands[i].setPeak(EQ10Bands[i], samplerate, math.Max(peaks[i], minPeak))
	}
}

func (s *EQ10AudioSignal) RunInter() {
	src := s.Source()
	buf := src.StreamCurrent()
	if buf == nil {
		return
	}

	peaks, pressure := s.static.gains()
	s.update(peaks, float64(src.Presets().Samplerate))

	scope := scopeOf(&s.RecallBase)
	n := buf.Len()

	s.static.scratchMu.Lock()
	defer s.static.scratchMu.Unlock()

	sc := &s.static.scratch[scope]
	if len(sc.in) != n {
		logger.Debugf("%v: scratch of %v has %d frames, buffer %d", s, scope, len(sc.in), n)
		sc.in, sc.out = make([]float64, n), make([]float64, n)
	}

	buf.ReadFloat64(sc.in, 0)
	copy(sc.out, sc.in)

	for i := range s.bands {
		if !s.active(i) {
			continue
		}

		f := &s.bands[i]
		for j, x := range sc.out {
			sc.out[j] = f.process(x)
		}
	}

	if pressure != 1 {
		for j := range sc.out {
			sc.out[j] *= pressure
		}
	}

	buf.WriteFloat64(sc.out, 0)
}
