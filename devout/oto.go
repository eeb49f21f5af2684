// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package devout

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/juju/errors"

	"github.com/ik5/gsaudio/stream"
)

// queuedBlocks bounds how far Play may run ahead of the device.
const queuedBlocks = 4

// Oto streams blocks to the system audio device as float32 samples.
// Only one Oto may exist per process.
type Oto struct {
	presets stream.Presets

	bufMu  sync.Mutex
	buffer *stream.Buffer

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []byte
	limit   int
	closed  bool
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

func NewOto(presets stream.Presets) (*Oto, error) {
	if !presets.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPresets, presets)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   presets.Samplerate,
		ChannelCount: presets.Channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, errors.Annotate(err, "opening oto context")
	}
	<-ready

	o := &Oto{
		presets: presets,
		buffer:  stream.NewBuffer(presets.Format, presets.BufferSize*presets.Channels),
		limit:   queuedBlocks * presets.BufferSize * presets.Channels * 4,
		ctx:     ctx,
	}
	o.cond = sync.NewCond(&o.mu)
	o.player = ctx.NewPlayer(o)

	logger.Debugf("oto soundcard: %v", presets)

	return o, nil
}

func (o *Oto) Presets() stream.Presets { return o.presets }
func (o *Oto) LockBuffer()             { o.bufMu.Lock() }
func (o *Oto) UnlockBuffer()           { o.bufMu.Unlock() }
func (o *Oto) Buffer() *stream.Buffer  { return o.buffer }

// Play queues the buffer for the device, blocking while the queue is
// full, and clears it.
func (o *Oto) Play() error {
	o.bufMu.Lock()
	data := make([]byte, 0, o.buffer.Len()*4)
	for i := range o.buffer.Len() {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(o.buffer.Sample(i))))
	}
	o.buffer.Clear()
	o.bufMu.Unlock()

	o.mu.Lock()
	for !o.closed && len(o.queue) >= o.limit {
		o.cond.Wait()
	}

	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}

	o.queue = append(o.queue, data...)
	start := !o.started
	o.started = true
	o.mu.Unlock()

	if start {
		o.player.Play()
	}

	return nil
}

// Read feeds the oto player. Underruns are filled with silence.
func (o *Oto) Read(p []byte) (int, error) {
	o.mu.Lock()
	n := copy(p, o.queue)
	o.queue = o.queue[n:]
	o.cond.Broadcast()
	o.mu.Unlock()

	clear(p[n:])

	return len(p), nil
}

func (o *Oto) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.cond.Broadcast()
	o.mu.Unlock()

	if err := o.player.Close(); err != nil {
		return errors.Annotate(err, "closing oto player")
	}

	return nil
}
