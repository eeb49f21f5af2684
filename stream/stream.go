// SPDX-License-Identifier: EPL-2.0

package stream

// Stream is an ordered list of buffers sharing one format and size.
// Stream is not safe for concurrent use; its owner serializes access.
type Stream struct {
	format     Format
	bufferSize int
	buffers    []*Buffer
}

// NewStream allocates length zeroed buffers.
func NewStream(format Format, bufferSize, length int) *Stream {
	if !format.Valid() {
		logger.Warningf("new stream: %v, using %v", format, DefaultFormat)
		format = DefaultFormat
	}

	s := &Stream{format: format, bufferSize: max(bufferSize, 0)}
	s.Resize(length)

	return s
}

func (s *Stream) Format() Format  { return s.format }
func (s *Stream) BufferSize() int { return s.bufferSize }
func (s *Stream) Len() int        { return len(s.buffers) }
func (s *Stream) Frames() int     { return len(s.buffers) * s.bufferSize }

// At returns buffer i, or nil when i is out of range.
func (s *Stream) At(i int) *Buffer {
	if i < 0 || i >= len(s.buffers) {
		return nil
	}

	return s.buffers[i]
}

// Resize grows with zeroed buffers or truncates to length buffers.
func (s *Stream) Resize(length int) {
	if length < 0 {
		length = 0
	}

	if length <= len(s.buffers) {
		clear(s.buffers[length:])
		s.buffers = s.buffers[:length]
		return
	}

	for len(s.buffers) < length {
		s.buffers = append(s.buffers, NewBuffer(s.format, s.bufferSize))
	}
}

// Realloc changes format and buffer size, reallocating every buffer. The
// samples are kept as one continuous signal and regrouped into buffers of
// the new size.
func (s *Stream) Realloc(format Format, bufferSize int) error {
	if !format.Valid() {
		return ErrUnknownFormat
	}

	if bufferSize <= 0 {
		return ErrInvalidSize
	}

	if format == s.format && bufferSize == s.bufferSize {
		return nil
	}

	frames := s.Frames()
	length := (frames + bufferSize - 1) / bufferSize
	buffers := make([]*Buffer, length)
	for i := range buffers {
		buffers[i] = NewBuffer(format, bufferSize)
	}

	for frame := 0; frame < frames; {
		src := s.buffers[frame/s.bufferSize]
		srcOff := frame % s.bufferSize
		dst := buffers[frame/bufferSize]
		dstOff := frame % bufferSize

		n := Copy(dst, dstOff, src, srcOff, min(s.bufferSize-srcOff, bufferSize-dstOff))
		if n == 0 {
			break
		}
		frame += n
	}

	s.format = format
	s.bufferSize = bufferSize
	s.buffers = buffers

	return nil
}

// Clone returns a deep copy.
func (s *Stream) Clone() *Stream {
	c := &Stream{format: s.format, bufferSize: s.bufferSize, buffers: make([]*Buffer, len(s.buffers))}
	for i, b := range s.buffers {
		c.buffers[i] = b.Clone()
	}

	return c
}

// Clear zeroes every buffer.
func (s *Stream) Clear() {
	for _, b := range s.buffers {
		b.Clear()
	}
}
