// SPDX-License-Identifier: EPL-2.0

package midi

// Channel voice message kinds, the high nibble of the status byte.
const (
	KeyOff          byte = 0x80
	KeyOn           byte = 0x90
	KeyPressure     byte = 0xA0
	ChangeParameter byte = 0xB0
	ChangeProgram   byte = 0xC0
	ChangePressure  byte = 0xD0
	PitchBend       byte = 0xE0
	System          byte = 0xF0
)

// System messages.
const (
	Sysex        byte = 0xF0
	QuarterFrame byte = 0xF1
	SongPosition byte = 0xF2
	SongSelect   byte = 0xF3
	TuneRequest  byte = 0xF6
	SysexEnd     byte = 0xF7
	MetaEvent    byte = 0xFF
)

// Kind returns the message kind of a status byte: the high nibble for
// channel messages, the full byte for system messages.
func Kind(status byte) byte {
	if status >= System {
		return status
	}

	return status & 0xF0
}

// Channel returns the channel of a channel voice status byte.
func Channel(status byte) int {
	return int(status & 0x0F)
}

// IsStatus reports whether b starts a message.
func IsStatus(b byte) bool {
	return b&0x80 != 0
}

// MessageLength returns the byte length of the message starting at
// buf[0], never more than len(buf). A leading data byte has length 1.
func MessageLength(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}

	status := buf[0]
	n := 1

	switch {
	case !IsStatus(status):
		n = 1
	case status < ChangeProgram, status >= PitchBend && status < System:
		n = 3
	case status < PitchBend:
		n = 2
	case status == Sysex:
		n = len(buf)
		for i := 1; i < len(buf); i++ {
			if buf[i] == SysexEnd {
				n = i + 1
				break
			}
		}
	case status == QuarterFrame, status == SongSelect:
		n = 2
	case status == SongPosition:
		n = 3
	case status == MetaEvent:
		if len(buf) < 3 {
			return len(buf)
		}
		size, used, err := ReadVarLen(buf[2:])
		if err != nil {
			return len(buf)
		}
		n = 2 + used + int(size)
	default:
		n = 1
	}

	return min(n, len(buf))
}

// Messages splits a block of raw bytes into messages. Stray data bytes are
// dropped. The returned slices alias buf.
func Messages(buf []byte) [][]byte {
	var out [][]byte

	for i := 0; i < len(buf); {
		n := MessageLength(buf[i:])
		if n == 0 {
			break
		}

		if IsStatus(buf[i]) {
			out = append(out, buf[i:i+n])
		}
		i += n
	}

	return out
}

// ReadVarLen decodes a variable-length quantity and returns its value and
// the number of bytes it used.
func ReadVarLen(buf []byte) (value uint32, n int, err error) {
	for n < len(buf) && n < 4 {
		b := buf[n]
		value = value<<7 | uint32(b&0x7F)
		n++

		if b&0x80 == 0 {
			return value, n, nil
		}
	}

	return 0, n, ErrTruncatedVarLen
}

// AppendVarLen appends the variable-length encoding of v.
func AppendVarLen(dst []byte, v uint32) []byte {
	var tmp [4]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)

	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
	}

	return append(dst, tmp[i:]...)
}
