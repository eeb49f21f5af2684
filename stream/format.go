// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"strings"
)

// Format is a sample format.
type Format int

const (
	FormatUnknown Format = iota
	FormatSigned8
	FormatSigned16
	FormatSigned24
	FormatSigned32
	FormatFloat
	FormatDouble
)

// DefaultFormat is used whenever presets do not name one.
const DefaultFormat = FormatSigned16

var formatNames = map[Format]string{
	FormatSigned8:  "s8",
	FormatSigned16: "s16",
	FormatSigned24: "s24",
	FormatSigned32: "s32",
	FormatFloat:    "float",
	FormatDouble:   "double",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return fmt.Sprintf("format(%d)", int(f))
}

// Valid reports whether f names one of the six supported formats.
func (f Format) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// BitDepth returns the number of bits of one sample.
func (f Format) BitDepth() int {
	switch f {
	case FormatSigned8:
		return 8
	case FormatSigned16:
		return 16
	case FormatSigned24:
		return 24
	case FormatSigned32, FormatFloat:
		return 32
	case FormatDouble:
		return 64
	default:
		return 0
	}
}

// IsInteger reports whether samples are stored as signed integers.
func (f Format) IsInteger() bool {
	return f >= FormatSigned8 && f <= FormatSigned32
}

// ParseFormat parses the names produced by Format.String.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == key {
			return f, nil
		}
	}

	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForBitDepth maps a PCM bit depth to an integer format.
func FormatForBitDepth(bitDepth int) (Format, error) {
	switch bitDepth {
	case 8:
		return FormatSigned8, nil
	case 16:
		return FormatSigned16, nil
	case 24:
		return FormatSigned24, nil
	case 32:
		return FormatSigned32, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %d bit", ErrUnknownFormat, bitDepth)
	}
}
