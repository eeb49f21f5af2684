// SPDX-License-Identifier: EPL-2.0

package simplefile

import "errors"

var (
	// ErrUnsupportedVersion is returned for files written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported file version")
	// ErrInvalidFlag is returned for an unknown flag name.
	ErrInvalidFlag = errors.New("invalid flag")
	// ErrInvalidChannel is returned when a recall or pattern names a
	// channel the audio does not have.
	ErrInvalidChannel = errors.New("invalid channel")
)
