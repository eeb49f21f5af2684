// SPDX-License-Identifier: EPL-2.0

package fx

import "errors"

var (
	ErrUnknownEffect = errors.New("unknown effect")
	ErrNoAudio       = errors.New("no audio")
	ErrInvalidRange  = errors.New("invalid channel range")
	ErrNoContainer   = errors.New("no recall container")
)
