// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("unknown audio format")
	ErrInvalidPresets = errors.New("invalid presets")
	ErrInvalidChannel = errors.New("invalid audio channel")
	ErrInvalidWhence  = errors.New("invalid whence")
	ErrNegativeOffset = errors.New("negative offset")
	ErrReadOnly       = errors.New("resource is read-only")
	ErrClosed         = errors.New("resource is closed")
)
