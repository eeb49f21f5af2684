// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrInvalidPresets = errors.New("invalid presets")
	ErrNoChannels     = errors.New("audio has no channels")
	ErrRunNotFound    = errors.New("run not found")
	ErrEngineClosed   = errors.New("engine closed")
	ErrUnknownScope   = errors.New("unknown sound scope")
)
