// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidBackend       = errors.New("invalid soundcard backend")
	ErrInvalidSamplerate    = errors.New("invalid samplerate")
	ErrInvalidBufferSize    = errors.New("invalid buffer size")
	ErrInvalidChannels      = errors.New("invalid pcm channel count")
	ErrInvalidBPM           = errors.New("invalid bpm")
	ErrInvalidDelayFactor   = errors.New("invalid delay factor")
	ErrInvalidLoop          = errors.New("invalid loop range")
	ErrTickShorterThanBlock = errors.New("tick shorter than one buffer")
	ErrInvalidOffset        = errors.New("invalid bucket offset")
)
