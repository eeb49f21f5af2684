// SPDX-License-Identifier: EPL-2.0

package devout

import "errors"

var (
	ErrClosed         = errors.New("soundcard closed")
	ErrInvalidPresets = errors.New("invalid soundcard presets")
	ErrUnknownBackend = errors.New("unknown soundcard backend")
)
