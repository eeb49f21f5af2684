// SPDX-License-Identifier: EPL-2.0

package gsaudio

import "errors"

var (
	ErrInvalidPad  = errors.New("invalid pad")
	ErrNoRecycling = errors.New("channel has no recycling")
	ErrNotHeadless = errors.New("render needs a headless soundcard")
)
