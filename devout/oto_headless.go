// SPDX-License-Identifier: EPL-2.0

//go:build headless

package devout

import "github.com/ik5/gsaudio/stream"

// Oto is silent in headless builds.
type Oto struct {
	*Headless
}

func NewOto(presets stream.Presets) (*Oto, error) {
	h, err := NewHeadless(presets)
	if err != nil {
		return nil, err
	}

	logger.Warningf("headless build, oto soundcard is silent")

	return &Oto{Headless: h}, nil
}
