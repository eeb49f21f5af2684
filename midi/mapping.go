// SPDX-License-Identifier: EPL-2.0

package midi

// Mapping turns key numbers into pads.
type Mapping struct {
	// StartKey is the key played by pad 0 (midi start mapping).
	StartKey int
	// Pads is the number of input pads.
	Pads int
	// Reverse mirrors the pads so StartKey plays the last pad.
	Reverse bool
}

// Pad returns the pad of key and whether it is in range. The same
// function serves key-on and key-off so notes open and close on one pad.
func (m Mapping) Pad(key int) (int, bool) {
	pad := key - m.StartKey
	if m.Reverse {
		pad = m.Pads - (key - m.StartKey) - 1
	}

	if pad < 0 || pad >= m.Pads {
		return 0, false
	}

	return pad, true
}
