// SPDX-License-Identifier: EPL-2.0

package utils

// MaxInt returns the positive full scale of a signed integer sample of the
// given bit depth. Unknown depths fall back to 16 bit.
func MaxInt(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 127.0
	case 16:
		return 32767.0
	case 24:
		return 8388607.0
	case 32:
		return 2147483647.0
	default:
		return 32767.0
	}
}

// Clamp limits x to [-1, 1].
func Clamp(x float64) float64 {
	if x > 1 {
		return 1
	} else if x < -1 {
		return -1
	}

	return x
}

// FloatToInt converts a normalized sample to a signed integer sample of the
// given bit depth, rounding to nearest.
func FloatToInt(x float64, bitDepth int) int {
	v := Clamp(x) * MaxInt(bitDepth)
	if v < 0 {
		return int(v - 0.5)
	}

	return int(v + 0.5)
}

// IntToFloat converts a signed integer sample of the given bit depth to a
// normalized sample.
func IntToFloat(v int, bitDepth int) float64 {
	return Clamp(float64(v) / MaxInt(bitDepth))
}
