// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate is Catmull-Rom interpolation between y1 and y2 at
// x in [0, 1]; y0 and y3 are the outer neighbours.
func CubicInterpolate(y0, y1, y2, y3, x float64) float64 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return ((a0*x+a1)*x+a2)*x + a3
}

// SampleAt reads buf at fractional index pos using cubic interpolation.
// Indices outside buf are clamped to its edges.
func SampleAt(buf []float64, pos float64) float64 {
	n := len(buf)
	if n == 0 {
		return 0
	}

	if pos <= 0 {
		return buf[0]
	}

	if pos >= float64(n-1) {
		return buf[n-1]
	}

	i := int(pos)
	at := func(j int) float64 {
		if j < 0 {
			j = 0
		} else if j >= n {
			j = n - 1
		}
		return buf[j]
	}

	return CubicInterpolate(at(i-1), at(i), at(i+1), at(i+2), pos-float64(i))
}
