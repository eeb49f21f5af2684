// SPDX-License-Identifier: EPL-2.0

package port

import "math"

// PluginPort describes the range of a control.
type PluginPort struct {
	Index       int
	Name        string
	Lower       float64
	Upper       float64
	Default     float64
	Step        float64
	Toggled     bool
	Integer     bool
	Logarithmic bool
}

// Clamp limits v to [Lower, Upper] and snaps integer ports.
func (pp *PluginPort) Clamp(v float64) float64 {
	if pp.Lower < pp.Upper {
		v = math.Max(pp.Lower, math.Min(pp.Upper, v))
	}

	if pp.Integer {
		v = math.Round(v)
	}

	return v
}

// Conversion maps between the stored value and the displayed value.
type Conversion interface {
	Convert(v float64, reverse bool) float64
}

// LinearConversion scales by Factor.
type LinearConversion struct {
	Factor float64
}

func (c LinearConversion) Convert(v float64, reverse bool) float64 {
	if c.Factor == 0 {
		return v
	}

	if reverse {
		return v / c.Factor
	}

	return v * c.Factor
}

// LogConversion maps a linear amplitude to decibels and back.
type LogConversion struct{}

func (LogConversion) Convert(v float64, reverse bool) float64 {
	if reverse {
		return math.Pow(10, v/20)
	}

	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}
