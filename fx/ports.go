// SPDX-License-Identifier: EPL-2.0

package fx

import (
	"strings"

	"github.com/ik5/gsaudio/engine"
	"github.com/ik5/gsaudio/port"
)

// portSpec describes one control port of a static recall.
type portSpec struct {
	specifier string
	kind      port.Kind
	lower     float64
	upper     float64
	def       float64
	integer   bool
	conv      port.Conversion
}

func floatPort(specifier string, lower, upper, def float64) portSpec {
	return portSpec{specifier: specifier, kind: port.KindFloat, lower: lower, upper: upper, def: def}
}

func intPort(specifier string, lower, upper, def float64) portSpec {
	s := floatPort(specifier, lower, upper, def)
	s.integer = true

	return s
}

func boolPort(specifier string, def bool) portSpec {
	s := portSpec{specifier: specifier, kind: port.KindBool, upper: 1}
	if def {
		s.def = 1
	}

	return s
}

func pointerPort(specifier string) portSpec {
	return portSpec{specifier: specifier, kind: port.KindPointer}
}

// portName turns "./peak-28hz[0]" into "peak-28hz".
func portName(specifier string) string {
	name := strings.TrimPrefix(specifier, "./")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}

	return name
}

// addPorts creates the ports of specs on b, numbering their control ports
// in order.
func addPorts(b *engine.RecallBase, specs []portSpec) {
	for i, s := range specs {
		opts := port.Options{
			PluginName:  b.Name(),
			Specifier:   s.specifier,
			ControlPort: port.ControlPort(i+1, len(specs)),
			Kind:        s.kind,
			Conversion:  s.conv,
		}

		if s.kind != port.KindPointer {
			opts.Plugin = &port.PluginPort{
				Index:   i,
				Name:    portName(s.specifier),
				Lower:   s.lower,
				Upper:   s.upper,
				Default: s.def,
				Toggled: s.kind == port.KindBool,
				Integer: s.integer,
			}
		}

		b.AddPort(port.New(opts))
	}
}

// readFloat returns the value of the float port specifier of b limited to
// its range, or def when b has no such port.
func readFloat(b *engine.RecallBase, specifier string, def float64) float64 {
	if p := b.Port(specifier); p != nil {
		return p.SafeReadClamped()
	}

	return def
}

func readBool(b *engine.RecallBase, specifier string) bool {
	if p := b.Port(specifier); p != nil {
		return p.SafeReadBool()
	}

	return false
}

func readString(b *engine.RecallBase, specifier string) string {
	if p := b.Port(specifier); p != nil {
		s, _ := p.SafeReadPointer().(string)
		return s
	}

	return ""
}
