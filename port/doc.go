// SPDX-License-Identifier: EPL-2.0

// Package port implements the parameter cells recalls expose to the
// outside world.
//
// A Port is addressed by the triple (plugin name, specifier, control port),
// for example ("ags-fx-eq10", "./pressure[0]", "11/11"), and holds a float,
// boolean or pointer value. SafeRead and SafeWrite are the only sanctioned
// way to observe and mutate the value; both lock the port for the duration
// of the copy only.
//
//	p := port.New(port.Options{
//	    PluginName:  "ags-fx-volume",
//	    Specifier:   "./volume[0]",
//	    ControlPort: "1/2",
//	    Kind:        port.KindFloat,
//	    Plugin:      &port.PluginPort{Lower: 0, Upper: 2, Default: 1},
//	})
//	p.SafeWriteFloat(0.5)
//	v := p.SafeReadFloat()
package port
