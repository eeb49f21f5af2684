// SPDX-License-Identifier: EPL-2.0

package port

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("gsaudio.port")

// Kind is the storage type of a port value.
type Kind int

const (
	KindFloat Kind = iota
	KindBool
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindPointer:
		return "pointer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Options describe a port at construction.
type Options struct {
	PluginName  string
	Specifier   string
	ControlPort string
	Kind        Kind
	// Output ports are written by the recall and read by observers.
	Output     bool
	Conversion Conversion
	Plugin     *PluginPort
}

// Port is a named, typed, lockable parameter cell.
type Port struct {
	mu sync.Mutex

	pluginName  string
	specifier   string
	controlPort string
	kind        Kind
	output      bool
	conversion  Conversion
	plugin      *PluginPort

	f   float64
	b   bool
	ptr any
}

// New creates a port holding the plugin default, if any.
func New(opts Options) *Port {
	p := &Port{
		pluginName:  opts.PluginName,
		specifier:   opts.Specifier,
		controlPort: opts.ControlPort,
		kind:        opts.Kind,
		output:      opts.Output,
		conversion:  opts.Conversion,
		plugin:      opts.Plugin,
	}

	if opts.Plugin != nil {
		p.f = opts.Plugin.Default
		p.b = opts.Plugin.Default != 0
	}

	return p
}

func (p *Port) PluginName() string      { return p.pluginName }
func (p *Port) Specifier() string       { return p.specifier }
func (p *Port) ControlPort() string     { return p.controlPort }
func (p *Port) Kind() Kind              { return p.kind }
func (p *Port) IsOutput() bool          { return p.output }
func (p *Port) Conversion() Conversion  { return p.conversion }
func (p *Port) PluginPort() *PluginPort { return p.plugin }

// SafeReadFloat returns the float value. Reading a non-float port logs a
// warning and returns 0.
func (p *Port) SafeReadFloat() float64 {
	if p.kind != KindFloat {
		logger.Warningf("%s %s: read float from %v port", p.pluginName, p.specifier, p.kind)
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.f
}

// SafeReadClamped returns the float value limited to the plugin port
// range, the value a recall computes with.
func (p *Port) SafeReadClamped() float64 {
	v := p.SafeReadFloat()
	if p.plugin != nil {
		v = p.plugin.Clamp(v)
	}

	return v
}

// SafeWriteFloat stores v as given.
func (p *Port) SafeWriteFloat(v float64) {
	if p.kind != KindFloat {
		logger.Warningf("%s %s: write float to %v port", p.pluginName, p.specifier, p.kind)
		return
	}

	p.mu.Lock()
	p.f = v
	p.mu.Unlock()
}

// SafeWriteClamped stores v limited to the plugin port range. Automation
// and widgets write through it.
func (p *Port) SafeWriteClamped(v float64) {
	if p.plugin != nil {
		v = p.plugin.Clamp(v)
	}

	p.SafeWriteFloat(v)
}

// SafeReadBool returns the boolean value, or false on a kind mismatch.
func (p *Port) SafeReadBool() bool {
	if p.kind != KindBool {
		logger.Warningf("%s %s: read boolean from %v port", p.pluginName, p.specifier, p.kind)
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.b
}

func (p *Port) SafeWriteBool(v bool) {
	if p.kind != KindBool {
		logger.Warningf("%s %s: write boolean to %v port", p.pluginName, p.specifier, p.kind)
		return
	}

	p.mu.Lock()
	p.b = v
	p.mu.Unlock()
}

// SafeReadPointer returns the pointer value, or nil on a kind mismatch.
func (p *Port) SafeReadPointer() any {
	if p.kind != KindPointer {
		logger.Warningf("%s %s: read pointer from %v port", p.pluginName, p.specifier, p.kind)
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ptr
}

func (p *Port) SafeWritePointer(v any) {
	if p.kind != KindPointer {
		logger.Warningf("%s %s: write pointer to %v port", p.pluginName, p.specifier, p.kind)
		return
	}

	p.mu.Lock()
	p.ptr = v
	p.mu.Unlock()
}

// SafeReadConverted returns the float value mapped through the port's
// conversion, the value automation and GUI widgets display.
func (p *Port) SafeReadConverted() float64 {
	v := p.SafeReadFloat()
	if p.conversion == nil {
		return v
	}

	return p.conversion.Convert(v, false)
}

// SafeWriteConverted stores a displayed value, mapping it back through the
// port's conversion and clamping it to the plugin port range.
func (p *Port) SafeWriteConverted(v float64) {
	if p.conversion != nil {
		v = p.conversion.Convert(v, true)
	}

	p.SafeWriteClamped(v)
}

// String formats the value for persistence.
func (p *Port) String() string {
	switch p.kind {
	case KindFloat:
		return strconv.FormatFloat(p.SafeReadFloat(), 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(p.SafeReadBool())
	default:
		if s, ok := p.SafeReadPointer().(string); ok {
			return s
		}
		return ""
	}
}

// Parse stores a value produced by String. Pointer ports store the string.
func (p *Port) Parse(s string) error {
	switch p.kind {
	case KindFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", p.specifier, err)
		}
		p.SafeWriteFloat(v)
	case KindBool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%s: %w", p.specifier, err)
		}
		p.SafeWriteBool(v)
	default:
		p.SafeWritePointer(s)
	}

	return nil
}

// ControlPort formats a control-port specifier such as "3/11".
func ControlPort(index, total int) string {
	return strconv.Itoa(index) + "/" + strconv.Itoa(total)
}

// ParseControlPort splits a control-port specifier into its 1-based index
// and total.
func ParseControlPort(s string) (index, total int, err error) {
	a, b, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidControlPort, s)
	}

	index, err = strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidControlPort, s)
	}

	total, err = strconv.Atoi(b)
	if err != nil || index < 1 || total < index {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidControlPort, s)
	}

	return index, total, nil
}

// Find returns the port with the given specifier.
func Find(ports []*Port, specifier string) *Port {
	for _, p := range ports {
		if p.specifier == specifier {
			return p
		}
	}

	return nil
}
