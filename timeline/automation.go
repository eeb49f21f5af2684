// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"slices"
	"sync"
)

// Acceleration is one point of an automation curve.
type Acceleration struct {
	X uint64
	Y float64
}

// Automation is one bucket of a port-value curve. ControlName holds the
// specifier of the automated port.
type Automation struct {
	mu sync.Mutex

	line        int
	ts          Timestamp
	controlName string
	lower       float64
	upper       float64
	accs        []Acceleration
}

func NewAutomation(line int, ts Timestamp, controlName string, lower, upper float64) *Automation {
	return &Automation{
		line:        line,
		ts:          ts,
		controlName: controlName,
		lower:       lower,
		upper:       upper,
	}
}

func (a *Automation) Line() int            { return a.line }
func (a *Automation) Timestamp() Timestamp { return a.ts }
func (a *Automation) ControlName() string  { return a.controlName }

// Range returns the value bounds.
func (a *Automation) Range() (lower, upper float64) { return a.lower, a.upper }

// AddAcceleration adds or replaces the point at x. y is clamped to the
// automation range.
func (a *Automation) AddAcceleration(x uint64, y float64) {
	if a.lower < a.upper {
		y = max(a.lower, min(a.upper, y))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	i, found := slices.BinarySearchFunc(a.accs, x, func(acc Acceleration, x uint64) int {
		switch {
		case acc.X < x:
			return -1
		case acc.X > x:
			return 1
		default:
			return 0
		}
	})
	if found {
		a.accs[i].Y = y
		return
	}

	a.accs = slices.Insert(a.accs, i, Acceleration{X: x, Y: y})
}

// RemoveAcceleration removes the point at x.
func (a *Automation) RemoveAcceleration(x uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, acc := range a.accs {
		if acc.X == x {
			a.accs = slices.Delete(a.accs, i, i+1)
			return true
		}
	}

	return false
}

// Accelerations returns a snapshot of the curve.
func (a *Automation) Accelerations() []Acceleration {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.accs)
}

// ValueAt interpolates linearly between the points around x, holding the
// first and last values outside the curve. It reports false for an empty
// curve.
func (a *Automation) ValueAt(x float64) (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.accs) == 0 {
		return 0, false
	}

	if x <= float64(a.accs[0].X) {
		return a.accs[0].Y, true
	}

	for i := 1; i < len(a.accs); i++ {
		prev, next := a.accs[i-1], a.accs[i]
		if x <= float64(next.X) {
			t := (x - float64(prev.X)) / float64(next.X-prev.X)
			return prev.Y + t*(next.Y-prev.Y), true
		}
	}

	return a.accs[len(a.accs)-1].Y, true
}
