// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"slices"
	"sync"
)

// RecyclingContext scopes the recyclings a run may touch. A context with
// a parent belongs to a sub-run, such as one note of a chord.
type RecyclingContext struct {
	mu sync.Mutex

	parent     *RecyclingContext
	children   []*RecyclingContext
	recyclings []*Recycling
}

// NewRecyclingContext creates a context and registers it with parent.
func NewRecyclingContext(parent *RecyclingContext, recyclings []*Recycling) *RecyclingContext {
	ctx := &RecyclingContext{parent: parent, recyclings: slices.Clone(recyclings)}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, ctx)
		parent.mu.Unlock()
	}

	return ctx
}

func (c *RecyclingContext) Parent() *RecyclingContext { return c.parent }

// IsRoot reports whether c belongs to a top-level run.
func (c *RecyclingContext) IsRoot() bool { return c.parent == nil }

// Root returns the top-level context of c.
func (c *RecyclingContext) Root() *RecyclingContext {
	for c.parent != nil {
		c = c.parent
	}

	return c
}

// IsDescendantOf reports whether c is ctx or lies below it.
func (c *RecyclingContext) IsDescendantOf(ctx *RecyclingContext) bool {
	for p := c; p != nil; p = p.parent {
		if p == ctx {
			return true
		}
	}

	return false
}

func (c *RecyclingContext) Children() []*RecyclingContext {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.children)
}

func (c *RecyclingContext) removeChild(child *RecyclingContext) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := slices.Index(c.children, child); i >= 0 {
		c.children = slices.Delete(c.children, i, i+1)
	}
}

func (c *RecyclingContext) Recyclings() []*Recycling {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.recyclings)
}

// Has reports whether the run may touch r.
func (c *RecyclingContext) Has(r *Recycling) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Contains(c.recyclings, r)
}

// RecallID identifies one run of the recall graph.
type RecallID struct {
	mu sync.Mutex

	scope    SoundScope
	ctx      *RecyclingContext
	done     bool
	handlers []func(*RecallID)
}

func NewRecallID(scope SoundScope, ctx *RecyclingContext) *RecallID {
	if ctx == nil {
		ctx = NewRecyclingContext(nil, nil)
	}

	return &RecallID{scope: scope, ctx: ctx}
}

func (id *RecallID) Scope() SoundScope          { return id.scope }
func (id *RecallID) Context() *RecyclingContext { return id.ctx }

// IsSubRun reports whether id belongs to a nested run.
func (id *RecallID) IsSubRun() bool { return !id.ctx.IsRoot() }

func (id *RecallID) IsDone() bool {
	id.mu.Lock()
	defer id.mu.Unlock()

	return id.done
}

// OnDone registers fn to run when id is done. It runs at once if id is
// already done.
func (id *RecallID) OnDone(fn func(*RecallID)) {
	id.mu.Lock()
	if !id.done {
		id.handlers = append(id.handlers, fn)
		id.mu.Unlock()
		return
	}
	id.mu.Unlock()

	fn(id)
}

// Done ends the run. Only the first call has an effect.
func (id *RecallID) Done() {
	id.mu.Lock()
	if id.done {
		id.mu.Unlock()
		return
	}
	id.done = true
	handlers := id.handlers
	id.handlers = nil
	id.mu.Unlock()

	if p := id.ctx.parent; p != nil {
		p.removeChild(id.ctx)
	}

	for _, fn := range handlers {
		fn(id)
	}
}
