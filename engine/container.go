// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"slices"
	"sync"
)

// RecallContainer groups the recalls one effect attached to an audio in
// one context, play or recall.
type RecallContainer struct {
	mu sync.Mutex

	name     string
	play     bool
	filename string
	effect   string
	recalls  []Recall
}

// NewRecallContainer creates a container for the effect called name.
func NewRecallContainer(name string, play bool) *RecallContainer {
	return &RecallContainer{name: name, play: play}
}

func (c *RecallContainer) Name() string { return c.name }

// IsPlay reports whether the container belongs to the play context.
func (c *RecallContainer) IsPlay() bool { return c.play }

// Plugin returns the plugin file and effect of plugin-hosted recalls.
func (c *RecallContainer) Plugin() (filename, effect string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.filename, c.effect
}

func (c *RecallContainer) SetPlugin(filename, effect string) {
	c.mu.Lock()
	c.filename, c.effect = filename, effect
	c.mu.Unlock()
}

// Add attaches r to the container.
func (c *RecallContainer) Add(r Recall) {
	c.mu.Lock()
	if slices.Contains(c.recalls, r) {
		c.mu.Unlock()
		return
	}
	c.recalls = append(c.recalls, r)
	c.mu.Unlock()

	r.Base().setContainer(c)
}

func (c *RecallContainer) Remove(r Recall) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.recalls, r)
	if i < 0 {
		return false
	}
	c.recalls = slices.Delete(c.recalls, i, i+1)

	return true
}

func (c *RecallContainer) Recalls() []Recall {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.recalls)
}

// Level returns the recalls bound at level.
func (c *RecallContainer) Level(level Level) []Recall {
	var out []Recall
	for _, r := range c.Recalls() {
		if r.Base().Level() == level {
			out = append(out, r)
		}
	}

	return out
}

// CoversChannel reports whether a channel-level recall of the container
// is bound to ch.
func (c *RecallContainer) CoversChannel(ch *Channel) bool {
	for _, r := range c.Recalls() {
		if r.Base().Level() == LevelChannel && r.Base().Channel() == ch {
			return true
		}
	}

	return false
}
