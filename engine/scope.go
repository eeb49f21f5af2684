// SPDX-License-Identifier: EPL-2.0

package engine

import "fmt"

// SoundScope names a concurrent playback context processing the same
// channels independently.
type SoundScope int

const (
	ScopeDefault SoundScope = iota
	ScopeSequencer
	ScopeNotation
	ScopeWave
	ScopeMIDI
	ScopePlayback
	// ScopeLast is the number of scopes.
	ScopeLast
)

var scopeNames = [...]string{
	ScopeDefault:   "default",
	ScopeSequencer: "sequencer",
	ScopeNotation:  "notation",
	ScopeWave:      "wave",
	ScopeMIDI:      "midi",
	ScopePlayback:  "playback",
}

func (s SoundScope) String() string {
	if s.Valid() {
		return scopeNames[s]
	}

	return fmt.Sprintf("scope(%d)", int(s))
}

func (s SoundScope) Valid() bool {
	return s >= ScopeDefault && s < ScopeLast
}

// ParseScope returns the scope named name.
func ParseScope(name string) (SoundScope, error) {
	for s, n := range scopeNames {
		if n == name {
			return SoundScope(s), nil
		}
	}

	return ScopeLast, fmt.Errorf("%w: %q", ErrUnknownScope, name)
}

// Stage is one of the per-block run stages.
type Stage int

const (
	StagePre Stage = iota
	StageInter
	StagePost
)

func (s Stage) String() string {
	switch s {
	case StagePre:
		return "pre"
	case StageInter:
		return "inter"
	case StagePost:
		return "post"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Direction tells input channels from output channels.
type Direction int

const (
	Output Direction = iota
	Input
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}

	return "output"
}
