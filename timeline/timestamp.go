// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"slices"
	"time"
)

// Default bucket windows in ticks.
const (
	DefaultNotationOffset   uint64 = 1024
	DefaultAutomationOffset uint64 = 1024
	DefaultWaveOffset       uint64 = 64
)

// TimestampFlags tells which field of a Timestamp is meaningful.
type TimestampFlags uint8

const (
	TimestampUnix TimestampFlags = 1 << iota
	TimestampOffset
)

// Timestamp is either a wall-clock marker or a tick offset.
type Timestamp struct {
	Flags  TimestampFlags
	Unix   time.Time
	Offset uint64
}

// OffsetTimestamp returns the timestamp of the window holding offset.
func OffsetTimestamp(offset, window uint64) Timestamp {
	if window > 0 {
		offset -= offset % window
	}

	return Timestamp{Flags: TimestampOffset, Offset: offset}
}

// UnixTimestamp wraps a wall-clock time.
func UnixTimestamp(t time.Time) Timestamp {
	return Timestamp{Flags: TimestampUnix, Unix: t}
}

// Compare orders offset timestamps by offset and unix timestamps by time.
func (ts Timestamp) Compare(o Timestamp) int {
	if ts.Flags&TimestampUnix != 0 && o.Flags&TimestampUnix != 0 {
		return ts.Unix.Compare(o.Unix)
	}

	switch {
	case ts.Offset < o.Offset:
		return -1
	case ts.Offset > o.Offset:
		return 1
	default:
		return 0
	}
}

// Bucket is one window of a time-indexed collection.
type Bucket interface {
	Line() int
	Timestamp() Timestamp
}

// FindNear returns the bucket of line whose timestamp is the greatest one
// not after ts.
func FindNear[T Bucket](items []T, line int, ts Timestamp) (T, bool) {
	var (
		best  T
		found bool
	)

	for _, item := range items {
		if item.Line() != line || item.Timestamp().Compare(ts) > 0 {
			continue
		}

		if !found || item.Timestamp().Compare(best.Timestamp()) > 0 {
			best = item
			found = true
		}
	}

	return best, found
}

// Insert adds item keeping items ordered by timestamp, then line.
func Insert[T Bucket](items []T, item T) []T {
	i, _ := slices.BinarySearchFunc(items, item, func(a, b T) int {
		if c := a.Timestamp().Compare(b.Timestamp()); c != 0 {
			return c
		}
		return a.Line() - b.Line()
	})

	return slices.Insert(items, i, item)
}
