// SPDX-License-Identifier: EPL-2.0

// Package timeline holds the time-indexed data of an audio track: notes,
// automation curves and recorded waves.
//
// Each collection is partitioned into buckets keyed by (line, Timestamp).
// A bucket's timestamp is an offset in sequencer ticks rounded down to a
// fixed window, so the bucket holding tick x is found with FindNear:
//
//	ts := timeline.OffsetTimestamp(x, timeline.DefaultNotationOffset)
//	notation, ok := timeline.FindNear(notations, line, ts)
package timeline
