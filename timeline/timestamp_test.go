// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"testing"
	"time"
)

func TestOffsetTimestamp_RoundsDown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		offset, window, want uint64
	}{
		{0, 256, 0},
		{255, 256, 0},
		{256, 256, 256},
		{1000, 64, 960},
		{7, 0, 7},
	}

	for _, tt := range tests {
		if got := OffsetTimestamp(tt.offset, tt.window).Offset; got != tt.want {
			t.Errorf("OffsetTimestamp(%d, %d) = %d, want %d", tt.offset, tt.window, got, tt.want)
		}
	}
}

func TestTimestamp_CompareUnix(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := UnixTimestamp(now)
	b := UnixTimestamp(now.Add(time.Second))

	if a.Compare(b) >= 0 || b.Compare(a) <= 0 || a.Compare(a) != 0 {
		t.Error("Compare() does not order unix timestamps")
	}
}

func TestFindNear(t *testing.T) {
	t.Parallel()

	var items []*Notation
	for _, off := range []uint64{2048, 0, 1024} {
		items = Insert(items, NewNotation(0, OffsetTimestamp(off, DefaultNotationOffset)))
	}
	items = Insert(items, NewNotation(1, OffsetTimestamp(0, DefaultNotationOffset)))

	for i := 1; i < len(items); i++ {
		if items[i-1].Timestamp().Compare(items[i].Timestamp()) > 0 {
			t.Fatal("Insert() did not keep buckets ordered")
		}
	}

	tests := []struct {
		name      string
		line      int
		query     uint64
		want      uint64
		wantFound bool
	}{
		{"exact bucket", 0, 1024, 1024, true},
		{"inside bucket", 0, 1500, 1024, true},
		{"past last bucket", 0, 9000, 2048, true},
		{"other line", 1, 3000, 0, true},
		{"unknown line", 2, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := FindNear(items, tt.line, Timestamp{Flags: TimestampOffset, Offset: tt.query})
			if ok != tt.wantFound {
				t.Fatalf("FindNear() found = %v, want %v", ok, tt.wantFound)
			}
			if ok && (got.Timestamp().Offset != tt.want || got.Line() != tt.line) {
				t.Errorf("FindNear() = line %d offset %d, want line %d offset %d",
					got.Line(), got.Timestamp().Offset, tt.line, tt.want)
			}
		})
	}
}

func TestFindNear_BeforeFirstBucket(t *testing.T) {
	t.Parallel()

	items := []*Notation{NewNotation(0, OffsetTimestamp(1024, DefaultNotationOffset))}

	if got, ok := FindNear(items, 0, OffsetTimestamp(10, 1)); ok || got != nil {
		t.Errorf("FindNear() = %v, %v; want nil, false", got, ok)
	}
}
