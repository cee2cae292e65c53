// Package rank applies mode-specific admission filters, sorts admitted
// records by the active strategy, and truncates to the requested size.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/glane/content"
)

// PinnedPredicate reports whether a record looks pinned (anomalously
// ordered) and must be excluded from chronological output.
//
// The default check is a heuristic with known false-positive risk: a
// legitimately malformed-but-real entry is also dropped. It stays a
// pluggable predicate until real data settles the question.
type PinnedPredicate func(r *content.Record) bool

// DefaultPinned treats a record as pinned when its timestamp is absent
// or its raw form is not in strict zero-offset ("Z"-suffixed) shape.
func DefaultPinned(r *content.Record) bool {
	return r.Timestamp == nil || !strings.HasSuffix(r.RawTimestamp, "Z")
}

// FilterPinned returns the records not matched by pred. A nil pred uses
// DefaultPinned.
func FilterPinned(records []content.Record, pred PinnedPredicate) []content.Record {
	if pred == nil {
		pred = DefaultPinned
	}
	out := make([]content.Record, 0, len(records))
	for i := range records {
		if pred(&records[i]) {
			continue
		}
		out = append(out, records[i])
	}
	return out
}

// FilterRecent admits records whose age relative to now is at most
// maxAge. The boundary is inclusive: a record aged exactly maxAge is
// kept. Records without a timestamp are dropped — age unknown means
// recency cannot be established.
func FilterRecent(records []content.Record, now time.Time, maxAge time.Duration) []content.Record {
	out := make([]content.Record, 0, len(records))
	for i := range records {
		ts := records[i].Timestamp
		if ts == nil {
			continue
		}
		if now.Sub(*ts) > maxAge {
			continue
		}
		out = append(out, records[i])
	}
	return out
}

// SortChronological orders records newest first. Records without a
// timestamp sort last; the pinned filter normally removes them, but the
// comparator must not depend on that.
func SortChronological(records []content.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return tsAfter(records[i].Timestamp, records[j].Timestamp)
	})
}

// SortEngagement orders records by engagement score descending, ties
// broken by timestamp descending (more recent wins). The score is
// recomputed from likes/comments here, never trusted from upstream.
func SortEngagement(records []content.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := records[i].Metrics.Score(), records[j].Metrics.Score()
		if si != sj {
			return si > sj
		}
		return tsAfter(records[i].Timestamp, records[j].Timestamp)
	})
}

// tsAfter reports whether a sorts before b under "newest first, absent
// last".
func tsAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}

// Top returns the first min(n, len) records. It never pads; when
// nothing survives the filters an empty sequence is a valid result.
func Top(records []content.Record, n int) []content.Record {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}
