// Package content defines the canonical data model shared by the harvest
// core and its collaborators: candidate references discovered while
// paging, normalized content records, and ranked result sets.
package content

import (
	"strings"
	"time"
)

// Kind classifies a content item by its URL shape.
type Kind string

const (
	KindPhoto   Kind = "photo"
	KindReel    Kind = "reel"
	KindUnknown Kind = "unknown"
)

// KindFromURL derives the item kind from its URL path.
func KindFromURL(url string) Kind {
	switch {
	case strings.Contains(url, "/reel/"):
		return KindReel
	case strings.Contains(url, "/p/"):
		return KindPhoto
	default:
		return KindUnknown
	}
}

// CandidateRef is an unresolved reference to a content item discovered
// during paging. It exists only within a run.
type CandidateRef struct {
	ID    string `json:"id"`    // canonical item URL
	Round int    `json:"round"` // paging round it was first seen in
}

// Metrics holds raw engagement counters. A nil *Metrics on a Record means
// the counters could not be extracted — distinct from zero engagement.
type Metrics struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// Score computes the engagement score: likes + 3*comments.
// Always derived from the counters, never stored independently.
func (m *Metrics) Score() int64 {
	if m == nil {
		return 0
	}
	return m.Likes + 3*m.Comments
}

// RawFields is what a detail fetcher extracts from one item before
// normalization. String fields are as-scraped; empty means absent.
type RawFields struct {
	URL       string
	Timestamp string // as found, e.g. "2024-01-01T00:00:00Z"
	Text      string
	LikesText string // e.g. "4.5K"
	CommText  string
	AudioName string
}

// Record is the normalized, validated representation of one content item.
// Immutable after creation.
type Record struct {
	ID           string     `json:"id"`
	SourceEntity string     `json:"source_entity"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	RawTimestamp string     `json:"raw_timestamp,omitempty"` // verbatim scraped form
	Text         string     `json:"text"`
	Kind         Kind       `json:"kind"`
	Metrics      *Metrics   `json:"metrics,omitempty"`
	Hashtags     []string   `json:"hashtags,omitempty"`
	AudioName    string     `json:"audio_name,omitempty"`
}

// Score is shorthand for the record's engagement score (0 when metrics
// are absent).
func (r *Record) Score() int64 { return r.Metrics.Score() }

// Strategy names the active ranking strategy of a result set.
type Strategy string

const (
	StrategyChronological Strategy = "chronological"
	StrategyEngagement    Strategy = "engagement"
)

// Params records the knobs a run was invoked with, echoed into output.
type Params struct {
	TargetNewCount int      `json:"target_new_count,omitempty"`
	MaxAgeHours    float64  `json:"max_age_hours,omitempty"`
	TopN           int      `json:"top_n"`
	Hashtags       []string `json:"hashtags_used,omitempty"`
}

// ResultSet is the output of one run: the admitted records in strategy
// order, never longer than the requested N.
type ResultSet struct {
	SourceEntity string    `json:"source_entity"`
	GeneratedAt  time.Time `json:"generated_at"`
	Strategy     Strategy  `json:"strategy"`
	Params       Params    `json:"params"`
	Records      []Record  `json:"records"`
}
