// Package normalize turns raw scraped fields into canonical values:
// engagement counts, timestamps, hashtags, and cleaned caption text.
//
// All functions are pure and total: malformed input degrades to an
// absent value, never to a panic or a fake zero.
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseCount parses a human-formatted count like "12,345", "12.3K" or
// "4.5M" into an integer. The k/m suffix is case-insensitive and
// multiplies by 1e3/1e6; thousands separators are stripped before the
// mantissa is parsed as a float and truncated.
//
// Returns ok=false for empty or unparsable input. Callers must treat
// that as "unknown", not zero.
func ParseCount(text string) (int64, bool) {
	v := strings.ToLower(strings.TrimSpace(text))
	if v == "" {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")

	var multiplier float64 = 1
	switch {
	case strings.HasSuffix(v, "k"):
		multiplier = 1_000
		v = strings.TrimSuffix(v, "k")
	case strings.HasSuffix(v, "m"):
		multiplier = 1_000_000
		v = strings.TrimSuffix(v, "m")
	}

	num, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int64(num * multiplier), true
}

// ParseTimestamp parses an ISO-8601 timestamp with a Z suffix or an
// explicit offset. Returns ok=false for empty or invalid input.
func ParseTimestamp(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var hashtagRe = regexp.MustCompile(`#\w+`)

// Hashtags extracts all #word tags from text, case-folded to lowercase
// and deduplicated. The result is sorted for stable output.
func Hashtags(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]struct{})
	for _, tag := range hashtagRe.FindAllString(text, -1) {
		seen[strings.ToLower(tag)] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Cleaner removes boilerplate noise from scraped text using a list of
// case-insensitive patterns, then collapses runs of whitespace.
// Cleaning is idempotent: Clean(Clean(s)) == Clean(s).
type Cleaner struct {
	patterns []*regexp.Regexp
}

// NewCleaner compiles the given patterns with case-insensitive matching.
// Invalid patterns are rejected at construction, not at cleaning time.
func NewCleaner(patterns []string) (*Cleaner, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Cleaner{patterns: compiled}, nil
}

// Clean applies all patterns, collapses whitespace, and trims.
// Empty input yields empty output.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range c.patterns {
		text = re.ReplaceAllString(text, "")
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// TruncationMarker is appended when text is hard-truncated at the length
// cap so downstream consumers can tell the text was cut.
const TruncationMarker = " ... [truncated]"

// Truncate bounds text for downstream consumers (classification prompts).
// If any cut marker occurs in the text, it is cut at the earliest
// occurrence across all markers. Otherwise text longer than maxLen runes
// is hard-truncated and TruncationMarker is appended.
func Truncate(text string, maxLen int, cutMarkers []string) string {
	if text == "" {
		return ""
	}

	cut := -1
	for _, marker := range cutMarkers {
		if marker == "" {
			continue
		}
		if idx := strings.Index(text, marker); idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	if cut >= 0 {
		return strings.TrimSpace(text[:cut])
	}

	runes := []rune(text)
	if maxLen > 0 && len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen])) + TruncationMarker
	}
	return strings.TrimSpace(text)
}
