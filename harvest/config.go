package harvest

import (
	"time"

	"github.com/hazyhaar/glane/harvest/internal/rank"
)

// Config configures the harvest service.
type Config struct {
	// StagnationLimit is the number of consecutive zero-delta paging
	// rounds after which a source is assumed exhausted. Default: 5.
	StagnationLimit int
	// RoundCap bounds paging rounds per run. Default: 200.
	RoundCap int

	// DetailWorkers bounds concurrent detail resolution. Default: 4.
	DetailWorkers int

	// MaxAge is the engagement-mode recency window. Default: 72h.
	MaxAge time.Duration

	// Boilerplate patterns removed from scraped text.
	// Default: normalize.DefaultBoilerplate.
	Boilerplate []string

	// Pinned overrides the chronological-mode pinned check.
	// Default: rank.DefaultPinned (timestamp present and strict-Z).
	Pinned rank.PinnedPredicate

	// Categories extends or overrides the built-in hashtag presets.
	Categories map[string][]string
}

func (c *Config) defaults() {
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 5
	}
	if c.RoundCap <= 0 {
		c.RoundCap = 200
	}
	if c.DetailWorkers <= 0 {
		c.DetailWorkers = 4
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 72 * time.Hour
	}
}
