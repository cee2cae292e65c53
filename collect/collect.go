// Package collect implements candidate discovery and detail resolution
// over a real browser. It drives Chrome through Rod with stealth
// patches, paging profile grids and hashtag feeds for candidate URLs
// and opening individual post pages to extract raw fields.
//
// collect gathers, it does not rank. Everything it returns is raw
// scraped text; normalization and scoring happen downstream.
package collect

import (
	"context"
	"strings"
	"time"
)

// Config configures a collection session.
type Config struct {
	// BaseURL is the site root. Default: "https://www.instagram.com".
	BaseURL string `yaml:"base_url"`

	// Headless runs Chrome without a window. Default: true. Turn off
	// to watch a login flow.
	Headless bool `yaml:"headless"`

	// Remote is the WebSocket URL of an external Chrome instance.
	// Empty launches a local one.
	Remote string `yaml:"remote"`

	// UserDataDir persists cookies between sessions so login survives
	// restarts. Default: ".browser_profile".
	UserDataDir string `yaml:"user_data_dir"`

	// Username and Password authenticate the session when no live
	// cookie is present. Usually loaded from the environment.
	Username string `yaml:"-"`
	Password string `yaml:"-"`

	// NavTimeout bounds a single page navigation. Default: 80s.
	NavTimeout time.Duration `yaml:"nav_timeout"`

	// SettleDelay is the pause after navigation before reading the
	// page. Default: 2s.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// ScrollDelay is the pause after each scroll round. Default: 1200ms.
	ScrollDelay time.Duration `yaml:"scroll_delay"`

	// ScrollStep is the wheel delta per scroll, in pixels. Default: 2500.
	ScrollStep int `yaml:"scroll_step"`

	// TagScrolls is the number of scroll passes on a hashtag feed
	// before harvesting its anchors. Default: 8.
	TagScrolls int `yaml:"tag_scrolls"`

	// ExpandCycles bounds comment-expansion passes on a post page.
	// Default: 15. Trend scans use a lighter setting.
	ExpandCycles int `yaml:"expand_cycles"`
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.instagram.com"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.UserDataDir == "" {
		c.UserDataDir = ".browser_profile"
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 80 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.ScrollDelay <= 0 {
		c.ScrollDelay = 1200 * time.Millisecond
	}
	if c.ScrollStep <= 0 {
		c.ScrollStep = 2500
	}
	if c.TagScrolls <= 0 {
		c.TagScrolls = 8
	}
	if c.ExpandCycles <= 0 {
		c.ExpandCycles = 15
	}
}

// pause sleeps for d or until the context is cancelled.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
