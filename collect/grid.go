package collect

import (
	"context"
	"log/slog"
)

// GridCollector pages a profile grid: the first round navigates to the
// profile, every round harvests visible post anchors and scrolls
// deeper. Admission and dedup are the caller's concern; batches may
// repeat URLs freely.
type GridCollector struct {
	sess   *Session
	handle string
	logger *slog.Logger
}

// NewGridCollector creates a collector over an open session.
func NewGridCollector(sess *Session, handle string, logger *slog.Logger) *GridCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &GridCollector{sess: sess, handle: handle, logger: logger}
}

// NextBatch returns the post URLs currently visible on the grid, then
// scrolls to surface more for the next round.
func (g *GridCollector) NextBatch(ctx context.Context, _ string, round int) ([]string, error) {
	if round == 1 {
		url := g.sess.cfg.BaseURL + "/" + g.handle + "/"
		g.logger.Info("collect: opening profile", "url", url)
		if err := g.sess.navigate(ctx, url); err != nil {
			return nil, err
		}
		if err := pause(ctx, g.sess.cfg.SettleDelay); err != nil {
			return nil, err
		}
	}

	hrefs, err := g.sess.anchorHrefs(ctx, gridAnchorSelector)
	if err != nil {
		return nil, err
	}
	urls := candidateURLs(g.sess.cfg.BaseURL, hrefs)

	// Best effort: a failed scroll still returns this round's harvest;
	// the next rounds will stagnate naturally if the page is stuck.
	if err := g.sess.scroll(ctx); err != nil {
		if ctx.Err() != nil {
			return urls, ctx.Err()
		}
		g.logger.Warn("collect: scroll failed", "handle", g.handle, "error", err)
	}
	return urls, nil
}
