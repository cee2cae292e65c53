package collect

import (
	"context"
	"log/slog"
)

// TagCollector pages hashtag feeds: one feed per round, scrolled a few
// passes before harvesting its anchors. Once every tag has been
// visited the collector returns empty batches and the run stops on
// stagnation.
type TagCollector struct {
	sess   *Session
	tags   []string
	logger *slog.Logger
}

// NewTagCollector creates a collector over an open session for a
// hashtag preset.
func NewTagCollector(sess *Session, tags []string, logger *slog.Logger) *TagCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagCollector{sess: sess, tags: tags, logger: logger}
}

// NextBatch visits the round's hashtag feed and returns the post URLs
// found on it.
func (t *TagCollector) NextBatch(ctx context.Context, _ string, round int) ([]string, error) {
	if round > len(t.tags) {
		return nil, nil
	}
	tag := t.tags[round-1]

	url := t.sess.cfg.BaseURL + "/explore/tags/" + tag + "/"
	t.logger.Info("collect: visiting hashtag feed", "tag", tag)
	if err := t.sess.navigate(ctx, url); err != nil {
		return nil, err
	}
	if err := pause(ctx, t.sess.cfg.SettleDelay); err != nil {
		return nil, err
	}

	for i := 0; i < t.sess.cfg.TagScrolls; i++ {
		if err := t.sess.scroll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			break
		}
	}

	hrefs, err := t.sess.anchorHrefs(ctx, gridAnchorSelector)
	if err != nil {
		return nil, err
	}
	urls := candidateURLs(t.sess.cfg.BaseURL, hrefs)
	t.logger.Info("collect: hashtag feed harvested", "tag", tag, "anchors", len(urls))
	return urls, nil
}
