package collect

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/glane/harvest"
)

// Light comment expansion is enough for trend scans; counters surface
// without a full expand.
const lightExpandCycles = 5

// Factory opens one browser session per requested source and tears it
// down when the run releases it. It satisfies harvest.SourceFactory.
type Factory struct {
	cfg    Config
	logger *slog.Logger
}

// NewFactory creates a source factory from collection config.
func NewFactory(cfg Config, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{cfg: cfg, logger: logger}
}

// ProfileSource opens an authenticated session for a profile grid
// scan.
func (f *Factory) ProfileSource(ctx context.Context, handle string) (harvest.Source, func(), error) {
	sess, err := Open(ctx, f.cfg, f.logger)
	if err != nil {
		return harvest.Source{}, nil, err
	}
	src := harvest.Source{
		Entity:    handle,
		Collector: NewGridCollector(sess, handle, f.logger),
		Details:   NewPageDetails(sess, 0, f.logger),
	}
	return src, sess.Close, nil
}

// TrendsSource opens an authenticated session for a hashtag feed scan.
// The entity is namespaced so category runs never share dedup state
// with a profile of the same name.
func (f *Factory) TrendsSource(ctx context.Context, category string, hashtags []string) (harvest.Source, func(), error) {
	sess, err := Open(ctx, f.cfg, f.logger)
	if err != nil {
		return harvest.Source{}, nil, err
	}
	src := harvest.Source{
		Entity:    "cat:" + category,
		Collector: NewTagCollector(sess, hashtags, f.logger),
		Details:   NewPageDetails(sess, lightExpandCycles, f.logger),
	}
	return src, sess.Close, nil
}
