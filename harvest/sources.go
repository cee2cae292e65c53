package harvest

import (
	"context"
	"fmt"

	"github.com/hazyhaar/glane/content"
)

// SourceFactory builds run sources on demand. The HTTP and MCP
// surfaces use it to open a collection session per request; the
// returned release func tears the session down after the run.
type SourceFactory interface {
	// ProfileSource opens a chronological-mode source for a profile
	// handle.
	ProfileSource(ctx context.Context, handle string) (Source, func(), error)
	// TrendsSource opens an engagement-mode source for a category and
	// its hashtag preset.
	TrendsSource(ctx context.Context, category string, hashtags []string) (Source, func(), error)
}

// ScanCategory resolves a category to its hashtag preset, opens a
// trends source and runs an engagement scan. Unknown categories run
// with the generic preset.
func (s *Service) ScanCategory(ctx context.Context, factory SourceFactory, category string, opts TrendsOptions) (*content.ResultSet, error) {
	if err := validIdent(category); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, ErrNoCollector
	}

	tags, known := ResolveCategory(category, s.config.Categories)
	if !known {
		s.logger.Warn("harvest: unknown category, using generic preset", "category", category)
	}
	opts.Hashtags = tags

	src, release, err := factory.TrendsSource(ctx, category, tags)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.ScanTrends(ctx, src, opts)
}

// ScanHandle opens a profile source and runs a chronological scan.
func (s *Service) ScanHandle(ctx context.Context, factory SourceFactory, handle string, opts ProfileOptions) (*content.ResultSet, error) {
	if err := validIdent(handle); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, ErrNoCollector
	}

	src, release, err := factory.ProfileSource(ctx, handle)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.ScanProfile(ctx, src, opts)
}

// validIdent rejects handles and categories with characters unsuitable
// for URL path segments or result directory names. Entities become
// directories under the data dir, so this doubles as a traversal guard.
func validIdent(s string) error {
	if s == "" {
		return ErrInvalidEntity
	}
	if len(s) > 128 {
		return fmt.Errorf("%w: too long", ErrInvalidEntity)
	}
	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
		if !ok {
			return fmt.Errorf("%w: character %q not allowed", ErrInvalidEntity, r)
		}
	}
	if s == "." || s == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidEntity)
	}
	return nil
}
