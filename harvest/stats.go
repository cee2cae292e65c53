package harvest

import (
	"context"

	"github.com/hazyhaar/glane/harvest/internal/store"
)

// EntityStats summarizes what the dedup store knows about one entity.
type EntityStats struct {
	Entity string `json:"entity"`
	Seen   int    `json:"seen"`
}

// Stats reports the seen-item count per known entity.
func (s *Service) Stats(ctx context.Context) ([]EntityStats, error) {
	entities, err := s.store.Entities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EntityStats, 0, len(entities))
	for _, e := range entities {
		n, err := s.store.CountSeen(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, EntityStats{Entity: e, Seen: n})
	}
	return out, nil
}

// RecentRuns returns the latest run log entries, newest first. An
// empty entity matches all entities.
func (s *Service) RecentRuns(ctx context.Context, entity string, limit int) ([]*store.RunEntry, error) {
	return s.store.RecentRuns(ctx, entity, limit)
}

// RunEntry re-exports the run log row type for callers outside the
// package.
type RunEntry = store.RunEntry
