package store

import (
	"context"
	"time"
)

// LoadSeen returns every item ID previously admitted for the entity.
// An entity with no history yields an empty set, not an error.
func (s *Store) LoadSeen(ctx context.Context, entity string) (map[string]struct{}, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT item_id FROM seen_items WHERE entity = ?`, entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
	}
	return seen, rows.Err()
}

// MarkSeen persists an item for the entity if not already present.
// Returns whether a write occurred; a duplicate insert is a no-op, not
// an error.
func (s *Store) MarkSeen(ctx context.Context, entity, itemID, timestamp string) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_items (entity, item_id, timestamp, first_seen_at)
		VALUES (?, ?, ?, ?)`,
		entity, itemID, timestamp, time.Now().UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountSeen returns the number of remembered items for an entity.
func (s *Store) CountSeen(ctx context.Context, entity string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seen_items WHERE entity = ?`, entity).Scan(&n)
	return n, err
}

// Entities returns all entities with at least one remembered item.
func (s *Store) Entities(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT DISTINCT entity FROM seen_items ORDER BY entity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
