package store

import (
	"context"
	"fmt"
)

// InsertCoordinate appends one coordinate and returns its generated id.
//
// The row is committed before InsertCoordinate returns. Values are stored
// as given; range checks belong to the caller.
func (s *Store) InsertCoordinate(ctx context.Context, x, y float64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO coordinates (x, y) VALUES (?, ?)`,
		x, y,
	)
	if err != nil {
		return 0, fmt.Errorf("insert coordinate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert coordinate: last insert id: %w", err)
	}

	return id, nil
}
