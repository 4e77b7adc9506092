package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/affectgrid/internal/grid"
)

// Coordinates returns every stored coordinate ordered by id.
// This is a full-table scan intended for diagnostics.
//
// Returns an empty slice (not nil) if the table is empty.
func (s *Store) Coordinates(ctx context.Context) ([]grid.Coordinate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, x, y
		FROM coordinates
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query coordinates: %w", err)
	}
	defer rows.Close()

	coords := []grid.Coordinate{}
	for rows.Next() {
		var c grid.Coordinate
		if err := rows.Scan(&c.ID, &c.X, &c.Y); err != nil {
			return nil, fmt.Errorf("scan coordinate: %w", err)
		}
		coords = append(coords, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coordinates: %w", err)
	}

	return coords, nil
}

// CountCoordinates returns the number of stored coordinates.
func (s *Store) CountCoordinates(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coordinates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count coordinates: %w", err)
	}
	return count, nil
}

// LatestCoordinate returns the coordinate with the highest id.
// Returns found=false if the table is empty.
func (s *Store) LatestCoordinate(ctx context.Context) (c grid.Coordinate, found bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, x, y
		FROM coordinates
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&c.ID, &c.X, &c.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return grid.Coordinate{}, false, nil
	}
	if err != nil {
		return grid.Coordinate{}, false, fmt.Errorf("latest coordinate: %w", err)
	}
	return c, true, nil
}
