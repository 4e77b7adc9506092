package store

import (
	"context"
	"testing"
)

func TestCoordinates_EmptyTable(t *testing.T) {
	s := createTestStore(t)

	coords, err := s.Coordinates(context.Background())
	if err != nil {
		t.Fatalf("Coordinates() failed: %v", err)
	}
	if coords == nil {
		t.Error("Coordinates() returned nil, want empty slice")
	}
	if len(coords) != 0 {
		t.Errorf("got %d coordinates, want 0", len(coords))
	}
}

func TestCoordinates_OrderedByID(t *testing.T) {
	s := createTestStore(t)

	mustInsert(t, s, 1, 1)
	mustInsert(t, s, 9, 9)
	mustInsert(t, s, 4.5, 3)

	coords, err := s.Coordinates(context.Background())
	if err != nil {
		t.Fatalf("Coordinates() failed: %v", err)
	}
	if len(coords) != 3 {
		t.Fatalf("got %d coordinates, want 3", len(coords))
	}
	for i := 1; i < len(coords); i++ {
		if coords[i].ID <= coords[i-1].ID {
			t.Errorf("coordinates not ordered by id: %v", coords)
		}
	}
	if coords[1].X != 9 || coords[1].Y != 9 {
		t.Errorf("second coordinate = %+v, want (9, 9)", coords[1])
	}
}

func TestLatestCoordinate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, found, err := s.LatestCoordinate(ctx)
	if err != nil {
		t.Fatalf("LatestCoordinate() failed: %v", err)
	}
	if found {
		t.Error("found latest coordinate in empty table")
	}

	mustInsert(t, s, 1, 2)
	id := mustInsert(t, s, 8.5, 1)

	c, found, err := s.LatestCoordinate(ctx)
	if err != nil {
		t.Fatalf("LatestCoordinate() failed: %v", err)
	}
	if !found || c.ID != id || c.X != 8.5 || c.Y != 1 {
		t.Errorf("latest = %+v (found=%v), want id %d at (8.5, 1)", c, found, id)
	}
}
