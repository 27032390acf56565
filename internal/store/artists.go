package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Artist is a row of the Artists table
type Artist struct {
	ID   int64
	Name string
}

// GetOrCreateArtist returns the id of the artist with exactly this name,
// inserting it first if needed. created is true only when a row was added.
//
// The insert uses ON CONFLICT DO NOTHING RETURNING, so a new artist costs one
// round trip; the follow-up SELECT runs only when the name already exists.
func (t *Tx) GetOrCreateArtist(ctx context.Context, name string) (id int64, created bool, err error) {
	return getOrCreateArtist(ctx, t.tx, name)
}

func getOrCreateArtist(ctx context.Context, q queryer, name string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO Artists (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
		RETURNING artist_id
	`, name).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, wrapInsertErr(fmt.Sprintf("insert artist %q", name), err)
	}

	err = q.QueryRowContext(ctx, "SELECT artist_id FROM Artists WHERE name = ?", name).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("could not find or create artist %q: %w", name, err)
	}
	return id, false, nil
}

// FindArtist returns the artist with exactly this name, or nil
func (s *Store) FindArtist(ctx context.Context, name string) (*Artist, error) {
	a := &Artist{}
	err := s.db.QueryRowContext(ctx,
		"SELECT artist_id, name FROM Artists WHERE name = ?", name,
	).Scan(&a.ID, &a.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return a, nil
}
