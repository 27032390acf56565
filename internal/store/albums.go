package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AlbumExists checks for an album with this exact title and artist
func (t *Tx) AlbumExists(ctx context.Context, title string, artistID int64) (bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		"SELECT album_id FROM Albums WHERE title = ? AND artist_id = ?",
		title, artistID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check album: %w", err)
	}
	return true, nil
}

// InsertAlbum inserts an album and returns its id. A collision with an
// existing (title, artist_id) pair is reported as util.ErrUniquenessConflict.
func (t *Tx) InsertAlbum(ctx context.Context, title string, artistID int64) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		"INSERT INTO Albums (title, artist_id) VALUES (?, ?)",
		title, artistID,
	)
	if err != nil {
		return 0, wrapInsertErr(fmt.Sprintf("insert album %q", title), err)
	}
	return result.LastInsertId()
}

// CountAlbumsByArtist returns the number of albums stored for an artist name
func (s *Store) CountAlbumsByArtist(ctx context.Context, artistName string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM Albums al
		JOIN Artists ar ON ar.artist_id = al.artist_id
		WHERE ar.name = ?
	`, artistName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count albums: %w", err)
	}
	return count, nil
}
