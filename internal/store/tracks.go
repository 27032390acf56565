package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
)

// Track is a row of the Tracks table
type Track struct {
	ID               int64
	Title            string
	ArtistID         int64
	ProjectTrackID   string
	SoundDescription string
}

// TrackExists checks for a track with this exact title and artist
func (t *Tx) TrackExists(ctx context.Context, title string, artistID int64) (bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		"SELECT track_id FROM Tracks WHERE title = ? AND artist_id = ?",
		title, artistID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check track: %w", err)
	}
	return true, nil
}

// InsertTrack inserts a track and sets tr.ID. Empty project ids and sound
// descriptions are stored as NULL.
func (t *Tx) InsertTrack(ctx context.Context, tr *Track) error {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO Tracks (title, artist_id, project_track_id, narrative_sound_description)
		VALUES (?, ?, ?, ?)
	`, tr.Title, tr.ArtistID, nullString(tr.ProjectTrackID), nullString(tr.SoundDescription))
	if err != nil {
		return wrapInsertErr(fmt.Sprintf("insert track %q", tr.Title), err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get track id: %w", err)
	}
	tr.ID = id
	return nil
}

// MaxProjectTrackNumber scans every project_track_id of the form
// <prefix><digits> and returns the largest numeric suffix, or 0 if none.
// Ids with a non-numeric suffix are ignored.
func (t *Tx) MaxProjectTrackNumber(ctx context.Context, prefix string) (int, error) {
	return maxProjectTrackNumber(ctx, t.tx, prefix)
}

// MaxProjectTrackNumber is the read-only variant used outside a populate run
func (s *Store) MaxProjectTrackNumber(ctx context.Context, prefix string) (int, error) {
	return maxProjectTrackNumber(ctx, s.db, prefix)
}

func maxProjectTrackNumber(ctx context.Context, q queryer, prefix string) (int, error) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)$`)

	rows, err := q.QueryContext(ctx,
		"SELECT project_track_id FROM Tracks WHERE project_track_id LIKE ?",
		prefix+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query project track ids: %w", err)
	}
	defer rows.Close()

	maxNum := 0
	for rows.Next() {
		var id sql.NullString
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan project track id: %w", err)
		}
		m := pattern.FindStringSubmatch(id.String)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxNum {
			maxNum = n
		}
	}
	return maxNum, rows.Err()
}

// GetTrack returns the track with this title by the named artist, or nil
func (s *Store) GetTrack(ctx context.Context, title, artistName string) (*Track, error) {
	tr := &Track{}
	var projectID, sound sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT t.track_id, t.title, t.artist_id, t.project_track_id, t.narrative_sound_description
		FROM Tracks t
		JOIN Artists a ON a.artist_id = t.artist_id
		WHERE t.title = ? AND a.name = ?
	`, title, artistName).Scan(&tr.ID, &tr.Title, &tr.ArtistID, &projectID, &sound)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	tr.ProjectTrackID = projectID.String
	tr.SoundDescription = sound.String
	return tr, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
