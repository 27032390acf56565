package populate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/franz/narrative-db/internal/source"
	"github.com/franz/narrative-db/internal/store"
	"github.com/franz/narrative-db/internal/tracklist"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "narrative.sqlite"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func stats(t *testing.T, st *store.Store) store.Stats {
	t.Helper()
	s, err := st.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	return *s
}

// addConstraint applies extra DDL to the store file through a second
// connection, so inserts can fail after the existence checks pass
func addConstraint(t *testing.T, st *store.Store, ddl string) {
	t.Helper()
	db, err := sql.Open("sqlite", st.Path())
	if err != nil {
		t.Fatalf("Failed to open second connection: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("Failed to apply %q: %v", ddl, err)
	}
}

func TestAlbums_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	rows := []source.AlbumRecord{
		{Artist: "Daft Punk", Album: "Homework"},
		{Artist: "Daft Punk", Album: "Discovery"},
		{Artist: "Orbital", Album: "In Sides"},
		{Artist: "", Album: "Orphan"},
	}

	first, err := Albums(ctx, st, rows, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.ArtistsAdded != 2 || first.ArtistsSkipped != 1 {
		t.Errorf("expected 2 artists added and 1 reused, got %d and %d", first.ArtistsAdded, first.ArtistsSkipped)
	}
	if first.AlbumsAdded != 3 || first.AlbumsSkipped != 0 {
		t.Errorf("expected 3 albums added, got %d added and %d skipped", first.AlbumsAdded, first.AlbumsSkipped)
	}
	if first.RowsSkipped != 1 {
		t.Errorf("expected 1 row skipped, got %d", first.RowsSkipped)
	}
	after1 := stats(t, st)

	second, err := Albums(ctx, st, rows, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.ArtistsAdded != 0 || second.AlbumsAdded != 0 {
		t.Errorf("expected nothing added on second run, got %+v", second)
	}
	if second.AlbumsSkipped != 3 || second.ArtistsSkipped != 3 {
		t.Errorf("expected everything skipped on second run, got %+v", second)
	}
	if after2 := stats(t, st); after2 != after1 {
		t.Errorf("row counts changed between runs: %+v then %+v", after1, after2)
	}
	if after1.Artists != 2 || after1.Albums != 3 {
		t.Errorf("expected 2 artists and 3 albums, got %+v", after1)
	}
}

func TestAlbums_CancelledRunChangesNothing(t *testing.T) {
	st := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Albums(ctx, st, []source.AlbumRecord{{Artist: "A", Album: "B"}}, nil)
	if err == nil {
		t.Fatal("expected cancelled run to fail")
	}
	if s := stats(t, st); s.Artists != 0 || s.Albums != 0 {
		t.Errorf("expected empty store, got %+v", s)
	}
}

func TestAlbums_ConflictSkipsRecord(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	addConstraint(t, st, "CREATE UNIQUE INDEX idx_albums_title_only ON Albums(title)")

	rows := []source.AlbumRecord{
		{Artist: "Alpha", Album: "Same Name"},
		{Artist: "Beta", Album: "Same Name"},
		{Artist: "Gamma", Album: "Other"},
	}

	counts, err := Albums(ctx, st, rows, nil)
	if err != nil {
		t.Fatalf("Albums failed: %v", err)
	}
	if counts.AlbumsAdded != 2 || counts.AlbumsSkipped != 1 {
		t.Errorf("expected 2 added and 1 skipped, got %+v", counts)
	}
	if counts.Errors != 0 {
		t.Errorf("expected a uniqueness conflict not to count as an error, got %d", counts.Errors)
	}
	if s := stats(t, st); s.Artists != 3 || s.Albums != 2 {
		t.Errorf("expected 3 artists and 2 albums committed, got %+v", s)
	}
	if n, _ := st.CountAlbumsByArtist(ctx, "Gamma"); n != 1 {
		t.Errorf("expected the row after the conflict to be inserted, got %d albums", n)
	}
}

func seedTrack(t *testing.T, st *store.Store, artist, title, projectID string) {
	t.Helper()
	ctx := context.Background()
	err := st.Transaction(ctx, func(tx *store.Tx) error {
		id, _, err := tx.GetOrCreateArtist(ctx, artist)
		if err != nil {
			return err
		}
		return tx.InsertTrack(ctx, &store.Track{Title: title, ArtistID: id, ProjectTrackID: projectID})
	})
	if err != nil {
		t.Fatalf("Failed to seed track: %v", err)
	}
}

func TestTracks_FemaleIDSequence(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	seedTrack(t, st, "Art", "A1", "F001")
	seedTrack(t, st, "Art", "A3", "F003")

	in := &TrackInput{
		Female: []source.FemaleTrack{
			{Title: "A1", Artist: "Art"}, // duplicate, must not use F004
			{Title: "New", Artist: "Bee"},
			{Title: "Newer", Artist: "Bee"},
		},
	}

	counts, err := Tracks(ctx, st, in, nil)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if counts.TracksAdded != 2 || counts.TracksSkipped != 1 {
		t.Errorf("expected 2 added and 1 skipped, got %+v", counts)
	}
	if counts.FemaleAssigned != 2 {
		t.Errorf("expected 2 ids assigned, got %d", counts.FemaleAssigned)
	}
	if counts.NextFemaleID != "F006" {
		t.Errorf("expected next id F006, got %s", counts.NextFemaleID)
	}

	for title, want := range map[string]string{"New": "F004", "Newer": "F005"} {
		tr, err := st.GetTrack(ctx, title, "Bee")
		if err != nil || tr == nil {
			t.Fatalf("GetTrack(%s) failed: %v", title, err)
		}
		if tr.ProjectTrackID != want {
			t.Errorf("%s: expected %s, got %s", title, want, tr.ProjectTrackID)
		}
	}
}

func TestTracks_FemaleSequenceStartsAtOne(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	seedTrack(t, st, "Male", "Song", "M007")

	counts, err := Tracks(ctx, st, &TrackInput{
		Female: []source.FemaleTrack{{Title: "First", Artist: "Her"}},
	}, nil)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}

	tr, _ := st.GetTrack(ctx, "First", "Her")
	if tr == nil || tr.ProjectTrackID != "F001" {
		t.Errorf("expected F001, got %+v", tr)
	}
	if counts.NextFemaleID != "F002" {
		t.Errorf("expected next id F002, got %s", counts.NextFemaleID)
	}
}

func TestTracks_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	in := &TrackInput{
		Male: []source.MaleTrack{
			{ProjectTrackID: "M001", Artist: "Underworld", Title: "Born Slippy .NUXX", Sound: "driving"},
			{ProjectTrackID: "M002", Artist: "Leftfield", Title: "Open Up"},
		},
		Female: []source.FemaleTrack{
			{Title: "Army of Me", Artist: "Björk"},
		},
		Tracklist: []tracklist.Candidate{
			{ShowSource: "u", Artist: " Leftfield ", Title: "Open Up"},
			{ShowSource: "u", Artist: "", Title: "Intro"},
			{ShowSource: "u", IsMashup: true, MashupName: "M", Artist: "Daft Punk", Title: "Da Funk"},
		},
	}

	first, err := Tracks(ctx, st, in, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.TracksAdded != 4 {
		t.Errorf("expected 4 tracks added, got %d", first.TracksAdded)
	}
	if first.TracksSkipped != 1 || first.RowsSkipped != 1 {
		t.Errorf("expected 1 duplicate and 1 malformed row, got %+v", first)
	}
	if first.ArtistsAdded != 4 || first.ArtistsSkipped != 1 {
		t.Errorf("expected 4 artists added and 1 reused, got %d and %d", first.ArtistsAdded, first.ArtistsSkipped)
	}
	after1 := stats(t, st)

	second, err := Tracks(ctx, st, in, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.TracksAdded != 0 || second.ArtistsAdded != 0 || second.FemaleAssigned != 0 {
		t.Errorf("expected nothing added on second run, got %+v", second)
	}
	if second.ArtistsSkipped != 5 {
		t.Errorf("expected every artist to be reused on second run, got %d", second.ArtistsSkipped)
	}
	if second.NextFemaleID != "F002" {
		t.Errorf("expected sequence to stay at F002, got %s", second.NextFemaleID)
	}
	if after2 := stats(t, st); after2 != after1 {
		t.Errorf("row counts changed between runs: %+v then %+v", after1, after2)
	}

	tr, _ := st.GetTrack(ctx, "Born Slippy .NUXX", "Underworld")
	if tr == nil || tr.ProjectTrackID != "M001" || tr.SoundDescription != "driving" {
		t.Errorf("unexpected male track: %+v", tr)
	}
	tr, _ = st.GetTrack(ctx, "Open Up", "Leftfield")
	if tr == nil || tr.ProjectTrackID != "M002" {
		t.Errorf("expected tracklist duplicate not to replace male row, got %+v", tr)
	}
}

func TestTracks_ConflictSkipsRecord(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	addConstraint(t, st, "CREATE UNIQUE INDEX idx_tracks_project_id_unique ON Tracks(project_track_id)")

	in := &TrackInput{
		Male: []source.MaleTrack{
			{ProjectTrackID: "M001", Artist: "Alpha", Title: "One"},
			{ProjectTrackID: "M001", Artist: "Beta", Title: "Two"},
			{ProjectTrackID: "M003", Artist: "Gamma", Title: "Three"},
		},
		Female: []source.FemaleTrack{{Title: "Four", Artist: "Delta"}},
	}

	counts, err := Tracks(ctx, st, in, nil)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if counts.TracksAdded != 3 || counts.TracksSkipped != 1 {
		t.Errorf("expected 3 added and 1 skipped, got %+v", counts)
	}
	if counts.Errors != 0 {
		t.Errorf("expected a uniqueness conflict not to count as an error, got %d", counts.Errors)
	}
	if counts.FemaleAssigned != 1 || counts.NextFemaleID != "F002" {
		t.Errorf("expected F001 assigned and F002 next, got %+v", counts)
	}
	if s := stats(t, st); s.Artists != 4 || s.Tracks != 3 {
		t.Errorf("expected 4 artists and 3 tracks committed, got %+v", s)
	}

	if tr, _ := st.GetTrack(ctx, "Two", "Beta"); tr != nil {
		t.Errorf("expected conflicting track to be skipped, got %+v", tr)
	}
	for _, c := range []struct{ title, artist string }{{"Three", "Gamma"}, {"Four", "Delta"}} {
		if tr, _ := st.GetTrack(ctx, c.title, c.artist); tr == nil {
			t.Errorf("expected %s by %s after the conflict", c.title, c.artist)
		}
	}
}

func TestIDSequence(t *testing.T) {
	seq := NewIDSequence("F", 3)

	if seq.Peek() != "F004" {
		t.Errorf("expected F004, got %s", seq.Peek())
	}
	if seq.Peek() != "F004" {
		t.Error("expected Peek not to consume an id")
	}
	seq.Advance()
	if seq.Peek() != "F005" {
		t.Errorf("expected F005, got %s", seq.Peek())
	}

	if got := NewIDSequence("F", 999).Peek(); got != "F1000" {
		t.Errorf("expected F1000, got %s", got)
	}
}
