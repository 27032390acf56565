package store

// schema creates the narrative database tables when they are missing.
// Existing tables are left untouched.
const schema = `
CREATE TABLE IF NOT EXISTS Artists (
  artist_id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS Albums (
  album_id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  artist_id INTEGER NOT NULL REFERENCES Artists(artist_id),
  UNIQUE (title, artist_id)
);

CREATE INDEX IF NOT EXISTS idx_albums_artist_id ON Albums(artist_id);

CREATE TABLE IF NOT EXISTS Tracks (
  track_id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  artist_id INTEGER NOT NULL REFERENCES Artists(artist_id),
  project_track_id TEXT,
  narrative_sound_description TEXT,
  UNIQUE (title, artist_id)
);

CREATE INDEX IF NOT EXISTS idx_tracks_artist_id ON Tracks(artist_id);
CREATE INDEX IF NOT EXISTS idx_tracks_project_track_id ON Tracks(project_track_id);
`
