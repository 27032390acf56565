package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/franz/narrative-db/internal/util"
)

// AlbumRecord is one (artist, album) row from a curated list
type AlbumRecord struct {
	Artist string
	Album  string
}

// Result is what a loader read from one source
type Result[T any] struct {
	Source  string
	Records []T
	Dropped int // rows skipped as malformed
}

// MergedAlbumSource describes the merged album list written by the merge stage
func MergedAlbumSource(path string) util.AlbumSource {
	return util.AlbumSource{
		Name:         "merged",
		Path:         path,
		ArtistColumn: "artist_name",
		AlbumColumn:  "album_title",
	}
}

// LoadAlbumCSV reads the configured artist and album columns of src.
//
// A missing file or column yields an empty result and an error wrapping
// util.ErrSourceMissing or util.ErrMissingColumns; callers warn and carry on
// with their other sources. Rows whose artist or album is blank after
// trimming are dropped and counted.
func LoadAlbumCSV(src util.AlbumSource) (*Result[AlbumRecord], error) {
	result := &Result[AlbumRecord]{Source: src.Name}

	t, err := openTable(src.Path, src.ArtistColumn, src.AlbumColumn)
	if err != nil {
		util.WarnLog("Skipping %s: %v", src.Name, err)
		return result, err
	}
	defer t.Close()

	for {
		record, ok, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", src.Path, err)
		}
		if !ok {
			result.Dropped++
			continue
		}

		artist := t.field(record, src.ArtistColumn)
		album := t.field(record, src.AlbumColumn)
		if artist == "" || album == "" {
			util.DebugLog("%s: dropping row with blank artist or album: %q", src.Name, record)
			result.Dropped++
			continue
		}

		result.Records = append(result.Records, AlbumRecord{Artist: artist, Album: album})
	}

	util.DebugLog("Loaded %d albums from %s (%d dropped)", len(result.Records), src.Name, result.Dropped)
	return result, nil
}
