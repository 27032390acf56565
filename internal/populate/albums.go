// Package populate loads normalized records into the narrative store.
//
// Every run is one transaction: per-record problems are skipped and counted,
// and the run is committed exactly once at the end. Running the same input
// twice adds nothing the second time.
package populate

import (
	"context"
	"errors"

	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/source"
	"github.com/franz/narrative-db/internal/store"
	"github.com/franz/narrative-db/internal/util"
)

// Skip reasons recorded in the event log
const (
	ReasonMissingField = "missing artist or title"
	ReasonExists       = "already exists"
	ReasonConflict     = "uniqueness conflict"
)

// AlbumCounts reports what an album run did
type AlbumCounts struct {
	ArtistsAdded   int
	ArtistsSkipped int
	AlbumsAdded    int
	AlbumsSkipped  int
	RowsSkipped    int
	Errors         int
}

// Albums inserts each (artist, album) pair that is not already stored.
// The returned error is non-nil only when the run as a whole failed and
// nothing was committed.
func Albums(ctx context.Context, st *store.Store, rows []source.AlbumRecord, logger *report.EventLogger) (*AlbumCounts, error) {
	counts := &AlbumCounts{}

	bar := util.NewProgressBar(len(rows), "Populating albums", "rows")
	defer util.FinishBar(bar)

	err := st.Transaction(ctx, func(tx *store.Tx) error {
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			util.Tick(bar)

			if row.Artist == "" || row.Album == "" {
				util.WarnLog("Skipping row %d: missing artist or album name", i+1)
				logger.LogSkip("album", row.Artist, row.Album, ReasonMissingField)
				counts.RowsSkipped++
				continue
			}

			artistID, created, err := tx.GetOrCreateArtist(ctx, row.Artist)
			if err != nil {
				counts.fail(logger, "artist", row.Artist, row.Album, err)
				continue
			}
			if created {
				counts.ArtistsAdded++
			} else {
				counts.ArtistsSkipped++
			}

			exists, err := tx.AlbumExists(ctx, row.Album, artistID)
			if err != nil {
				counts.fail(logger, "album", row.Artist, row.Album, err)
				continue
			}
			if exists {
				counts.AlbumsSkipped++
				logger.LogSkip("album", row.Artist, row.Album, ReasonExists)
				continue
			}

			if _, err := tx.InsertAlbum(ctx, row.Album, artistID); err != nil {
				counts.fail(logger, "album", row.Artist, row.Album, err)
				continue
			}
			counts.AlbumsAdded++
			logger.LogInsert("album", row.Artist, row.Album)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return counts, nil
}

func (c *AlbumCounts) fail(logger *report.EventLogger, entity, artist, title string, err error) {
	c.AlbumsSkipped++
	if !logFailure(logger, entity, artist, title, err) {
		c.Errors++
	}
}

// logFailure reports a per-record error and returns true when it was a
// uniqueness conflict, which counts as a plain skip
func logFailure(logger *report.EventLogger, entity, artist, title string, err error) bool {
	if errors.Is(err, util.ErrUniquenessConflict) {
		util.WarnLog("Skipping %s %q by %s: %v", entity, title, artist, err)
		logger.LogSkip(entity, artist, title, ReasonConflict)
		return true
	}
	util.ErrorLog("Failed to add %s %q by %s: %v", entity, title, artist, err)
	logger.LogError(entity, artist, title, err)
	return false
}
