package populate

import (
	"context"

	"github.com/schollz/progressbar/v3"

	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/source"
	"github.com/franz/narrative-db/internal/store"
	"github.com/franz/narrative-db/internal/tracklist"
	"github.com/franz/narrative-db/internal/util"
)

// TrackInput holds every track source of one run. Sources are processed in
// field order.
type TrackInput struct {
	Male      []source.MaleTrack
	Female    []source.FemaleTrack
	Tracklist []tracklist.Candidate
}

func (in *TrackInput) total() int {
	return len(in.Male) + len(in.Female) + len(in.Tracklist)
}

// TrackCounts reports what a track run did
type TrackCounts struct {
	ArtistsAdded   int
	ArtistsSkipped int
	TracksAdded    int
	TracksSkipped  int
	RowsSkipped    int
	Errors         int

	FemaleAssigned int
	// NextFemaleID is the id the next female track would receive
	NextFemaleID string
}

type trackRow struct {
	kind  string
	track store.Track
	// artist is kept by name until the row is resolved
	artist string
}

type trackRun struct {
	ctx    context.Context
	tx     *store.Tx
	counts *TrackCounts
	logger *report.EventLogger
	bar    *progressbar.ProgressBar
}

// Tracks inserts male narrative rows with their own project ids, female
// narrative rows with freshly assigned F### ids, then scraped tracklist
// rows without a project id. A track whose (title, artist) pair is already
// stored is skipped.
//
// The F### sequence is scanned from the store inside the run's transaction,
// after the male rows, and advances only when a female track is actually
// inserted.
func Tracks(ctx context.Context, st *store.Store, in *TrackInput, logger *report.EventLogger) (*TrackCounts, error) {
	counts := &TrackCounts{}

	bar := util.NewProgressBar(in.total(), "Populating tracks", "tracks")
	defer util.FinishBar(bar)

	err := st.Transaction(ctx, func(tx *store.Tx) error {
		run := &trackRun{ctx: ctx, tx: tx, counts: counts, logger: logger, bar: bar}

		for _, m := range in.Male {
			if err := ctx.Err(); err != nil {
				return err
			}
			run.insert(trackRow{
				kind:   "male",
				artist: m.Artist,
				track:  store.Track{Title: m.Title, ProjectTrackID: m.ProjectTrackID, SoundDescription: m.Sound},
			})
		}

		seq, err := ScanIDSequence(ctx, tx, FemaleIDPrefix)
		if err != nil {
			return err
		}
		util.DebugLog("Next female project id: %s", seq.Peek())

		for _, f := range in.Female {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := trackRow{
				kind:   "female",
				artist: f.Artist,
				track:  store.Track{Title: f.Title, ProjectTrackID: seq.Peek()},
			}
			if run.insert(row) {
				seq.Advance()
				counts.FemaleAssigned++
			}
		}
		counts.NextFemaleID = seq.Peek()

		for _, c := range in.Tracklist {
			if err := ctx.Err(); err != nil {
				return err
			}
			run.insert(trackRow{
				kind:   "tracklist",
				artist: source.Normalize(c.Artist),
				track:  store.Track{Title: source.Normalize(c.Title)},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return counts, nil
}

// insert resolves the artist and adds the track if absent. It returns true
// only when a row was written.
func (r *trackRun) insert(row trackRow) bool {
	util.Tick(r.bar)

	title := row.track.Title
	if row.artist == "" || title == "" {
		util.WarnLog("Skipping %s track due to missing artist or track title: %q by %q", row.kind, title, row.artist)
		r.logger.LogSkip("track", row.artist, title, ReasonMissingField)
		r.counts.RowsSkipped++
		return false
	}

	artistID, created, err := r.tx.GetOrCreateArtist(r.ctx, row.artist)
	if err != nil {
		r.fail(row, err)
		return false
	}
	if created {
		r.counts.ArtistsAdded++
	} else {
		r.counts.ArtistsSkipped++
	}

	exists, err := r.tx.TrackExists(r.ctx, title, artistID)
	if err != nil {
		r.fail(row, err)
		return false
	}
	if exists {
		r.counts.TracksSkipped++
		r.logger.LogSkip("track", row.artist, title, ReasonExists)
		return false
	}

	tr := row.track
	tr.ArtistID = artistID
	if err := r.tx.InsertTrack(r.ctx, &tr); err != nil {
		r.fail(row, err)
		return false
	}

	r.counts.TracksAdded++
	r.logger.LogInsert("track", row.artist, title)
	return true
}

func (r *trackRun) fail(row trackRow, err error) {
	r.counts.TracksSkipped++
	if !logFailure(r.logger, "track", row.artist, row.track.Title, err) {
		r.counts.Errors++
	}
}
