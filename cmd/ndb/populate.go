package main

import (
	"errors"
	"time"

	"github.com/franz/narrative-db/internal/populate"
	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/source"
	"github.com/franz/narrative-db/internal/store"
	"github.com/franz/narrative-db/internal/tracklist"
	"github.com/franz/narrative-db/internal/util"
	"github.com/spf13/cobra"
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Load records into the narrative database",
	Long: `Load records into the narrative database.

Each run is a single transaction that is committed once at the end; rows that
already exist are skipped, so a run can be repeated without creating
duplicates. Only failing to open the database aborts a run.`,
}

var populateAlbumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "Load the merged album list into Artists and Albums",
	RunE:  runPopulateAlbums,
}

var populateTracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Load the narrative selections into Artists and Tracks",
	Long: `Load the male narrative CSV, then the female narrative JSON, into Artists
and Tracks. Female tracks get project ids F001, F002, ... continuing from the
highest F id already stored.

With --tracklist (or narrative.tracklist_csv) the scraped tracklist CSV is
loaded as well, as tracks without a project id.`,
	RunE: runPopulateTracks,
}

func init() {
	rootCmd.AddCommand(populateCmd)
	populateCmd.AddCommand(populateAlbumsCmd)
	populateCmd.AddCommand(populateTracksCmd)

	populateAlbumsCmd.Flags().StringP("input", "i", "", "merged album CSV (default albums.output)")

	populateTracksCmd.Flags().String("male", "", "male narrative CSV (default narrative.male_csv)")
	populateTracksCmd.Flags().String("female", "", "female narrative JSON (default narrative.female_json)")
	populateTracksCmd.Flags().String("tracklist", "", "also load this tracklist CSV")
}

func openStore() (*store.Store, error) {
	util.InfoLog("Opening database: %s", cfg.DB)
	if msg := util.StoreLocationWarning(cfg.DB); msg != "" {
		util.WarnLog("%s", msg)
	}
	return store.Open(cfg.DB)
}

func runPopulateAlbums(cmd *cobra.Command, args []string) error {
	started := time.Now()
	ctx := cmd.Context()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger("populate-albums")
	defer logger.Close()

	summary := report.NewStageSummary("populate-albums", logger.RunID())
	summary.DatabasePath = cfg.DB

	input := source.MergedAlbumSource(flagOr(cmd, "input", cfg.Albums.Output))
	loaded, err := source.LoadAlbumCSV(input)
	logger.LogLoad(input.Path, len(loaded.Records), loaded.Dropped, err)
	if errors.Is(err, util.ErrSourceMissing) {
		summary.Note("Run `ndb merge` first to create %s", input.Path)
	} else if err != nil && !errors.Is(err, util.ErrMissingColumns) {
		util.WarnLog("Error reading %s: %v", input.Path, err)
	}

	util.InfoLog("Populating database from %s...", input.Path)
	counts, err := populate.Albums(ctx, db, loaded.Records, logger)
	if err != nil {
		return err
	}

	summary.Add("Rows read", len(loaded.Records))
	summary.Add("Artists added", counts.ArtistsAdded)
	summary.Add("Artists skipped (already existed)", counts.ArtistsSkipped)
	summary.Add("Albums added", counts.AlbumsAdded)
	summary.Add("Albums skipped", counts.AlbumsSkipped)
	summary.Add("Rows skipped", counts.RowsSkipped+loaded.Dropped)
	summary.Add("Errors", counts.Errors)
	finishStage(summary, started, logger)

	return nil
}

func runPopulateTracks(cmd *cobra.Command, args []string) error {
	started := time.Now()
	ctx := cmd.Context()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger("populate-tracks")
	defer logger.Close()

	summary := report.NewStageSummary("populate-tracks", logger.RunID())
	summary.DatabasePath = cfg.DB

	malePath := flagOr(cmd, "male", cfg.Narrative.MaleCSV)
	femalePath := flagOr(cmd, "female", cfg.Narrative.FemaleJSON)
	tracklistPath := flagOr(cmd, "tracklist", cfg.Narrative.TracklistCSV)

	in := &populate.TrackInput{}
	dropped := 0

	util.InfoLog("Processing male narrative selections from %s...", malePath)
	male, err := source.LoadMaleNarrative(malePath)
	logger.LogLoad(malePath, len(male.Records), male.Dropped, err)
	if err != nil && !errors.Is(err, util.ErrSourceMissing) && !errors.Is(err, util.ErrMissingColumns) {
		util.WarnLog("Error reading %s: %v", malePath, err)
	}
	in.Male = male.Records
	dropped += male.Dropped

	util.InfoLog("Processing female narrative selections from %s...", femalePath)
	female, err := source.LoadFemaleNarrative(femalePath)
	logger.LogLoad(femalePath, len(female.Records), female.Dropped, err)
	if err != nil && !errors.Is(err, util.ErrSourceMissing) {
		util.WarnLog("Skipping female narrative selection: %v", err)
	}
	in.Female = female.Records
	dropped += female.Dropped

	if tracklistPath != "" {
		util.InfoLog("Processing tracklist from %s...", tracklistPath)
		candidates, err := tracklist.ReadCSVFile(tracklistPath)
		logger.LogLoad(tracklistPath, len(candidates), 0, err)
		if err != nil {
			util.WarnLog("Skipping tracklist: %v", err)
		}
		in.Tracklist = candidates
	}

	counts, err := populate.Tracks(ctx, db, in, logger)
	if err != nil {
		return err
	}

	summary.Add("Male rows read", len(in.Male))
	summary.Add("Female entries read", len(in.Female))
	if tracklistPath != "" {
		summary.Add("Tracklist rows read", len(in.Tracklist))
	}
	summary.Add("Artists added", counts.ArtistsAdded)
	summary.Add("Artists skipped (already existed)", counts.ArtistsSkipped)
	summary.Add("Tracks added", counts.TracksAdded)
	summary.Add("Tracks skipped (already existed or error)", counts.TracksSkipped)
	summary.Add("Rows skipped", counts.RowsSkipped+dropped)
	summary.Add("Errors", counts.Errors)
	summary.Note("Female project ids assigned: %d (next %s)", counts.FemaleAssigned, counts.NextFemaleID)
	finishStage(summary, started, logger)

	return nil
}
