package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/franz/narrative-db/internal/populate"
	"github.com/franz/narrative-db/internal/store"
	"github.com/franz/narrative-db/internal/util"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts of the narrative database",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("artist", "", "also show how many albums are stored for this artist")
	statsCmd.Flags().String("track", "", "with --artist, show this track's project id and sound description")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := store.OpenWithOptions(cfg.DB, &store.OpenOptions{MustExist: true})
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.Stats(ctx)
	if err != nil {
		return err
	}
	highest, err := db.MaxProjectTrackNumber(ctx, populate.FemaleIDPrefix)
	if err != nil {
		return err
	}

	size := "unknown size"
	if info, err := os.Stat(cfg.DB); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}

	util.InfoLog("=== Narrative DB ===")
	util.InfoLog("Database: %s (%s)", cfg.DB, size)
	util.InfoLog("Artists:  %s", humanize.Comma(int64(counts.Artists)))
	util.InfoLog("Albums:   %s", humanize.Comma(int64(counts.Albums)))
	util.InfoLog("Tracks:   %s", humanize.Comma(int64(counts.Tracks)))
	if highest > 0 {
		util.InfoLog("Highest female id: %s (next %s)",
			fmt.Sprintf("%s%03d", populate.FemaleIDPrefix, highest),
			populate.NewIDSequence(populate.FemaleIDPrefix, highest).Peek())
	} else {
		util.InfoLog("No female project ids assigned yet")
	}

	if artist, _ := cmd.Flags().GetString("artist"); artist != "" {
		a, err := db.FindArtist(ctx, artist)
		if err != nil {
			return err
		}
		if a == nil {
			util.WarnLog("Artist %q is not in the database", artist)
			return nil
		}
		n, err := db.CountAlbumsByArtist(ctx, a.Name)
		if err != nil {
			return err
		}
		util.InfoLog("%s: %d albums", a.Name, n)

		if title, _ := cmd.Flags().GetString("track"); title != "" {
			tr, err := db.GetTrack(ctx, title, a.Name)
			if err != nil {
				return err
			}
			if tr == nil {
				util.WarnLog("Track %q by %s is not in the database", title, a.Name)
				return nil
			}
			id := tr.ProjectTrackID
			if id == "" {
				id = "none"
			}
			util.InfoLog("%s - %s: project id %s", a.Name, tr.Title, id)
			if tr.SoundDescription != "" {
				util.InfoLog("  %s", tr.SoundDescription)
			}
		}
	}

	return nil
}
