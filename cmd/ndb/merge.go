package main

import (
	"errors"
	"time"

	"github.com/franz/narrative-db/internal/merge"
	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/source"
	"github.com/franz/narrative-db/internal/util"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge and clean the curated album lists",
	Long: `Merge the configured album lists into one CSV (artist_name, album_title).

Titles that look like singles, EPs, placeholders or non-album material are
dropped, duplicates are removed case-insensitively (first occurrence wins),
and artists left without an album get their entry from the override table.
Missing input files are reported and skipped.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringP("output", "o", "", "merged CSV to write (default albums.output)")
	mergeCmd.Flags().String("overrides", "", "YAML override table replacing the built-in one")
}

func runMerge(cmd *cobra.Command, args []string) error {
	started := time.Now()

	logger := openEventLogger("merge")
	defer logger.Close()

	overrides, err := merge.LoadOverrides(flagOr(cmd, "overrides", cfg.Albums.Overrides))
	if err != nil {
		return err
	}

	summary := report.NewStageSummary("merge", logger.RunID())

	var lists [][]source.AlbumRecord
	for _, src := range cfg.Albums.Sources {
		result, err := source.LoadAlbumCSV(src)
		logger.LogLoad(src.Path, len(result.Records), result.Dropped, err)
		if err != nil && !errors.Is(err, util.ErrSourceMissing) && !errors.Is(err, util.ErrMissingColumns) {
			util.WarnLog("Error reading %s: %v. Proceeding without the rest of it.", src.Path, err)
		}
		if err != nil {
			summary.Note("%s: %v", src.Name, err)
		}
		summary.Add("Rows read ("+src.Name+")", len(result.Records))
		summary.Add("Rows dropped", result.Dropped)
		lists = append(lists, result.Records)
	}

	result := merge.Merge(lists, overrides, logger)
	for reason, n := range result.Rejections {
		summary.AddReason(reason, n)
	}

	if len(result.Albums) == 0 {
		util.WarnLog("No valid album data loaded from input files or overrides. Output CSV will contain headers only.")
	}

	output := flagOr(cmd, "output", cfg.Albums.Output)
	if err := merge.WriteCSVFile(output, result.Albums); err != nil {
		return err
	}
	util.SuccessLog("Merged album list saved to %s", output)

	summary.OutputPath = output
	summary.Add("Albums considered", result.Considered)
	summary.Add("Albums filtered", result.Filtered)
	summary.Add("Duplicates removed", result.Duplicates)
	summary.Add("Overrides applied", result.OverridesApplied)
	summary.Add("Overrides skipped", result.OverridesSkipped)
	summary.Add("Unique albums written", len(result.Albums))
	finishStage(summary, started, logger)

	return nil
}
