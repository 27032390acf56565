package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/tracklist"
	"github.com/franz/narrative-db/internal/util"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url...]",
	Short: "Scrape radio-show tracklist pages into a CSV",
	Long: `Fetch every configured tracklist page, extract its tracks and write them to
the tracklist CSV (show_url, is_mashup, mashup_name, artist, track_title).

All pages are requested at once; parsing then runs page by page in the order
given. A page that cannot be fetched or has no tracklist is reported and
skipped. URLs given as arguments replace tracklist.urls from the config.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringP("output", "o", "", "tracklist CSV to write (default tracklist.output)")
	fetchCmd.Flags().Bool("no-retry", false, "request each page once, ignoring tracklist.attempts")
}

func runFetch(cmd *cobra.Command, args []string) error {
	started := time.Now()
	ctx := cmd.Context()

	urls := cfg.Tracklist.URLs
	if len(args) > 0 {
		urls = args
	}
	if len(urls) == 0 {
		return fmt.Errorf("no tracklist URLs (pass them as arguments or set tracklist.urls)")
	}

	logger := openEventLogger("fetch")
	defer logger.Close()

	retry := fetchRetryConfig(cmd, cfg.Tracklist.Attempts)
	fetcher := tracklist.NewHTTPFetcher(cfg.Tracklist.Timeout, cfg.Tracklist.UserAgent, retry)

	util.InfoLog("Fetching %d tracklist pages...", len(urls))
	result := tracklist.Harvest(ctx, fetcher, urls, logger)

	output := flagOr(cmd, "output", cfg.Tracklist.Output)
	if err := tracklist.WriteCSVFile(output, result.Candidates); err != nil {
		return err
	}
	util.SuccessLog("Wrote %d tracks to %s", len(result.Candidates), output)

	mashups := 0
	for _, c := range result.Candidates {
		if c.IsMashup {
			mashups++
		}
	}

	summary := report.NewStageSummary("fetch", logger.RunID())
	summary.OutputPath = output
	summary.Add("Pages requested", len(urls))
	summary.Add("Pages fetched", result.PagesFetched)
	summary.Add("Pages failed", result.PagesFailed)
	summary.Add("Pages without tracklist", result.PagesNoStructure)
	summary.Add("Pages with no tracks", result.PagesEmpty)
	summary.Add("Tracks extracted", len(result.Candidates))
	summary.Add("Mashup tracks", mashups)
	summary.Note("Downloaded %s", humanize.Bytes(uint64(result.BytesFetched)))
	finishStage(summary, started, logger)

	return nil
}

// fetchRetryConfig applies tracklist.attempts, or --no-retry, to the
// default backoff
func fetchRetryConfig(cmd *cobra.Command, attempts int) *util.RetryConfig {
	if noRetry, _ := cmd.Flags().GetBool("no-retry"); noRetry {
		return util.NoRetry()
	}
	retry := util.DefaultRetryConfig()
	if attempts > 0 {
		retry.MaxAttempts = attempts
	}
	return retry
}
