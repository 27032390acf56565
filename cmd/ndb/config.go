package main

import (
	"os"
	"strings"
	"time"

	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NDB_TRACKLIST_OUTPUT sets tracklist.output, and so on
var envKeyReplacer = strings.NewReplacer(".", "_")

// cfg is loaded once per invocation, before any command runs
var cfg *util.Config

func setup(cmd *cobra.Command, args []string) error {
	util.SetColors(util.IsTerminal(os.Stderr.Fd()))
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	loaded, err := util.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// eventLevel maps the console verbosity onto the event log level
func eventLevel() report.EventLevel {
	switch {
	case viper.GetBool("quiet"):
		return report.LevelWarning
	case viper.GetBool("verbose"):
		return report.LevelDebug
	default:
		return report.LevelInfo
	}
}

// openEventLogger starts the JSONL event log for stage. A log that cannot be
// created is reported and replaced by a no-op logger.
func openEventLogger(stage string) *report.EventLogger {
	logger, err := report.NewEventLogger(cfg.Artifacts, stage, eventLevel())
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	return logger
}

// finishStage prints the summary and writes it as Markdown next to the
// other reports of this run
func finishStage(summary *report.StageSummary, started time.Time, logger *report.EventLogger) {
	summary.Duration = time.Since(started)
	summary.EventLogPath = logger.Path()
	summary.Print()
	if n := summary.Get("Errors"); n > 0 && summary.EventLogPath != "" {
		util.WarnLog("%d records failed; details in %s", n, summary.EventLogPath)
	}

	path := summary.ReportPath(cfg.Artifacts)
	if err := report.WriteMarkdownReport(summary, path); err != nil {
		util.WarnLog("Failed to write summary report: %v", err)
		return
	}
	util.DebugLog("Summary report: %s", path)
}

// flagOr returns the value of a command-local string flag when it was set,
// otherwise fallback from the loaded config
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
		return v
	}
	return fallback
}
