package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/franz/narrative-db/internal/merge"
	"github.com/franz/narrative-db/internal/store"
	"github.com/franz/narrative-db/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure ndb can operate correctly.

This command checks:
- SQLite availability
- Database accessibility, integrity and location
- Presence of every configured input file
- The override table
- Write access to the artifacts directory

Use this command to troubleshoot issues before running a stage.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== NDB Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{}

	results = append(results, checkSQLite())
	results = append(results, checkDatabase(cmd.Context(), cfg.DB))
	if msg := util.StoreLocationWarning(cfg.DB); msg != "" {
		results = append(results, checkResult{name: "Database location", warning: true, message: msg})
	}

	for _, src := range cfg.Albums.Sources {
		results = append(results, checkInputFile("Album list ("+src.Name+")", src.Path, false))
	}
	results = append(results, checkInputFile("Merged album list", cfg.Albums.Output, true))
	results = append(results, checkInputFile("Male narrative CSV", cfg.Narrative.MaleCSV, false))
	results = append(results, checkInputFile("Female narrative JSON", cfg.Narrative.FemaleJSON, false))
	if cfg.Narrative.TracklistCSV != "" {
		results = append(results, checkInputFile("Tracklist CSV", cfg.Narrative.TracklistCSV, false))
	}
	results = append(results, checkOverrides(cfg.Albums.Overrides))
	results = append(results, checkOutputDirectory(cfg.Artifacts))

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Please resolve errors before running ndb.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Missing inputs are skipped by the stages that read them.")
	} else {
		util.SuccessLog("All checks passed! System is ready.")
	}

	return nil
}

// checkSQLite verifies the embedded SQLite engine works
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(ctx context.Context, dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			error:   true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first populate)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.OpenWithOptions(dbPath, &store.OpenOptions{MustExist: true})
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot count rows: %v", err),
		}
	}

	return checkResult{
		name: "Database",
		message: fmt.Sprintf("%s (%s, %d artists, %d albums, %d tracks)",
			dbPath, humanize.Bytes(uint64(info.Size())), stats.Artists, stats.Albums, stats.Tracks),
	}
}

// checkInputFile verifies an input file is readable. Missing inputs are
// warnings: the stage reading them skips them.
func checkInputFile(name, path string, producedByStage bool) checkResult {
	if path == "" {
		return checkResult{name: name, warning: true, message: "no path configured"}
	}

	info, err := os.Stat(path)
	if err != nil {
		msg := fmt.Sprintf("%s not found", path)
		if producedByStage {
			msg += " (created by `ndb merge`)"
		}
		if !os.IsNotExist(err) {
			msg = fmt.Sprintf("cannot access %s: %v", path, err)
		}
		return checkResult{name: name, warning: true, message: msg}
	}

	if info.IsDir() {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("%s is a directory", path),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}
	f.Close()

	return checkResult{
		name:    name,
		message: fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size()))),
	}
}

// checkOverrides verifies the override table parses
func checkOverrides(path string) checkResult {
	o, err := merge.LoadOverrides(path)
	if err != nil {
		return checkResult{name: "Overrides", error: true, message: err.Error()}
	}

	rejected := 0
	for _, ov := range o {
		if !merge.IsAlbum(ov.Album) {
			rejected++
		}
	}

	where := "built-in"
	if path != "" {
		where = path
	}
	if rejected > 0 {
		return checkResult{
			name:    "Overrides",
			warning: true,
			message: fmt.Sprintf("%s: %d entries, %d rejected by the album filter", where, len(o), rejected),
		}
	}
	return checkResult{name: "Overrides", message: fmt.Sprintf("%s: %d entries", where, len(o))}
}

// checkOutputDirectory verifies the artifacts directory is writable
func checkOutputDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return checkResult{
					name:    "Artifacts directory",
					error:   true,
					message: fmt.Sprintf("cannot create %s: %v", path, err),
				}
			}
			return checkResult{
				name:    "Artifacts directory",
				message: fmt.Sprintf("%s (created)", path),
			}
		}
		return checkResult{
			name:    "Artifacts directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Artifacts directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	testFile := filepath.Join(path, ".ndb_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Artifacts directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Artifacts directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}
