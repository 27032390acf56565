package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/franz/narrative-db/internal/util"
)

// Count is one labelled figure in a stage summary
type Count struct {
	Label string
	Value int
}

// ReasonCount is a skip reason with how often it occurred
type ReasonCount struct {
	Reason string
	Count  int
}

// StageSummary collects the counts reported at the end of a stage run.
// Counts keep insertion order so the console and Markdown output match.
type StageSummary struct {
	Stage       string
	RunID       string
	GeneratedAt time.Time
	Duration    time.Duration

	Counts  []Count
	Reasons map[string]int
	Notes   []string

	DatabasePath string
	EventLogPath string
	OutputPath   string
}

// NewStageSummary starts a summary for stage
func NewStageSummary(stage, runID string) *StageSummary {
	return &StageSummary{
		Stage:       stage,
		RunID:       runID,
		GeneratedAt: time.Now(),
		Reasons:     make(map[string]int),
	}
}

// Add appends a labelled count. Adding the same label twice accumulates.
func (s *StageSummary) Add(label string, value int) {
	for i := range s.Counts {
		if s.Counts[i].Label == label {
			s.Counts[i].Value += value
			return
		}
	}
	s.Counts = append(s.Counts, Count{Label: label, Value: value})
}

// Get returns the value recorded for label, or 0
func (s *StageSummary) Get(label string) int {
	for _, c := range s.Counts {
		if c.Label == label {
			return c.Value
		}
	}
	return 0
}

// AddReason records n occurrences of a skip reason
func (s *StageSummary) AddReason(reason string, n int) {
	if n <= 0 {
		return
	}
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Reasons[reason] += n
}

// Note adds a free-form line to the summary
func (s *StageSummary) Note(format string, args ...interface{}) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
}

// TopReasons returns skip reasons ordered by count, most frequent first
func (s *StageSummary) TopReasons(limit int) []ReasonCount {
	reasons := make([]ReasonCount, 0, len(s.Reasons))
	for reason, count := range s.Reasons {
		reasons = append(reasons, ReasonCount{Reason: reason, Count: count})
	}

	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Count != reasons[j].Count {
			return reasons[i].Count > reasons[j].Count
		}
		return reasons[i].Reason < reasons[j].Reason
	})

	if limit > 0 && len(reasons) > limit {
		reasons = reasons[:limit]
	}
	return reasons
}

// Print writes the summary to the console log
func (s *StageSummary) Print() {
	util.InfoLog("")
	util.SuccessLog("=== %s Summary ===", cases.Title(language.English).String(s.Stage))
	for _, c := range s.Counts {
		util.InfoLog("%-22s %s", c.Label+":", humanize.Comma(int64(c.Value)))
	}
	for _, r := range s.TopReasons(5) {
		util.InfoLog("  skipped (%s): %s", r.Reason, humanize.Comma(int64(r.Count)))
	}
	for _, n := range s.Notes {
		util.InfoLog("%s", n)
	}
	if s.Duration > 0 {
		util.InfoLog("%-22s %s", "Duration:", s.Duration.Round(time.Millisecond))
	}
	if s.EventLogPath != "" {
		util.InfoLog("Event log: %s", s.EventLogPath)
	}
}

// ReportPath returns artifacts/reports/<timestamp>/<stage>.md
func (s *StageSummary) ReportPath(artifactsDir string) string {
	ts := s.GeneratedAt.Format("2006-01-02-150405")
	return filepath.Join(artifactsDir, "reports", ts, s.Stage+".md")
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(s *StageSummary, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString(fmt.Sprintf("# Narrative DB - %s Summary\n\n", s.Stage))
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05")))

	if s.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", s.RunID))
	}
	if s.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", s.DatabasePath))
	}
	if s.OutputPath != "" {
		md.WriteString(fmt.Sprintf("**Output:** `%s`\n\n", s.OutputPath))
	}
	if s.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", s.EventLogPath))
	}

	md.WriteString("---\n\n")

	md.WriteString("## Counts\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	for _, c := range s.Counts {
		md.WriteString(fmt.Sprintf("| %s | %s |\n", c.Label, humanize.Comma(int64(c.Value))))
	}
	if s.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", s.Duration.Round(time.Millisecond)))
	}
	md.WriteString("\n")

	if reasons := s.TopReasons(10); len(reasons) > 0 {
		md.WriteString("## Skip Reasons\n\n")
		md.WriteString("| Count | Reason |\n")
		md.WriteString("|-------|--------|\n")
		for _, r := range reasons {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", r.Count, r.Reason))
		}
		md.WriteString("\n")
	}

	if len(s.Notes) > 0 {
		md.WriteString("## Notes\n\n")
		for _, n := range s.Notes {
			md.WriteString(fmt.Sprintf("- %s\n", n))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by ndb*\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
