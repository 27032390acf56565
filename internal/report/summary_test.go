package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStageSummary_Add(t *testing.T) {
	s := NewStageSummary("populate-albums", "run-1")

	s.Add("Artists added", 2)
	s.Add("Albums added", 5)
	s.Add("Artists added", 1)

	if len(s.Counts) != 2 {
		t.Fatalf("expected 2 counts, got %d", len(s.Counts))
	}
	if s.Counts[0].Label != "Artists added" {
		t.Errorf("expected insertion order to be kept, got %s first", s.Counts[0].Label)
	}
	if got := s.Get("Artists added"); got != 3 {
		t.Errorf("expected 3 artists added, got %d", got)
	}
	if got := s.Get("Nothing"); got != 0 {
		t.Errorf("expected 0 for unknown label, got %d", got)
	}
}

func TestStageSummary_TopReasons(t *testing.T) {
	s := NewStageSummary("merge", "")
	s.AddReason("duplicate", 3)
	s.AddReason("single/EP qualifier", 1)
	s.AddReason("blank album", 1)
	s.AddReason("ignored", 0)

	reasons := s.TopReasons(2)
	if len(reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %d", len(reasons))
	}
	if reasons[0].Reason != "duplicate" || reasons[0].Count != 3 {
		t.Errorf("expected duplicate x3 first, got %+v", reasons[0])
	}
	// ties break alphabetically
	if reasons[1].Reason != "blank album" {
		t.Errorf("expected blank album second, got %s", reasons[1].Reason)
	}
}

func TestStageSummary_ReportPath(t *testing.T) {
	s := NewStageSummary("fetch", "")
	s.GeneratedAt = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	got := s.ReportPath("artifacts")
	expected := filepath.Join("artifacts", "reports", "2024-03-09-140506", "fetch.md")
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "reports", "populate-tracks.md")

	s := NewStageSummary("populate-tracks", "abc-123")
	s.Duration = 1500 * time.Millisecond
	s.DatabasePath = "/test/narrative.sqlite"
	s.EventLogPath = "/test/events.jsonl"
	s.Add("Tracks added", 12345)
	s.Add("Tracks skipped", 7)
	s.AddReason("already exists", 1)
	s.Note("Next female id: F%03d", 42)

	if err := WriteMarkdownReport(s, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	contentStr := string(content)

	for _, want := range []string{
		"# Narrative DB - populate-tracks Summary",
		"**Run:** `abc-123`",
		"`/test/narrative.sqlite`",
		"| Tracks added | 12,345 |",
		"| Tracks skipped | 7 |",
		"| 1 | already exists |",
		"- Next female id: F042",
		"| Duration | 1.5s |",
	} {
		if !strings.Contains(contentStr, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestWriteMarkdownReport_OmitsEmptySections(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "merge.md")

	s := NewStageSummary("merge", "")
	s.Add("Albums written", 0)

	if err := WriteMarkdownReport(s, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}
	content, _ := os.ReadFile(outputPath)
	contentStr := string(content)

	if strings.Contains(contentStr, "## Skip Reasons") {
		t.Error("expected no skip reasons section")
	}
	if strings.Contains(contentStr, "## Notes") {
		t.Error("expected no notes section")
	}
	if strings.Contains(contentStr, "**Run:**") {
		t.Error("expected no run line without a run id")
	}
}
