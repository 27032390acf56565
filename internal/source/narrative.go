package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/franz/narrative-db/internal/util"
)

// Male narrative CSV columns
const (
	MaleTrackIDColumn   = "track_id"
	MaleArtistColumn    = "artist"
	MaleTrackNameColumn = "track_name"
	MaleSoundColumn     = "sound"
)

// MaleTrack is one row of the male narrative selection
type MaleTrack struct {
	ProjectTrackID string
	Artist         string
	Title          string
	Sound          string
}

// FemaleTrack is one parsed entry of the female narrative selection.
// It carries no project id; one is assigned on insert.
type FemaleTrack struct {
	Title  string
	Artist string
}

// LoadMaleNarrative reads the male narrative CSV. artist and track_name are
// required; track_id and sound may be absent or blank.
func LoadMaleNarrative(path string) (*Result[MaleTrack], error) {
	result := &Result[MaleTrack]{Source: path}

	t, err := openTable(path, MaleArtistColumn, MaleTrackNameColumn)
	if err != nil {
		util.WarnLog("Skipping male narrative selection: %v", err)
		return result, err
	}
	defer t.Close()

	for {
		record, ok, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !ok {
			result.Dropped++
			continue
		}

		tr := MaleTrack{
			ProjectTrackID: t.field(record, MaleTrackIDColumn),
			Artist:         t.field(record, MaleArtistColumn),
			Title:          t.field(record, MaleTrackNameColumn),
			Sound:          t.field(record, MaleSoundColumn),
		}
		if tr.Artist == "" || tr.Title == "" {
			util.WarnLog("Skipping row due to missing artist or track title: %q", record)
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, tr)
	}

	return result, nil
}

// SplitNarrativeEntry splits "<title>, <artist>" on the first comma only;
// any later comma stays in the artist name.
func SplitNarrativeEntry(entry string) (FemaleTrack, error) {
	title, artist, found := strings.Cut(entry, ",")
	if !found {
		return FemaleTrack{}, fmt.Errorf("%w: no comma in %q", util.ErrMalformedRow, entry)
	}

	tr := FemaleTrack{Title: Normalize(title), Artist: Normalize(artist)}
	if tr.Title == "" || tr.Artist == "" {
		return FemaleTrack{}, fmt.Errorf("%w: missing artist or title in %q", util.ErrMalformedRow, entry)
	}
	return tr, nil
}

// LoadFemaleNarrative reads the female narrative JSON: a flat list of
// "<title>, <artist>" strings. Entries that are not strings or do not split
// into two parts are dropped with a warning.
func LoadFemaleNarrative(path string) (*Result[FemaleTrack], error) {
	result := &Result[FemaleTrack]{Source: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		err = fmt.Errorf("%w: %s", util.ErrSourceMissing, path)
		util.WarnLog("Skipping female narrative selection: %v", err)
		return result, err
	}
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return result, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, raw := range entries {
		var entry string
		if err := json.Unmarshal(raw, &entry); err != nil {
			util.WarnLog("Could not parse female track entry: %s", raw)
			result.Dropped++
			continue
		}

		tr, err := SplitNarrativeEntry(entry)
		if err != nil {
			util.WarnLog("Could not parse female track entry: %v", err)
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, tr)
	}

	return result, nil
}
