package tracklist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/franz/narrative-db/internal/util"
)

// CSVHeader is the column layout of an exported tracklist
var CSVHeader = []string{"show_url", "is_mashup", "mashup_name", "artist", "track_title"}

// WriteCSV writes candidates with a header row. Booleans are written as
// "true" or "false".
func WriteCSV(w io.Writer, candidates []Candidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range candidates {
		record := []string{
			c.ShowSource,
			strconv.FormatBool(c.IsMashup),
			c.MashupName,
			c.Artist,
			c.Title,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes candidates to path, creating parent directories
func WriteCSVFile(path string, candidates []Candidate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, candidates); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV reads an exported tracklist. is_mashup is true only for a
// case-insensitive "true"; a missing column reads as false.
func ReadCSV(r io.Reader) ([]Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var out []Candidate
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to read row: %w", err)
		}
		out = append(out, Candidate{
			ShowSource: field(record, "show_url"),
			IsMashup:   strings.EqualFold(strings.TrimSpace(field(record, "is_mashup")), "true"),
			MashupName: field(record, "mashup_name"),
			Artist:     field(record, "artist"),
			Title:      field(record, "track_title"),
		})
	}
	return out, nil
}

// ReadCSVFile reads an exported tracklist from path. A missing file is
// reported as util.ErrSourceMissing.
func ReadCSVFile(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", util.ErrSourceMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
