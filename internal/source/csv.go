package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/franz/narrative-db/internal/util"
)

// Normalize removes surrounding whitespace. Values are otherwise kept
// byte for byte: artist identity in the store is exact.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// table is a CSV file opened for reading by column name
type table struct {
	file   *os.File
	reader *csv.Reader
	index  map[string]int
	path   string
}

// openTable opens path and reads its header. A missing file wraps
// util.ErrSourceMissing; a header without every required column wraps
// util.ErrMissingColumns.
func openTable(path string, required ...string) (*table, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", util.ErrSourceMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("%w: %s has no header row", util.ErrMissingColumns, path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s lacks %s", util.ErrMissingColumns, path, strings.Join(missing, ", "))
	}

	return &table{file: f, reader: r, index: index, path: path}, nil
}

// next returns the next record. Rows the CSV parser rejects are reported
// with ok=false so the caller can count them and carry on.
func (t *table) next() (record []string, ok bool, err error) {
	record, err = t.reader.Read()
	if err == nil {
		return record, true, nil
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		util.DebugLog("%s: unreadable row at line %d: %v", t.path, parseErr.Line, parseErr.Err)
		return nil, false, nil
	}
	return nil, false, err
}

// field returns the normalized value of a named column, or "" if the row
// is too short or the column is absent
func (t *table) field(record []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return Normalize(record[i])
}

func (t *table) Close() error {
	return t.file.Close()
}
