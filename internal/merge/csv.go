package merge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/narrative-db/internal/source"
)

// CSVHeader is the column layout of the merged album list
var CSVHeader = []string{"artist_name", "album_title"}

// WriteCSV writes albums with every field quoted. An empty list produces a
// header-only file.
func WriteCSV(w io.Writer, albums []source.AlbumRecord) error {
	bw := bufio.NewWriter(w)
	if err := writeQuotedRow(bw, CSVHeader...); err != nil {
		return err
	}
	for _, a := range albums {
		if err := writeQuotedRow(bw, a.Artist, a.Album); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeQuotedRow writes one CRLF-terminated row with every field quoted
// and embedded quotes doubled
func writeQuotedRow(w *bufio.Writer, fields ...string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// WriteCSVFile writes the merged list to path, creating parent directories
func WriteCSVFile(path string, albums []source.AlbumRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, albums); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
