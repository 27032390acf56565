package tracklist

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/franz/narrative-db/internal/util"
	"golang.org/x/net/html"
)

// Selectors identifying the parts of a show page
const (
	containerSelector = "div.tracklist"
	rowSelector       = "tr"
	trackCellSelector = `td[colspan="2"]`
	mashTitleSelector = "span.mashtitle"
	mashTrackSelector = "span.mashtrack"
	artistTitleEnDash = "–"
	artistTitleHyphen = "-"
)

// Candidate is one track line extracted from a show page
type Candidate struct {
	ShowSource string
	IsMashup   bool
	MashupName string
	Artist     string
	Title      string
}

// Extract parses one page's markup into track candidates in document order.
//
// When the page has no tracklist container the result is empty and the
// error wraps util.ErrStructureNotFound. Rows without a track cell are
// skipped silently.
func Extract(markup, sourceID string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", util.ErrStructureNotFound, sourceID, err)
	}

	container := doc.Find(containerSelector).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: no tracklist container in %s", util.ErrStructureNotFound, sourceID)
	}

	var candidates []Candidate
	container.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cell := row.Find(trackCellSelector).First()
		if cell.Length() == 0 {
			return
		}
		candidates = append(candidates, extractCell(cell, sourceID)...)
	})

	return candidates, nil
}

func extractCell(cell *goquery.Selection, sourceID string) []Candidate {
	mashTitle := cell.Find(mashTitleSelector).First()
	mashTracks := cell.Find(mashTrackSelector)

	if mashTitle.Length() > 0 && mashTracks.Length() > 0 {
		mashupName := strippedText(mashTitle)
		out := make([]Candidate, 0, mashTracks.Length())
		mashTracks.Each(func(_ int, mt *goquery.Selection) {
			artist, title := SplitArtistTitle(strippedText(mt))
			out = append(out, Candidate{
				ShowSource: sourceID,
				IsMashup:   true,
				MashupName: mashupName,
				Artist:     artist,
				Title:      title,
			})
		})
		return out
	}

	artist, title := SplitArtistTitle(strippedText(cell))
	return []Candidate{{
		ShowSource: sourceID,
		Artist:     artist,
		Title:      title,
	}}
}

// SplitArtistTitle splits a track line on the first en-dash, falling back
// to the first hyphen. Without either separator the whole text is the title.
func SplitArtistTitle(text string) (artist, title string) {
	for _, sep := range []string{artistTitleEnDash, artistTitleHyphen} {
		if before, after, found := strings.Cut(text, sep); found {
			return strings.TrimSpace(before), strings.TrimSpace(after)
		}
	}
	return "", strings.TrimSpace(text)
}

// strippedText concatenates the trimmed text nodes under sel, skipping
// whitespace-only nodes
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
