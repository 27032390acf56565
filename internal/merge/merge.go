package merge

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/source"
)

// Override skip reasons
const (
	OverrideArtistCovered = "artist already has an accepted album"
	OverrideRejected      = "override album rejected"
	OverrideDuplicate     = "pair already present"
)

// Result is the merged album list and what happened on the way
type Result struct {
	Albums []source.AlbumRecord

	Considered       int
	Filtered         int
	Duplicates       int
	OverridesApplied int
	OverridesSkipped int

	// Rejections counts filtered albums by reason
	Rejections map[string]int
}

type albumKey struct {
	artist string
	album  string
}

// keyOf folds case and Unicode normalization form. Records keep their own
// bytes; only the key is composed.
func keyOf(artist, album string) albumKey {
	return albumKey{
		artist: strings.ToLower(norm.NFC.String(artist)),
		album:  strings.ToLower(norm.NFC.String(album)),
	}
}

// Merge concatenates lists in order, drops albums that fail the quality
// filter, and keeps the first occurrence of each case-insensitive
// (artist, album) pair with its original casing.
//
// An override is then added only when no accepted album exists for its
// artist, its album passes the filter, and the pair is not already present.
// The result is sorted by lowercased artist, then lowercased album.
func Merge(lists [][]source.AlbumRecord, overrides Overrides, logger *report.EventLogger) *Result {
	result := &Result{Rejections: make(map[string]int)}
	seen := make(map[albumKey]bool)

	for _, list := range lists {
		for _, rec := range list {
			if rec.Artist == "" || rec.Album == "" {
				continue
			}
			result.Considered++

			// Rejected entries never take a dedup slot
			if reason := RejectReason(rec.Album); reason != "" {
				result.Filtered++
				result.Rejections[reason]++
				logger.LogFilter(rec.Artist, rec.Album, reason)
				continue
			}

			k := keyOf(rec.Artist, rec.Album)
			if seen[k] {
				result.Duplicates++
				continue
			}
			seen[k] = true
			result.Albums = append(result.Albums, rec)
		}
	}

	// Artists covered by the source lists, fixed before any override is added
	covered := make(map[string]bool, len(seen))
	for k := range seen {
		covered[k.artist] = true
	}

	for _, ov := range overrides {
		reason := ""
		k := keyOf(ov.Artist, ov.Album)
		switch {
		case covered[k.artist]:
			reason = OverrideArtistCovered
		case !IsAlbum(ov.Album):
			reason = OverrideRejected
		case seen[k]:
			reason = OverrideDuplicate
		}

		if reason != "" {
			result.OverridesSkipped++
			logger.LogOverride(ov.Artist, ov.Album, false, reason)
			continue
		}

		seen[k] = true
		result.Albums = append(result.Albums, source.AlbumRecord{Artist: ov.Artist, Album: ov.Album})
		result.OverridesApplied++
		logger.LogOverride(ov.Artist, ov.Album, true, "no accepted album from sources")
	}

	sort.SliceStable(result.Albums, func(i, j int) bool {
		a := keyOf(result.Albums[i].Artist, result.Albums[i].Album)
		b := keyOf(result.Albums[j].Artist, result.Albums[j].Album)
		if a.artist != b.artist {
			return a.artist < b.artist
		}
		return a.album < b.album
	})

	return result
}
