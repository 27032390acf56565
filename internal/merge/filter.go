package merge

import (
	"regexp"
	"strings"
)

// Rejection reasons reported by RejectReason
const (
	ReasonNotAvailable = "not available"
	ReasonPlaceholder  = "placeholder title"
	ReasonQualifier    = "single/EP qualifier"
	ReasonNonAlbumTag  = "non-album descriptor"
	ReasonSingleSuffix = "single/EP suffix"
	ReasonSoundtrack   = "generic soundtrack"
)

var (
	// Matched against the lowercased title
	qualifierPattern = regexp.MustCompile(
		`\s*[\(\[]\s*(single|maxi-single|ep|maxi single|remixes|versions|edit|radio edit)\s*[\)\]]$`)

	// Matched against the original title
	nonAlbumPattern = regexp.MustCompile(
		`(?i)\((dj tool|sample[ /]dj tool|mashup alias|spoken word|library music|dj intro/skit|obscure|` +
			`project/single based|hip hop eps/singles|singles/influence|dub artist|single-focused|` +
			`dj/single-focused|ep/single focused|dj alias|compilation only|promo|interview|soundtrack|ost)\)`)

	placeholderTitles = map[string]bool{
		"white label": true,
		"single":      true,
		"ep":          true,
	}
)

// IsAlbum reports whether title looks like a full-length album rather than
// a single, an EP, a placeholder, or non-music content
func IsAlbum(title string) bool {
	return RejectReason(title) == ""
}

// RejectReason returns why title fails the album quality filter, or "" if
// it passes. Rules are checked in a fixed order and the first match wins.
func RejectReason(title string) string {
	lower := strings.ToLower(title)

	switch {
	case lower == "n/a" || lower == "na" || strings.HasPrefix(lower, "n/a "):
		return ReasonNotAvailable
	case placeholderTitles[lower]:
		return ReasonPlaceholder
	case qualifierPattern.MatchString(lower):
		return ReasonQualifier
	case nonAlbumPattern.MatchString(title):
		return ReasonNonAlbumTag
	case strings.HasSuffix(lower, " ep") || strings.HasSuffix(lower, " single"):
		return ReasonSingleSuffix
	case lower == "soundtrack" || lower == "ost":
		return ReasonSoundtrack
	}
	return ""
}
