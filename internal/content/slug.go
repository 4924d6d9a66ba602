package content

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugDropRe     = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL-safe identifier from free text: lowercase,
// decompose and strip diacritics, drop everything that is not a word
// character, whitespace or hyphen, then collapse whitespace and hyphen runs.
// Pure and idempotent; uniqueness across documents is the caller's problem.
func GenerateSlug(text string) string {
	s := strings.ToLower(text)
	s = stripMarks(norm.NFD.String(s))
	s = slugDropRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return s
}

func stripMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
