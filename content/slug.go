package content

import (
	"regexp"
	"strings"
)

var (
	reSpaces  = regexp.MustCompile(` +`)
	reNonWord = regexp.MustCompile(`[^\w-]+`)
)

// Slugify converts a display string (a tag or a title) into the identifier
// used in URLs and lookups. Runs of spaces become a single hyphen and any
// character that is not a word character or hyphen is dropped.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = reSpaces.ReplaceAllString(s, "-")
	return reNonWord.ReplaceAllString(s, "")
}
