package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CompactName lowercases name and drops all whitespace, "Jet Brains " and
// "jetbrains" compact to the same key.
func CompactName(name string) string {
	name = strings.ToLower(name)
	return whitespaceRegex.ReplaceAllString(name, "")
}
