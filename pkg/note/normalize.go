package note

import (
	"regexp"
	"strings"
)

var (
	blankLine     = regexp.MustCompile(`(?m)^[ \t]+$`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize is the post-processing pass applied to every rendered note:
// line endings become "\n", whitespace-only lines become empty, runs of
// three or more newlines collapse to two, and the ends are trimmed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankLine.ReplaceAllString(text, "")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
