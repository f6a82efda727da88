package timetable

import (
	"strings"
)

var nbspReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2007", " ")

var hyphenReplacer = strings.NewReplacer(
	"\u2010", "-",
	"\u2011", "-",
	"\u2012", "-",
	"\u2013", "-",
	"\u2014", "-",
	"\u2212", "-",
)

// Norm replaces non-breaking spaces, collapses whitespace runs (line breaks
// included) into one space and trims the result.
func Norm(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(nbspReplacer.Replace(s)), " ")
}

// NormSoft is Norm applied line by line, so line breaks survive.
func NormSoft(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = Norm(line)
	}
	return strings.Join(lines, "\n")
}

// NormalizeHyphens maps the typographic dash variants to an ASCII hyphen.
func NormalizeHyphens(s string) string {
	return hyphenReplacer.Replace(s)
}

// isPlaceholder reports whether s holds nothing but dashes and spaces.
func isPlaceholder(s string) bool {
	return strings.Trim(s, "—- ") == ""
}
