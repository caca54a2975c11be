package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// mojibake for a UTF-8 NBSP decoded as Latin-1, common in exported data.
const latin1NBSP = "\u00c2\u00a0"

// Clean composes s to NFC, replaces no-break spaces with ASCII spaces,
// collapses internal whitespace runs and trims the edges.
func Clean(s string) string {
	s = strings.ReplaceAll(s, latin1NBSP, " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase cleans s and title-cases each word ("  new   YORK " -> "New York").
// A Caser is stateful, so one is built per call to stay goroutine-safe.
func TitleCase(s string) string {
	s = Clean(s)
	if s == "" {
		return s
	}
	return cases.Title(language.Und).String(s)
}

// Lower cleans s and lower-cases it for use as a join key.
func Lower(s string) string {
	s = Clean(s)
	if s == "" {
		return s
	}
	return cases.Lower(language.Und).String(s)
}

// Upper cleans s and upper-cases it.
func Upper(s string) string {
	s = Clean(s)
	if s == "" {
		return s
	}
	return cases.Upper(language.Und).String(s)
}
