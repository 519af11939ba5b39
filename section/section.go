// Package section locates a titled section inside extracted document text.
//
// Sections are found heuristically from the text shape alone: a section
// starts at the first line containing the requested title (case-insensitive
// substring) and runs until the next blank line or the next line that looks
// like an all-caps heading. No document outline is consulted.
package section

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// FindSection returns the first section of text whose heading line contains
// title, or "" when no line matches. The title is matched literally, never
// as a pattern.
func FindSection(text, title string) string {
	fold := cases.Fold()
	needle := fold.String(title)

	var out []string
	for _, line := range Lines(text) {
		if out == nil {
			if strings.Contains(fold.String(line), needle) {
				out = []string{line}
			}
			continue
		}
		if strings.TrimSpace(line) == "" || IsNewSection(line) {
			break
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// IsNewSection reports whether line is shaped like a heading written in
// capitals: after trimming it is non-empty and holds only uppercase letters
// and whitespace. Digits and punctuation disqualify a line, so numbered
// headings such as "1. Introduction" are not detected.
func IsNewSection(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsUpper(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Lines splits text at line boundaries, keeping order and empty lines. A
// boundary is LF, CR, CRLF, VT, FF, the separators FS GS RS, NEL, LINE
// SEPARATOR or PARAGRAPH SEPARATOR. A trailing boundary does not start an
// extra empty line.
func Lines(text string) []string {
	var lines []string
	start := 0
	for i, r := range text {
		if !isLineBreak(r) {
			continue
		}
		if r == '\n' && i > 0 && text[i-1] == '\r' {
			// Second half of CRLF; the line was emitted at the CR.
			start = i + 1
			continue
		}
		lines = append(lines, text[start:i])
		start = i + utf8.RuneLen(r)
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
