package parser

import (
	"strings"
	"unicode"

	"github.com/brunobiangulo/docsection/section"
)

// Quality summarizes one backend's output so comparison runs can be ranked
// without reading the full text.
type Quality struct {
	Chars          int     `json:"chars"`
	Lines          int     `json:"lines"`
	BlankLines     int     `json:"blank_lines"`
	Headings       int     `json:"headings"`
	PrintableRatio float64 `json:"printable_ratio"`
	WordlikeRatio  float64 `json:"wordlike_ratio"`
}

// Measure computes Quality for text.
func Measure(text string) Quality {
	q := Quality{
		Chars:          len([]rune(text)),
		PrintableRatio: printableRatio(text),
		WordlikeRatio:  wordlikeRatio(text),
	}
	if text == "" {
		return q
	}
	for _, line := range strings.Split(text, "\n") {
		q.Lines++
		switch {
		case strings.TrimSpace(line) == "":
			q.BlankLines++
		case section.IsNewSection(line):
			q.Headings++
		}
	}
	return q
}

// Garbled reports whether the text looks like a failed decode (missing
// font mappings usually show up as private-use or control runes).
func (q Quality) Garbled() bool {
	return q.Chars > 0 && q.PrintableRatio < 0.85
}

// printableRatio excludes PUA U+E000-U+F8FF, U+FFFD and control chars other
// than whitespace.
func printableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	if r == 0xFFFD {
		return true
	}
	return r < 0x0020 && r != '\n' && r != '\r' && r != '\t'
}

// wordlikeRatio is the share of whitespace-separated tokens 2-15 runes long.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
