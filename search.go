package docsection

import (
	"strings"

	"github.com/brunobiangulo/docsection/section"
)

// NoMatchesFound is the single result reported when a search finds nothing.
const NoMatchesFound = "No matches found."

// Search finds the section titled query in text.
//
// A blank query performs no scan and returns nil. Otherwise query is
// matched as given, surrounding spaces included, and the result has exactly
// one element: the section text, or NoMatchesFound.
func Search(text, query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if result := section.FindSection(text, query); result != "" {
		return []string{result}
	}
	return []string{NoMatchesFound}
}
