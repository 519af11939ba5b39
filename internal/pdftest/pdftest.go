// Package pdftest writes small PDF fixtures for tests.
package pdftest

import (
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Write renders pages (one string per line) into dir/name with Helvetica
// 12pt and returns the file path. Empty strings leave a blank line gap.
func Write(t testing.TB, dir, name string, pages ...[]string) string {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, lines := range pages {
		pdf.AddPage()
		for _, line := range lines {
			if line == "" {
				pdf.Ln(8)
				continue
			}
			pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
		}
	}

	path := filepath.Join(dir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("writing PDF fixture: %v", err)
	}
	return path
}
